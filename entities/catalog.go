// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package entities

import "sort"

// Catalog is the complete, immutable set of entities for one scheduling
// run plus the derived indexes listed in spec §3. It is built once by
// package input and never mutated afterwards.
type Catalog struct {
	Operations              []Operation
	BomLinks                []BomLink
	Resources               []Resource
	ResourceGroups          []ResourceGroup
	Attributes               []Attribute
	AttributeParams          []AttributeParam
	OrderAttributeAssignment []OrderAttributeAssignment
	ChangeoverGroups         []ChangeoverGroup
	ChangeoverMatrix         []ChangeoverMatrixEntry
	ChangeoverStandards      []ChangeoverStandard
	Schedules                []Schedule
	Shifts                   []Shift
	Breaks                   []Break

	// group membership, many-to-many
	GroupMembers map[ID][]ID // resource_group_id -> resource_ids, stable order

	resourceByID  map[ID]Resource
	scheduleByID  map[ID]Schedule
	shiftByID     map[ID]Shift
	breakByID     map[ID]Break
	paramByID     map[ID]AttributeParam
	opByID        map[ID]Operation

	opsByOrder   map[string][]Operation // ordered by OpNo
	partProducer map[string][]string    // part_no -> order_no, producers of that part
	orderLastOp  map[string]ID          // order_no -> operation_id of highest op_no
	opToParams   map[ID][]AttributeParam
}

// Build finalises the derived indexes once the raw entity slices have
// been populated. It must be called exactly once, after validation.
func Build(
	operations []Operation,
	bomLinks []BomLink,
	resources []Resource,
	resourceGroups []ResourceGroup,
	groupMembers map[ID][]ID,
	attributes []Attribute,
	attributeParams []AttributeParam,
	assignments []OrderAttributeAssignment,
	changeoverGroups []ChangeoverGroup,
	matrix []ChangeoverMatrixEntry,
	standards []ChangeoverStandard,
	schedules []Schedule,
	shifts []Shift,
	breaks []Break,
) *Catalog {
	c := &Catalog{
		Operations:               operations,
		BomLinks:                 bomLinks,
		Resources:                resources,
		ResourceGroups:           resourceGroups,
		Attributes:               attributes,
		AttributeParams:          attributeParams,
		OrderAttributeAssignment: assignments,
		ChangeoverGroups:         changeoverGroups,
		ChangeoverMatrix:         matrix,
		ChangeoverStandards:      standards,
		Schedules:                schedules,
		Shifts:                   shifts,
		Breaks:                   breaks,
		GroupMembers:             groupMembers,
	}

	c.resourceByID = make(map[ID]Resource, len(resources))
	for _, r := range resources {
		c.resourceByID[r.ResourceID] = r
	}
	c.scheduleByID = make(map[ID]Schedule, len(schedules))
	for _, s := range schedules {
		c.scheduleByID[s.ScheduleID] = s
	}
	c.shiftByID = make(map[ID]Shift, len(shifts))
	for _, s := range shifts {
		c.shiftByID[s.ShiftID] = s
	}
	c.breakByID = make(map[ID]Break, len(breaks))
	for _, b := range breaks {
		c.breakByID[b.BreakID] = b
	}
	c.paramByID = make(map[ID]AttributeParam, len(attributeParams))
	for _, p := range attributeParams {
		c.paramByID[p.ParamID] = p
	}
	c.opByID = make(map[ID]Operation, len(operations))
	for _, o := range operations {
		c.opByID[o.OperationID] = o
	}

	c.opsByOrder = map[string][]Operation{}
	for _, o := range operations {
		c.opsByOrder[o.OrderNo] = append(c.opsByOrder[o.OrderNo], o)
	}
	for order := range c.opsByOrder {
		ops := c.opsByOrder[order]
		sort.Slice(ops, func(i, j int) bool { return ops[i].OpNo < ops[j].OpNo })
		c.opsByOrder[order] = ops
	}

	c.orderLastOp = map[string]ID{}
	for order, ops := range c.opsByOrder {
		last := ops[len(ops)-1]
		c.orderLastOp[order] = last.OperationID
	}

	// part_producers: order_no that produce order_part_no, taken from the
	// last operation of each order that appears as a BOM parent.
	producedBy := map[string][]string{} // order_part_no -> []order_no, via BOM parent side
	for _, link := range bomLinks {
		producedBy[link.OrderPartNo] = append(producedBy[link.OrderPartNo], link.ParentOrderNo)
	}
	c.partProducer = map[string][]string{}
	for part, orders := range producedBy {
		seen := map[string]bool{}
		var list []string
		for _, o := range orders {
			if seen[o] {
				continue
			}
			seen[o] = true
			if _, ok := c.opsByOrder[o]; ok {
				list = append(list, o)
			}
		}
		sort.Strings(list)
		c.partProducer[part] = list
	}

	c.opToParams = map[ID][]AttributeParam{}
	for _, a := range assignments {
		if p, ok := c.paramByID[a.ParamID]; ok {
			c.opToParams[a.OperationID] = append(c.opToParams[a.OperationID], p)
		}
	}

	return c
}

// Resource looks up a resource by id.
func (c *Catalog) Resource(id ID) (Resource, bool) { r, ok := c.resourceByID[id]; return r, ok }

// Schedule looks up a schedule by id.
func (c *Catalog) Schedule(id ID) (Schedule, bool) { s, ok := c.scheduleByID[id]; return s, ok }

// Shift looks up a shift by id.
func (c *Catalog) Shift(id ID) (Shift, bool) { s, ok := c.shiftByID[id]; return s, ok }

// Break looks up a break by id.
func (c *Catalog) Break(id ID) (Break, bool) { b, ok := c.breakByID[id]; return b, ok }

// Operation looks up an operation by id.
func (c *Catalog) Operation(id ID) (Operation, bool) { o, ok := c.opByID[id]; return o, ok }

// OpsByOrder returns the operations of order, ordered by OpNo.
func (c *Catalog) OpsByOrder(order string) []Operation { return c.opsByOrder[order] }

// PartProducers returns the order_nos that produce part, or nil if none.
func (c *Catalog) PartProducers(part string) []string { return c.partProducer[part] }

// OrderLastOp returns the operation_id of the highest op_no operation in
// order.
func (c *Catalog) OrderLastOp(order string) (ID, bool) { id, ok := c.orderLastOp[order]; return id, ok }

// OpToParams returns the attribute-param values assigned to an operation.
func (c *Catalog) OpToParams(op ID) []AttributeParam { return c.opToParams[op] }

// ResourcesInGroup returns the resources belonging to a resource group, in
// stable order.
func (c *Catalog) ResourcesInGroup(group ID) []Resource {
	ids := c.GroupMembers[group]
	out := make([]Resource, 0, len(ids))
	for _, id := range ids {
		if r, ok := c.resourceByID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
