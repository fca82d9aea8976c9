// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package input is the Input Adapter (spec §3/§4.1's upstream step): it
// turns the raw rows a Source returns into a validated entities.Catalog,
// collecting every referential-integrity failure it finds (a dangling
// resource_group_id, a shift referencing a break that doesn't exist, a
// schedule day referencing a shift that doesn't exist) into one
// errkind.InputInconsistent error instead of failing on the first, the
// same way the teacher's tests accumulate independent errors with
// cloudeng.io/errors.
package input

import (
	"context"
	"fmt"

	"cloudeng.io/errors"
	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/errkind"
)

// Raw is the flat set of rows a Source reads from the underlying store,
// mirroring the tables spec §3 names. It is the wire-shaped counterpart
// of entities.Catalog before referential integrity has been checked.
type Raw struct {
	Operations               []entities.Operation
	BomLinks                 []entities.BomLink
	Resources                []entities.Resource
	ResourceGroups           []entities.ResourceGroup
	GroupMembers             map[entities.ID][]entities.ID
	Attributes               []entities.Attribute
	AttributeParams          []entities.AttributeParam
	OrderAttributeAssignment []entities.OrderAttributeAssignment
	ChangeoverGroups         []entities.ChangeoverGroup
	ChangeoverMatrix         []entities.ChangeoverMatrixEntry
	ChangeoverStandards      []entities.ChangeoverStandard
	Schedules                []entities.Schedule
	Shifts                   []entities.Shift
	Breaks                   []entities.Break
}

// Source is the out-of-scope external collaborator (spec §1/§6) that
// owns actually reading from whatever store backs the scheduling run.
type Source interface {
	Read(ctx context.Context) (Raw, error)
}

// Result is the adapter's output: a validated Catalog plus the
// operations that were excluded from it because their resource group
// has no member resources (spec §6's "flag and report unscheduled").
type Result struct {
	Catalog    *entities.Catalog
	Excluded   []entities.Operation
}

// Load reads Raw from src, validates referential integrity, filters out
// operations whose resource group is empty, and builds the Catalog.
// Validation failures are aggregated: Load reports every problem it
// finds, not just the first, wrapped as a single errkind.InputInconsistent.
func Load(ctx context.Context, src Source) (*Result, error) {
	raw, err := src.Read(ctx)
	if err != nil {
		return nil, errkind.Wrap(errkind.InputUnavailable, err, "reading input source")
	}
	return build(raw)
}

func build(raw Raw) (*Result, error) {
	var errs errors.M

	resourceByID := map[entities.ID]bool{}
	for _, r := range raw.Resources {
		resourceByID[r.ResourceID] = true
		if r.ScheduleID != 0 {
			if !scheduleExists(raw.Schedules, r.ScheduleID) {
				errs.Append(fmt.Errorf("resource %d/%s references unknown schedule_id %d", r.ResourceID, r.Name, r.ScheduleID))
			}
		}
	}
	groupByID := map[entities.ID]bool{}
	for _, g := range raw.ResourceGroups {
		groupByID[g.ResourceGroupID] = true
	}
	for group, members := range raw.GroupMembers {
		if !groupByID[group] {
			errs.Append(fmt.Errorf("group_members references unknown resource_group_id %d", group))
			continue
		}
		for _, rid := range members {
			if !resourceByID[rid] {
				errs.Append(fmt.Errorf("resource_group %d references unknown resource_id %d", group, rid))
			}
		}
	}
	shiftByID := map[entities.ID]bool{}
	for _, s := range raw.Shifts {
		shiftByID[s.ShiftID] = true
	}
	breakByID := map[entities.ID]bool{}
	for _, b := range raw.Breaks {
		breakByID[b.BreakID] = true
	}
	for _, s := range raw.Shifts {
		for _, bid := range s.BreakIDs {
			if !breakByID[bid] {
				errs.Append(fmt.Errorf("shift %d references unknown break_id %d", s.ShiftID, bid))
			}
		}
	}
	for _, sched := range raw.Schedules {
		for day, shiftID := range sched.Days {
			if shiftID != 0 && !shiftByID[shiftID] {
				errs.Append(fmt.Errorf("schedule %d/%s day %d references unknown shift_id %d", sched.ScheduleID, sched.Name, day, shiftID))
			}
		}
	}

	paramByID := map[entities.ID]bool{}
	attrByID := map[entities.ID]bool{}
	for _, a := range raw.Attributes {
		attrByID[a.AttributeID] = true
	}
	for _, p := range raw.AttributeParams {
		paramByID[p.ParamID] = true
		if !attrByID[p.AttributeID] {
			errs.Append(fmt.Errorf("attribute_param %d/%s references unknown attribute_id %d", p.ParamID, p.Name, p.AttributeID))
		}
	}
	opByID := map[entities.ID]bool{}
	for _, op := range raw.Operations {
		opByID[op.OperationID] = true
		if !groupByID[op.ResourceGroupID] {
			errs.Append(fmt.Errorf("operation %s/%d references unknown resource_group_id %d", op.OrderNo, op.OpNo, op.ResourceGroupID))
		}
	}
	for _, a := range raw.OrderAttributeAssignment {
		if !opByID[a.OperationID] {
			errs.Append(fmt.Errorf("order_attribute_assignment references unknown operation_id %d", a.OperationID))
		}
		if !paramByID[a.ParamID] {
			errs.Append(fmt.Errorf("order_attribute_assignment for operation %d references unknown param_id %d", a.OperationID, a.ParamID))
		}
	}
	coGroupByID := map[entities.ID]bool{}
	for _, g := range raw.ChangeoverGroups {
		coGroupByID[g.ChangeoverGroupID] = true
	}
	for _, e := range raw.ChangeoverMatrix {
		if !coGroupByID[e.ChangeoverGroupID] {
			errs.Append(fmt.Errorf("changeover_matrix entry references unknown changeover_group_id %d", e.ChangeoverGroupID))
		}
		if !paramByID[e.FromParamID] || !paramByID[e.ToParamID] {
			errs.Append(fmt.Errorf("changeover_matrix entry for group %d references unknown param", e.ChangeoverGroupID))
		}
	}
	for _, s := range raw.ChangeoverStandards {
		if !coGroupByID[s.ChangeoverGroupID] {
			errs.Append(fmt.Errorf("changeover_standard entry references unknown changeover_group_id %d", s.ChangeoverGroupID))
		}
	}

	if err := errs.Err(); err != nil {
		return nil, errkind.Wrap(errkind.InputInconsistent, err, "validating input")
	}

	// Filter out operations whose resource group has no member resources:
	// the model can never schedule them and C7 must still report them as
	// unscheduled (spec §6).
	var kept []entities.Operation
	var excluded []entities.Operation
	for _, op := range raw.Operations {
		if len(raw.GroupMembers[op.ResourceGroupID]) == 0 {
			excluded = append(excluded, op)
			continue
		}
		kept = append(kept, op)
	}

	catalog := entities.Build(
		kept,
		raw.BomLinks,
		raw.Resources,
		raw.ResourceGroups,
		raw.GroupMembers,
		raw.Attributes,
		raw.AttributeParams,
		raw.OrderAttributeAssignment,
		raw.ChangeoverGroups,
		raw.ChangeoverMatrix,
		raw.ChangeoverStandards,
		raw.Schedules,
		raw.Shifts,
		raw.Breaks,
	)

	return &Result{Catalog: catalog, Excluded: excluded}, nil
}

func scheduleExists(schedules []entities.Schedule, id entities.ID) bool {
	for _, s := range schedules {
		if s.ScheduleID == id {
			return true
		}
	}
	return false
}
