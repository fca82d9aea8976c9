// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package entities_test

import (
	"testing"

	"github.com/cosnicolaou/shopsched/entities"
)

func buildCatalog(t *testing.T) *entities.Catalog {
	t.Helper()
	ops := []entities.Operation{
		{OperationID: 1, OrderNo: "A", OpNo: 2, ResourceGroupID: 10},
		{OperationID: 2, OrderNo: "A", OpNo: 1, ResourceGroupID: 10},
		{OperationID: 3, OrderNo: "B", OpNo: 1, ResourceGroupID: 10},
	}
	links := []entities.BomLink{
		{ParentOrderNo: "B", OrderPartNo: "WIDGET", RequiredPartNo: "PART-A", RequiredQuantity: 1},
	}
	resources := []entities.Resource{{ResourceID: 100, Name: "M1"}}
	groups := []entities.ResourceGroup{{ResourceGroupID: 10, Name: "group"}}
	members := map[entities.ID][]entities.ID{10: {100}}
	params := []entities.AttributeParam{{ParamID: 1000, AttributeID: 2000, Name: "Red"}}
	assignments := []entities.OrderAttributeAssignment{{OperationID: 1, AttributeID: 2000, ParamID: 1000}}

	return entities.Build(ops, links, resources, groups, members, nil, params, assignments, nil, nil, nil, nil, nil, nil)
}

func TestCatalogOpsByOrderSortedByOpNo(t *testing.T) {
	c := buildCatalog(t)
	ops := c.OpsByOrder("A")
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(ops))
	}
	if ops[0].OpNo != 1 || ops[1].OpNo != 2 {
		t.Fatalf("ops not sorted by OpNo: %+v", ops)
	}
}

func TestCatalogOrderLastOp(t *testing.T) {
	c := buildCatalog(t)
	id, ok := c.OrderLastOp("A")
	if !ok || id != 1 {
		t.Fatalf("OrderLastOp(A) = %v, %v; want 1, true", id, ok)
	}
}

func TestCatalogPartProducers(t *testing.T) {
	c := buildCatalog(t)
	// "WIDGET" is the OrderPartNo produced by order B, the BOM parent side.
	producers := c.PartProducers("WIDGET")
	if len(producers) != 1 || producers[0] != "B" {
		t.Fatalf("PartProducers(WIDGET) = %v, want [B]", producers)
	}
}

func TestCatalogOpToParams(t *testing.T) {
	c := buildCatalog(t)
	params := c.OpToParams(1)
	if len(params) != 1 || params[0].Name != "Red" {
		t.Fatalf("OpToParams(1) = %+v, want one param named Red", params)
	}
	if got := c.OpToParams(2); len(got) != 0 {
		t.Fatalf("OpToParams(2) = %+v, want none", got)
	}
}

func TestCatalogResourcesInGroup(t *testing.T) {
	c := buildCatalog(t)
	rs := c.ResourcesInGroup(10)
	if len(rs) != 1 || rs[0].ResourceID != 100 {
		t.Fatalf("ResourcesInGroup(10) = %+v, want [100]", rs)
	}
	if rs := c.ResourcesInGroup(999); len(rs) != 0 {
		t.Fatalf("ResourcesInGroup(999) = %+v, want none", rs)
	}
}
