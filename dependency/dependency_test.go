// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dependency_test

import (
	"testing"

	"github.com/cosnicolaou/shopsched/dependency"
	"github.com/cosnicolaou/shopsched/entities"
)

func TestBuildIntraOrderEdges(t *testing.T) {
	ops := []entities.Operation{
		{OperationID: 1, OrderNo: "A", OpNo: 1},
		{OperationID: 2, OrderNo: "A", OpNo: 2},
		{OperationID: 3, OrderNo: "A", OpNo: 3},
	}
	catalog := entities.Build(ops, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	edges := dependency.Build(catalog)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	if edges[0].Before != 1 || edges[0].After != 2 {
		t.Fatalf("edges[0] = %+v, want 1->2", edges[0])
	}
	if edges[1].Before != 2 || edges[1].After != 3 {
		t.Fatalf("edges[1] = %+v, want 2->3", edges[1])
	}
}

func TestBuildBomEdgeSkippedWhenNoRegisteredProducer(t *testing.T) {
	ops := []entities.Operation{
		{OperationID: 1, OrderNo: "SUB1", OpNo: 1},
		{OperationID: 2, OrderNo: "SUB2", OpNo: 1},
		{OperationID: 3, OrderNo: "FINAL", OpNo: 1},
	}
	links := []entities.BomLink{
		{ParentOrderNo: "FINAL", OrderPartNo: "ASSY", RequiredPartNo: "PART-X", RequiredQuantity: 1},
	}
	catalog := entities.Build(ops, links, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	// PART-X is nobody's OrderPartNo, so PartProducers("PART-X") is empty
	// and dependency.Build must not emit a BOM edge for it.
	edges := dependency.Build(catalog)
	for _, e := range edges {
		if e.Reason != "intra-order" {
			t.Fatalf("unexpected BOM edge with no registered producer: %+v", e)
		}
	}
}

func TestBuildBomEdgeToFirstOpOfParent(t *testing.T) {
	ops := []entities.Operation{
		{OperationID: 1, OrderNo: "SUB", OpNo: 1},
		{OperationID: 2, OrderNo: "SUB", OpNo: 2},
		{OperationID: 3, OrderNo: "FINAL", OpNo: 1},
		{OperationID: 4, OrderNo: "FINAL", OpNo: 2},
	}
	links := []entities.BomLink{
		// SUB produces part "SUB" (its own OrderPartNo) from "RAW", which no
		// order produces, and FINAL requires "SUB".
		{ParentOrderNo: "SUB", OrderPartNo: "SUB", RequiredPartNo: "RAW", RequiredQuantity: 1},
		{ParentOrderNo: "FINAL", OrderPartNo: "ASSY", RequiredPartNo: "SUB", RequiredQuantity: 2},
	}
	catalog := entities.Build(ops, links, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	edges := dependency.Build(catalog)

	var bomEdges []dependency.Edge
	for _, e := range edges {
		if e.Before == 2 {
			bomEdges = append(bomEdges, e)
		}
	}
	if len(bomEdges) != 1 || bomEdges[0].After != 3 {
		t.Fatalf("want one BOM edge from SUB's last op (2) to FINAL's first op (3), got %+v", bomEdges)
	}
}
