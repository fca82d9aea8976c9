// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dependency is the Dependency Builder (spec §4.3): it derives
// operation sequencing within orders and BOM-induced cross-order
// precedences, independent of any solver representation.
package dependency

import "github.com/cosnicolaou/shopsched/entities"

// Edge is a precedence constraint: Before must end no later than After
// starts.
type Edge struct {
	Before entities.ID
	After  entities.ID
	// Reason documents which rule produced the edge, for diagnostics.
	Reason string
}

// Build derives every intra-order and BOM-induced precedence edge from
// the catalog. Order of the returned slice is deterministic: intra-order
// edges first (grouped by order_no, in catalog order), then BOM edges
// (grouped by BOM link, in catalog order).
func Build(catalog *entities.Catalog) []Edge {
	var edges []Edge

	seenOrders := map[string]bool{}
	for _, op := range catalog.Operations {
		if seenOrders[op.OrderNo] {
			continue
		}
		seenOrders[op.OrderNo] = true
		ops := catalog.OpsByOrder(op.OrderNo)
		for i := 1; i < len(ops); i++ {
			edges = append(edges, Edge{
				Before: ops[i-1].OperationID,
				After:  ops[i].OperationID,
				Reason: "intra-order",
			})
		}
	}

	for _, link := range catalog.BomLinks {
		parentOps := catalog.OpsByOrder(link.ParentOrderNo)
		if len(parentOps) == 0 {
			continue
		}
		firstOp := parentOps[0]
		producers := catalog.PartProducers(link.RequiredPartNo)
		for _, producer := range producers {
			lastOpID, ok := catalog.OrderLastOp(producer)
			if !ok {
				continue
			}
			edges = append(edges, Edge{
				Before: lastOpID,
				After:  firstOp.OperationID,
				Reason: "bom:" + link.RequiredPartNo,
			})
		}
	}

	return edges
}
