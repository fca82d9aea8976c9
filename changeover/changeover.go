// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package changeover is the Changeover Engine (spec §4.2): the
// sequence-dependent setup-cost model between any two operations on any
// resource, driven by per-attribute matrices and standards.
package changeover

import "github.com/cosnicolaou/shopsched/entities"

// Engine computes changeover_minutes(from, to, resource) against a
// Catalog's matrix and standard tables.
type Engine struct {
	catalog *entities.Catalog

	matrix    map[matrixKey]int
	standards map[standardKey]int
}

type matrixKey struct {
	group, attribute, from, to entities.ID
}

type standardKey struct {
	group, attribute entities.ID
}

// New indexes the catalog's changeover matrix and standards for O(1)
// lookup.
func New(catalog *entities.Catalog) *Engine {
	e := &Engine{
		catalog:   catalog,
		matrix:    make(map[matrixKey]int, len(catalog.ChangeoverMatrix)),
		standards: make(map[standardKey]int, len(catalog.ChangeoverStandards)),
	}
	for _, m := range catalog.ChangeoverMatrix {
		e.matrix[matrixKey{m.ChangeoverGroupID, m.AttributeID, m.FromParamID, m.ToParamID}] = m.SetupMinutes
	}
	for _, s := range catalog.ChangeoverStandards {
		e.standards[standardKey{s.ChangeoverGroupID, s.AttributeID}] = s.SetupMinutes
	}
	return e
}

// Minutes implements the algorithm of spec §4.2: for every attribute the
// "to" operation carries a value for, find the matching "from" value and
// look up its setup cost (0 if equal, else matrix entry, else standard,
// else the attribute contributes nothing); then combine contributions
// per the resource's accumulative flag.
func (e *Engine) Minutes(from, to entities.ID, resource entities.Resource) int {
	if !resource.HasChangeoverGroup() {
		return 0
	}
	group := resource.ChangeoverGroupID
	fp := e.catalog.OpToParams(from)
	tp := e.catalog.OpToParams(to)
	if len(fp) == 0 || len(tp) == 0 {
		return 0
	}

	var contributions []int
	for _, t := range tp {
		a := t.AttributeID
		for _, f := range fp {
			if f.AttributeID != a {
				continue
			}
			switch {
			case f.ParamID == t.ParamID:
				contributions = append(contributions, 0)
			default:
				if minutes, ok := e.matrix[matrixKey{group, a, f.ParamID, t.ParamID}]; ok {
					contributions = append(contributions, minutes)
				} else if minutes, ok := e.standards[standardKey{group, a}]; ok {
					contributions = append(contributions, minutes)
				}
				// else: no cost source for this attribute, skip.
			}
		}
	}
	if len(contributions) == 0 {
		return 0
	}
	if resource.Accumulative {
		max := contributions[0]
		for _, c := range contributions[1:] {
			if c > max {
				max = c
			}
		}
		return max
	}
	sum := 0
	for _, c := range contributions {
		sum += c
	}
	return sum
}
