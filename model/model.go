// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package model is the Model Builder (spec §4.4): it constructs the
// constraint model — interval variables, resource disjunctions,
// precedences, changeover penalties and the objective — from a Catalog
// and the edges derived by package dependency. The model is a plain data
// structure; package solver is the only consumer that interprets it as a
// disjunctive scheduling problem.
package model

import (
	"fmt"
	"math"
	"time"

	"github.com/cosnicolaou/shopsched/dependency"
	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/errkind"
)

// MinutesPerDay converts process_time_days to solver minutes (spec §4.4).
const MinutesPerDay = 1440

// Weights is the six-tuple objective configuration of spec §4.4 / §6.
type Weights struct {
	Lateness   int // default 10000
	Changeover int // default 500
	Makespan   int // default 100
	LoadRange  int // default 50
	MaxLoad    int // default 1
	Gravity    int // default 1, only applied when GravityEnabled
}

// DefaultWeights returns the priorities named in spec §4.4.
func DefaultWeights() Weights {
	return Weights{Lateness: 10000, Changeover: 500, Makespan: 100, LoadRange: 50, MaxLoad: 1, Gravity: 1}
}

// OperationVar is one operation's solver-facing variables.
type OperationVar struct {
	OpID                 entities.ID
	Index                int // dense index, §9
	ProcessMinutes        int
	EligibleResources     []entities.ID
	EarliestStartMinutes  int  // 0 if unset
	HasEarliestStart      bool
	DueMinutes            int // only meaningful if HasDueDate
	HasDueDate            bool
}

// ResourcePair is the sequence-dependent changeover term for one unordered
// pair of operations eligible for the same resource (spec §4.4).
type ResourcePair struct {
	I, J       int // indexes into Model.Ops, I < J
	Resource   entities.ID
	CostIBeforeJ int // changeover_minutes(i, j, resource)
	CostJBeforeI int // changeover_minutes(j, i, resource)
}

// Model is the constraint model handed to the solver.
type Model struct {
	Catalog      *entities.Catalog
	Ops          []OperationVar
	OpIndex      map[entities.ID]int
	Precedences  []dependency.Edge
	ResourcePairs map[entities.ID][]ResourcePair // resource_id -> pairs eligible on it
	Horizon      int
	Weights      Weights
	GravityEnabled bool
	SimStart     time.Time
}

// Changeover is the minimal interface the model needs from package
// changeover, kept narrow so tests can supply a fake.
type Changeover interface {
	Minutes(from, to entities.ID, resource entities.Resource) int
}

// Config carries the pieces of pipeline.Config the model builder needs.
type Config struct {
	Horizon              int
	Weights              Weights
	GravityEnabled       bool
	SimStart             time.Time
	ShiftDurationMinutes int // uniform per-day approximation used for earliest-start offsets, spec §4.4
}

// Build constructs a Model from the catalog and its derived precedence
// edges. It returns errkind.InputInconsistent if an operation's
// process_time_days is negative. An operation whose resource group has no
// member resources is not rejected here; it gets an empty
// EligibleResources list.
func Build(catalog *entities.Catalog, edges []dependency.Edge, co Changeover, cfg Config) (*Model, error) {
	m := &Model{
		Catalog:       catalog,
		OpIndex:       make(map[entities.ID]int, len(catalog.Operations)),
		Precedences:   edges,
		ResourcePairs: make(map[entities.ID][]ResourcePair),
		Horizon:       cfg.Horizon,
		Weights:       cfg.Weights,
		GravityEnabled: cfg.GravityEnabled,
		SimStart:      cfg.SimStart,
	}

	m.Ops = make([]OperationVar, 0, len(catalog.Operations))
	for _, op := range catalog.Operations {
		if op.ProcessTimeDays < 0 {
			return nil, errkind.WithRecord(errkind.InputInconsistent, fmt.Sprintf("%d", op.OperationID),
				"operation %s/%d has negative process_time_days", op.OrderNo, op.OpNo)
		}
		proc := int(math.Round(op.ProcessTimeDays * MinutesPerDay))
		if op.ProcessTimeDays > 0 && proc < 1 {
			proc = 1
		}

		ov := OperationVar{
			OpID:           op.OperationID,
			Index:          len(m.Ops),
			ProcessMinutes: proc,
			EligibleResources: idsOf(catalog.ResourcesInGroup(op.ResourceGroupID)),
		}
		if op.EarliestStartDate != nil {
			days := op.EarliestStartDate.Sub(cfg.SimStart).Hours() / 24
			ov.EarliestStartMinutes = int(math.Round(days * float64(cfg.ShiftDurationMinutes)))
			if ov.EarliestStartMinutes < 0 {
				ov.EarliestStartMinutes = 0
			}
			ov.HasEarliestStart = true
		}
		if op.DueDate != nil {
			minutes := int(op.DueDate.Sub(cfg.SimStart).Minutes())
			ov.DueMinutes = minutes
			ov.HasDueDate = true
		}
		m.OpIndex[op.OperationID] = ov.Index
		m.Ops = append(m.Ops, ov)
	}

	// Sequence-dependent changeover terms: every unordered pair of
	// operations that share at least one eligible resource (spec §4.4).
	for i := 0; i < len(m.Ops); i++ {
		for j := i + 1; j < len(m.Ops); j++ {
			oi, oj := m.Ops[i], m.Ops[j]
			for _, rid := range oi.EligibleResources {
				if !contains(oj.EligibleResources, rid) {
					continue
				}
				res, ok := catalog.Resource(rid)
				if !ok {
					continue
				}
				pair := ResourcePair{
					I: i, J: j, Resource: rid,
					CostIBeforeJ: co.Minutes(oi.OpID, oj.OpID, res),
					CostJBeforeI: co.Minutes(oj.OpID, oi.OpID, res),
				}
				m.ResourcePairs[rid] = append(m.ResourcePairs[rid], pair)
			}
		}
	}

	return m, nil
}

func idsOf(rs []entities.Resource) []entities.ID {
	out := make([]entities.ID, len(rs))
	for i, r := range rs {
		out[i] = r.ResourceID
	}
	return out
}

func contains(ids []entities.ID, id entities.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
