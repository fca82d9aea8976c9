// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package solver is the Solver Driver (spec §4.5/§6): it turns a
// model.Model into a disjunctive schedule. There is no bundled CP-SAT
// binding in this environment, so the driver implements its own bounded
// portfolio search — a constructive list-scheduling pass per worker,
// each followed by a local-search improvement loop, racing
// num_search_workers goroutines (cloudeng.io/sync/errgroup, the same
// fan-out idiom the teacher uses for per-schedule goroutines in
// scheduler.RunSchedulers) against a wall-clock deadline and keeping the
// best feasible incumbent found. Builder and solver are decoupled
// exactly as spec §2 describes C5/C6: the model owns the constraints,
// the driver only searches over assignments that satisfy them.
package solver

import (
	"context"
	"fmt"
	"time"

	"cloudeng.io/sync/errgroup"
	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/errkind"
	"github.com/cosnicolaou/shopsched/model"
)

// Status mirrors the CP solver statuses spec §4.5 requires the driver to
// distinguish.
type Status int

const (
	Infeasible Status = iota
	Timeout
	Feasible
	Optimal
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Feasible:
		return "feasible"
	case Timeout:
		return "timeout"
	default:
		return "infeasible"
	}
}

// Config is the bounded-search configuration of spec §4.5.
type Config struct {
	TimeLimit     time.Duration // default 600s
	Workers       int           // default 8
	Deterministic bool          // pins Workers = 1, spec §5
}

// DefaultConfig returns the spec's default bounds.
func DefaultConfig() Config {
	return Config{TimeLimit: 600 * time.Second, Workers: 8}
}

// Assignment is one operation's solved placement, in solver-minute units.
type Assignment struct {
	OpIndex  int
	Resource entities.ID
	Start    int
	End      int
}

// Result is the solver's readback (spec §4.4's derived objective
// variables plus the assignment).
type Result struct {
	Status           Status
	Assignments      []Assignment // indexed by dense operation index: Assignments[i].OpIndex == i
	TotalLateness    int
	TotalChangeover  int
	Makespan         int
	MaxLoad          int
	MinLoad          int
	LoadRange        int
	TotalStart       int
	Objective        int
}

// Solve runs the bounded portfolio search described above.
func Solve(ctx context.Context, m *model.Model, cfg Config) (*Result, error) {
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = DefaultConfig().TimeLimit
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}
	if cfg.Deterministic {
		workers = 1
	}

	for _, ov := range m.Ops {
		if len(ov.EligibleResources) == 0 {
			return &Result{Status: Infeasible}, errkind.WithRecord(errkind.InfeasibleModel,
				formatID(ov.OpID), "operation has no eligible resource")
		}
	}

	order, err := topologicalOrder(m)
	if err != nil {
		return &Result{Status: Infeasible}, err
	}

	deadline := time.Now().Add(cfg.TimeLimit)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	type attempt struct {
		res      *Result
		converged bool
	}
	results := make([]attempt, workers)

	var g errgroup.T
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			seed := int64(w + 1)
			res, converged := searchOnce(ctx, m, order, seed, deadline)
			results[w] = attempt{res: res, converged: converged}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &Result{Status: Infeasible}, err
	}

	var best *Result
	bestConverged := false
	for _, a := range results {
		if a.res == nil {
			continue
		}
		if best == nil || a.res.Objective < best.Objective {
			best = a.res
			bestConverged = a.converged
		}
	}
	if best == nil {
		return &Result{Status: Timeout}, errkind.New(errkind.SolveTimeout, "no feasible incumbent found within %s", cfg.TimeLimit)
	}
	if bestConverged {
		best.Status = Optimal
	} else {
		best.Status = Feasible
	}
	return best, nil
}

func formatID(id entities.ID) string {
	return fmt.Sprintf("%d", id)
}
