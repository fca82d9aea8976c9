// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package solver

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/errkind"
	"github.com/cosnicolaou/shopsched/internal/progress"
	"github.com/cosnicolaou/shopsched/model"
)

// topologicalOrder returns a precedence-respecting processing order
// (Kahn's algorithm), tie-broken by earliest due date then by index so
// the order is deterministic. It fails if the precedence edges contain a
// cycle, which per spec §9 should not occur for well-formed input.
func topologicalOrder(m *model.Model) ([]int, error) {
	n := len(m.Ops)
	indeg := make([]int, n)
	adj := make([][]int, n)
	for _, e := range m.Precedences {
		bi, ok1 := m.OpIndex[e.Before]
		ai, ok2 := m.OpIndex[e.After]
		if !ok1 || !ok2 {
			continue
		}
		adj[bi] = append(adj[bi], ai)
		indeg[ai]++
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}
	less := func(a, b int) bool {
		da, db := dueOf(m, a), dueOf(m, b)
		if da != db {
			return da < db
		}
		return a < b
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, nb := range adj[next] {
			indeg[nb]--
			if indeg[nb] == 0 {
				ready = append(ready, nb)
			}
		}
	}
	if len(order) != n {
		return nil, errkind.New(errkind.InfeasibleModel, "precedence graph contains a cycle")
	}
	return order, nil
}

func dueOf(m *model.Model, idx int) int {
	ov := m.Ops[idx]
	if ov.HasDueDate {
		return ov.DueMinutes
	}
	return int(^uint(0) >> 1) // no due date sorts last
}

// pairIndex indexes a resource's ResourcePairs for O(1) cost lookup
// between two specific operation indexes.
type pairIndex map[entities.ID]map[[2]int]model.ResourcePair

func buildPairIndex(m *model.Model) pairIndex {
	pi := make(pairIndex, len(m.ResourcePairs))
	for r, pairs := range m.ResourcePairs {
		idx := make(map[[2]int]model.ResourcePair, len(pairs))
		for _, p := range pairs {
			idx[[2]int{p.I, p.J}] = p
		}
		pi[r] = idx
	}
	return pi
}

func (pi pairIndex) cost(resource entities.ID, from, to int) int {
	idx, ok := pi[resource]
	if !ok {
		return 0
	}
	key := [2]int{from, to}
	if from > to {
		key = [2]int{to, from}
	}
	p, ok := idx[key]
	if !ok {
		return 0
	}
	if from == p.I {
		return p.CostIBeforeJ
	}
	return p.CostJBeforeI
}

// schedule is one fully-built candidate: a processing order plus a
// resource choice per operation.
type schedule struct {
	order      []int
	resourceOf []entities.ID
}

func initialSchedule(m *model.Model, order []int, rng *rand.Rand) schedule {
	resourceOf := make([]entities.ID, len(m.Ops))
	for _, idx := range order {
		ov := m.Ops[idx]
		// Greedy: assign to a random eligible resource, diversifying each
		// worker's starting point; the local-search pass corrects bad
		// choices.
		resourceOf[idx] = ov.EligibleResources[rng.Intn(len(ov.EligibleResources))]
	}
	return schedule{order: order, resourceOf: resourceOf}
}

type built struct {
	start, end []int
	result     *Result
}

// build computes Start/End per operation and the resulting objective for
// one candidate schedule, per spec §4.4's constraints: precedence,
// earliest-start, per-resource non-overlap with adjacent changeover gaps,
// and the pairwise changeover objective term (spec §4.4's "conservative
// over-counting" by design, kept distinct from the true-adjacency
// changeover applied to the timeline itself).
func build(m *model.Model, pi pairIndex, s schedule) built {
	n := len(m.Ops)
	start := make([]int, n)
	end := make([]int, n)

	predecessors := make([][]int, n)
	for _, e := range m.Precedences {
		bi, ok1 := m.OpIndex[e.Before]
		ai, ok2 := m.OpIndex[e.After]
		if ok1 && ok2 {
			predecessors[ai] = append(predecessors[ai], bi)
		}
	}

	type resState struct {
		hasLast bool
		lastIdx int
		free    int
	}
	resources := map[entities.ID]*resState{}

	work := progress.NewTracker(s.order)
	for {
		idx, ok := work.Next()
		if !ok {
			break
		}
		ov := m.Ops[idx]
		ready := 0
		if ov.HasEarliestStart {
			ready = ov.EarliestStartMinutes
		}
		for _, p := range predecessors[idx] {
			if end[p] > ready {
				ready = end[p]
			}
		}
		r := s.resourceOf[idx]
		rs := resources[r]
		if rs == nil {
			rs = &resState{}
			resources[r] = rs
		}
		free := rs.free
		if rs.hasLast {
			free += pi.cost(r, rs.lastIdx, idx)
		}
		st := ready
		if free > st {
			st = free
		}
		en := st + ov.ProcessMinutes
		start[idx] = st
		end[idx] = en
		rs.hasLast = true
		rs.lastIdx = idx
		rs.free = en
		work.Complete(idx)
	}

	res := objective(m, pi, s, start, end)
	return built{start: start, end: end, result: res}
}

func objective(m *model.Model, pi pairIndex, s schedule, start, end []int) *Result {
	n := len(m.Ops)
	assignments := make([]Assignment, n)
	totalLateness := 0
	makespan := 0
	load := map[entities.ID]int{}
	for i := 0; i < n; i++ {
		ov := m.Ops[i]
		assignments[i] = Assignment{OpIndex: i, Resource: s.resourceOf[i], Start: start[i], End: end[i]}
		if ov.HasDueDate {
			if late := end[i] - ov.DueMinutes; late > 0 {
				totalLateness += late
			}
		}
		if end[i] > makespan {
			makespan = end[i]
		}
		load[s.resourceOf[i]] += ov.ProcessMinutes
	}

	maxLoad, minLoad := 0, 0
	first := true
	used := 0
	for _, l := range load {
		used++
		if first {
			maxLoad, minLoad = l, l
			first = false
			continue
		}
		if l > maxLoad {
			maxLoad = l
		}
		if l < minLoad {
			minLoad = l
		}
	}
	loadRange := 0
	if used >= 2 {
		loadRange = maxLoad - minLoad
	}

	totalStart := 0
	if m.GravityEnabled {
		for _, st := range start {
			totalStart += st
		}
	}

	totalChangeover := 0
	for r, pairs := range m.ResourcePairs {
		for _, p := range pairs {
			if s.resourceOf[p.I] != r || s.resourceOf[p.J] != r {
				continue
			}
			if start[p.I] <= start[p.J] {
				totalChangeover += p.CostIBeforeJ
			} else {
				totalChangeover += p.CostJBeforeI
			}
		}
	}

	w := m.Weights
	objective := w.Lateness*totalLateness + w.Changeover*totalChangeover + w.Makespan*makespan +
		w.LoadRange*loadRange + w.MaxLoad*maxLoad
	if m.GravityEnabled {
		objective += w.Gravity * totalStart
	}

	return &Result{
		Assignments:     assignments,
		TotalLateness:   totalLateness,
		TotalChangeover: totalChangeover,
		Makespan:        makespan,
		MaxLoad:         maxLoad,
		MinLoad:         minLoad,
		LoadRange:       loadRange,
		TotalStart:      totalStart,
		Objective:       objective,
	}
}

// searchOnce runs one worker's constructive pass followed by bounded
// local search. converged reports whether the search reached a local
// optimum (maxNoImprove consecutive non-improving moves) before the
// deadline, as opposed to being cut off mid-improvement.
func searchOnce(ctx context.Context, m *model.Model, order []int, seed int64, deadline time.Time) (*Result, bool) {
	rng := rand.New(rand.NewSource(seed))
	pi := buildPairIndex(m)

	cur := initialSchedule(m, order, rng)
	curBuilt := build(m, pi, cur)

	const maxNoImprove = 200
	noImprove := 0
	converged := false

	for {
		select {
		case <-ctx.Done():
			return curBuilt.result, converged
		default:
		}
		if time.Now().After(deadline) {
			return curBuilt.result, converged
		}
		if noImprove >= maxNoImprove {
			converged = true
			return curBuilt.result, converged
		}

		cand := mutate(m, cur, rng)
		candBuilt := build(m, pi, cand)
		if candBuilt.result.Objective < curBuilt.result.Objective {
			cur = cand
			curBuilt = candBuilt
			noImprove = 0
		} else {
			noImprove++
		}
	}
}

// mutate produces a neighbour candidate by either reassigning one
// operation to a different eligible resource, or swapping two adjacent
// entries of the processing order that do not violate a precedence edge.
func mutate(m *model.Model, s schedule, rng *rand.Rand) schedule {
	order := append([]int(nil), s.order...)
	resourceOf := append([]entities.ID(nil), s.resourceOf...)
	next := schedule{order: order, resourceOf: resourceOf}

	if rng.Intn(2) == 0 {
		idx := rng.Intn(len(m.Ops))
		ov := m.Ops[idx]
		if len(ov.EligibleResources) > 1 {
			choice := ov.EligibleResources[rng.Intn(len(ov.EligibleResources))]
			next.resourceOf[idx] = choice
		}
		return next
	}

	if len(order) < 2 {
		return next
	}
	i := rng.Intn(len(order) - 1)
	a, b := order[i], order[i+1]
	if !precedenceAllows(m, a, b) {
		return next
	}
	next.order[i], next.order[i+1] = b, a
	return next
}

func precedenceAllows(m *model.Model, a, b int) bool {
	aID, bID := m.Ops[a].OpID, m.Ops[b].OpID
	for _, e := range m.Precedences {
		if e.Before == aID && e.After == bID {
			return false
		}
		if e.Before == bID && e.After == aID {
			return false
		}
	}
	return true
}
