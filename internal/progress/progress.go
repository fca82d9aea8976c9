// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package progress tracks the operations still to be placed during one
// constructive scheduling pass. It is the same doubly-linked
// pending-to-done worklist the teacher used to track in-flight device
// operations (internal/status_recorder.go's StatusRecorder), repurposed
// here for in-flight list-scheduling: operations enter in processing
// order and move to done as the constructive pass places them.
package progress

import (
	"iter"

	"cloudeng.io/algo/container/list"
)

// Tracker is a pending->done worklist of dense operation indexes.
type Tracker struct {
	pending *list.Double[int]
	ids     map[int]list.DoubleID[int]
	done    []int
}

// NewTracker seeds the worklist with order, a precedence-respecting
// processing sequence of dense operation indexes.
func NewTracker(order []int) *Tracker {
	t := &Tracker{
		pending: list.NewDouble[int](),
		ids:     make(map[int]list.DoubleID[int], len(order)),
		done:    make([]int, 0, len(order)),
	}
	for _, idx := range order {
		t.ids[idx] = t.pending.Append(idx)
	}
	return t
}

// Next returns the earliest still-pending index without removing it, or
// false once every index has been completed.
func (t *Tracker) Next() (int, bool) {
	for idx := range t.pending.Forward() {
		return idx, true
	}
	return 0, false
}

// Complete moves idx from pending to done. It is a no-op if idx was
// already completed.
func (t *Tracker) Complete(idx int) {
	id, ok := t.ids[idx]
	if !ok {
		return
	}
	t.pending.RemoveItem(id)
	delete(t.ids, idx)
	t.done = append(t.done, idx)
}

// Pending iterates the indexes not yet completed, in processing order.
func (t *Tracker) Pending() iter.Seq[int] { return t.pending.Forward() }

// Done returns the indexes completed so far, in completion order.
func (t *Tracker) Done() []int { return t.done }

// Len reports how many indexes remain pending.
func (t *Tracker) Len() int { return len(t.ids) }
