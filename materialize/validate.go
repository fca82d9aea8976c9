// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package materialize

import (
	"time"

	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/model"
	"github.com/cosnicolaou/shopsched/solver"
)

// validateCalendarSoundness implements spec §8 invariant 9: every
// calendar day intersected by a materialised operation must either have
// positive working minutes on its resource, or the overlap must be
// zero. This is a consequence of the uniform SHIFT_DURATION_MINUTES
// search-axis approximation (spec §4.1's design note) occasionally
// placing work on what turns out, once per-resource calendars are
// applied, to be a non-working day; violations are flagged, not fatal.
func (m *Materialiser) validateCalendarSoundness(byResource map[entities.ID][]solver.Assignment, mdl *model.Model) []Violation {
	var violations []Violation
	for r, assignments := range byResource {
		resource, ok := m.catalog.Resource(r)
		if !ok {
			continue
		}
		for _, a := range assignments {
			realStart, err := m.cal.Materialise(resource, m.simStart, a.Start)
			if err != nil {
				continue
			}
			realEnd, err := m.cal.Materialise(resource, m.simStart, a.End)
			if err != nil {
				continue
			}
			for day := dateFloor(realStart); !day.After(dateFloor(realEnd)); day = day.AddDate(0, 0, 1) {
				if day.Equal(dateFloor(realEnd)) && realEnd.Equal(day) {
					continue // zero-length overlap at the boundary day
				}
				if m.cal.WorkingMinutesOn(resource, day) > 0 {
					continue
				}
				violations = append(violations, Violation{
					OperationID: mdl.Ops[a.OpIndex].OpID,
					ResourceID:  r,
					Day:         day,
				})
			}
		}
	}
	return violations
}

func dateFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
