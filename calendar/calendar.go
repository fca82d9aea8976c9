// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package calendar is the Calendar Engine (spec §4.1): per-resource
// working-time arithmetic. It answers two questions: how many minutes of
// a given calendar day a resource can work, and at what wall-clock
// datetime a count of working minutes elapsed since a simulation start
// accumulates, honouring the resource's weekly schedule, shifts and
// breaks.
package calendar

import (
	"time"

	"cloudeng.io/datetime"
	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/errkind"
)

// DefaultShiftStartHour/Min and DefaultShiftEndHour/Min are the
// configured defaults used when a resource has a working day but
// (degenerately) no resolvable shift record; spec §4.1 calls this "a
// configured default (08:00)".
const (
	DefaultShiftStartHour = 8
	DefaultShiftStartMin  = 0
	DefaultShiftEndHour   = 16
	DefaultShiftEndMin    = 0
)

// DefaultHorizonDays bounds the materialise search loop (spec §4.1).
const DefaultHorizonDays = 730

// Config configures an Engine's bounded horizon and its fallback shift
// times, spec §6's shift_start_hour/min and shift_end_hour/min knobs.
type Config struct {
	HorizonDays int // <= 0 selects DefaultHorizonDays

	ShiftStartHour int
	ShiftStartMin  int
	ShiftEndHour   int
	ShiftEndMin    int
}

// Engine resolves working-time arithmetic against a Catalog.
type Engine struct {
	catalog          *entities.Catalog
	horizonDays      int
	fallbackStartMin int
	fallbackEndMin   int
}

// New builds a calendar Engine from cfg.
func New(catalog *entities.Catalog, cfg Config) *Engine {
	horizonDays := cfg.HorizonDays
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	startHour, startMin := cfg.ShiftStartHour, cfg.ShiftStartMin
	if startHour == 0 && startMin == 0 {
		startHour, startMin = DefaultShiftStartHour, DefaultShiftStartMin
	}
	endHour, endMin := cfg.ShiftEndHour, cfg.ShiftEndMin
	if endHour == 0 && endMin == 0 {
		endHour, endMin = DefaultShiftEndHour, DefaultShiftEndMin
	}
	return &Engine{
		catalog:          catalog,
		horizonDays:      horizonDays,
		fallbackStartMin: startHour*60 + startMin,
		fallbackEndMin:   endHour*60 + endMin,
	}
}

func minutesOfDay(t datetime.TimeOfDay) int {
	return t.Hour()*60 + t.Minute()
}

func spanMinutes(start, end datetime.TimeOfDay) int {
	s, e := minutesOfDay(start), minutesOfDay(end)
	d := e - s
	if d < 0 {
		d += 24 * 60
	}
	return d
}

// resolvedShift is what shiftFor found for one resource/weekday: either
// a concrete shift record, the configured fallback (a working day whose
// shift record is missing), or not a working day at all.
type resolvedShift struct {
	startMin, endMin int
	breakIDs         []entities.ID
	working          bool
}

func (e *Engine) shiftFor(r entities.Resource, day entities.Weekday) resolvedShift {
	if r.ScheduleID == 0 {
		return resolvedShift{}
	}
	sched, ok := e.catalog.Schedule(r.ScheduleID)
	if !ok {
		return resolvedShift{}
	}
	shiftID := sched.Days[day]
	if shiftID == 0 {
		return resolvedShift{}
	}
	shift, ok := e.catalog.Shift(shiftID)
	if !ok {
		// A working day whose shift record can't be resolved: spec §4.1's
		// "configured default" fallback applies.
		return resolvedShift{startMin: e.fallbackStartMin, endMin: e.fallbackEndMin, working: true}
	}
	return resolvedShift{startMin: minutesOfDay(shift.Start), endMin: minutesOfDay(shift.End), breakIDs: shift.BreakIDs, working: true}
}

// WorkingMinutesOn returns the working minutes r has available on date,
// gross shift duration minus its breaks, clamped to >= 0. A resource
// without a schedule, or without a working day on that weekday, returns 0.
func (e *Engine) WorkingMinutesOn(r entities.Resource, date time.Time) int {
	shift := e.shiftFor(r, weekdayOf(date))
	if !shift.working {
		return 0
	}
	gross := shift.endMin - shift.startMin
	if gross < 0 {
		gross += 24 * 60
	}
	for _, bid := range shift.breakIDs {
		brk, ok := e.catalog.Break(bid)
		if !ok {
			continue
		}
		gross -= spanMinutes(brk.Start, brk.End)
	}
	if gross < 0 {
		gross = 0
	}
	return gross
}

// ShiftStartMinutesOn returns the minutes-since-midnight of date's shift
// start for r, or the configured default if r has a working day with no
// resolvable shift record.
func (e *Engine) ShiftStartMinutesOn(r entities.Resource, date time.Time) int {
	shift := e.shiftFor(r, weekdayOf(date))
	if !shift.working {
		return e.fallbackStartMin
	}
	return shift.startMin
}

func weekdayOf(t time.Time) entities.Weekday {
	// time.Weekday is Sunday=0..Saturday=6; entities.Weekday is Monday=0..Sunday=6.
	switch t.Weekday() {
	case time.Sunday:
		return entities.Sunday
	default:
		return entities.Weekday(int(t.Weekday()) - 1)
	}
}

func dateFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Materialise converts workedMinutes of working time elapsed since
// simStart, on resource r, into a wall-clock datetime, per spec §4.1.
// It fails with errkind.CalendarOverflow if no working day is found
// within the engine's bounded horizon.
func (e *Engine) Materialise(r entities.Resource, simStart time.Time, workedMinutes int) (time.Time, error) {
	cur := dateFloor(simStart)
	rem := workedMinutes
	for day := 0; day <= e.horizonDays; day++ {
		avail := e.WorkingMinutesOn(r, cur)
		if avail == 0 {
			cur = cur.AddDate(0, 0, 1)
			continue
		}
		if rem <= avail {
			start := e.ShiftStartMinutesOn(r, cur)
			return cur.Add(time.Duration(start+rem) * time.Minute), nil
		}
		rem -= avail
		cur = cur.AddDate(0, 0, 1)
	}
	return time.Time{}, errkind.New(errkind.CalendarOverflow,
		"resource %d has no working day within %d days of %s", r.ResourceID, e.horizonDays, simStart)
}

// HorizonMinutes computes the model horizon (spec §4.6): the maximum,
// over all resources, of total working minutes over the next
// planningDays calendar days starting at simStart, clamped to a floor of
// floorShifts*shiftDurationMinutes.
func (e *Engine) HorizonMinutes(resources []entities.Resource, simStart time.Time, planningDays int, floorShifts int, shiftDurationMinutes int) int {
	max := 0
	for _, r := range resources {
		total := 0
		cur := dateFloor(simStart)
		for d := 0; d < planningDays; d++ {
			total += e.WorkingMinutesOn(r, cur)
			cur = cur.AddDate(0, 0, 1)
		}
		if total > max {
			max = total
		}
	}
	floor := floorShifts * shiftDurationMinutes
	if max < floor {
		return floor
	}
	return max
}
