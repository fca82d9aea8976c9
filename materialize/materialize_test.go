// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package materialize_test

import (
	"context"
	"testing"
	"time"

	"cloudeng.io/datetime"
	"github.com/cosnicolaou/shopsched/calendar"
	"github.com/cosnicolaou/shopsched/changeover"
	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/materialize"
	"github.com/cosnicolaou/shopsched/model"
	"github.com/cosnicolaou/shopsched/solver"
)

func weekdayCatalog(t *testing.T) (*entities.Catalog, entities.Resource) {
	t.Helper()
	shift := entities.Shift{ShiftID: 1, Start: datetime.NewTimeOfDay(8, 0, 0), End: datetime.NewTimeOfDay(16, 0, 0)}
	var sched entities.Schedule
	sched.ScheduleID = 1
	for d := entities.Monday; d <= entities.Friday; d++ {
		sched.Days[d] = 1
	}
	resource := entities.Resource{ResourceID: 100, Name: "M1", ScheduleID: 1}
	return entities.Build(nil, nil, []entities.Resource{resource}, nil, nil, nil, nil, nil, nil, nil, nil,
		[]entities.Schedule{sched}, []entities.Shift{shift}, nil), resource
}

func TestMaterialiseOrdersEndsAndLateness(t *testing.T) {
	catalog, resource := weekdayCatalog(t)
	monday := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	due := monday // due immediately: the operation will be late.

	op := entities.Operation{OperationID: 1, OrderNo: "A", OpNo: 1, OperationName: "Cut", ResourceGroupID: 10, DueDate: &due}
	catalog = entities.Build([]entities.Operation{op}, nil, []entities.Resource{resource}, nil, nil, nil, nil, nil, nil, nil, nil,
		catalog.Schedules, catalog.Shifts, catalog.Breaks)

	mdl := &model.Model{
		Catalog: catalog,
		Ops:     []model.OperationVar{{OpID: 1, Index: 0, ProcessMinutes: 120, EligibleResources: []entities.ID{100}}},
		OpIndex: map[entities.ID]int{1: 0},
	}
	res := &solver.Result{Assignments: []solver.Assignment{{OpIndex: 0, Resource: 100, Start: 0, End: 120}}}

	calEngine := calendar.New(catalog, calendar.Config{HorizonDays: 30})
	coEngine := changeover.New(catalog)
	mat := materialize.New(catalog, calEngine, coEngine, monday, resource)

	out, err := mat.Materialise(context.Background(), mdl, res, nil)
	if err != nil {
		t.Fatalf("Materialise: %v", err)
	}
	if len(out.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(out.Records))
	}
	rec := out.Records[0]
	wantEnd := time.Date(2026, time.August, 3, 10, 0, 0, 0, time.UTC)
	if !rec.EndTime.Equal(wantEnd) {
		t.Fatalf("EndTime = %v, want %v", rec.EndTime, wantEnd)
	}

	if len(out.Timeline) != 1 || !out.Timeline[0].IsLate {
		t.Fatalf("Timeline = %+v, want one late bar", out.Timeline)
	}
}

func TestMaterialiseAppliesTrueAdjacencyChangeover(t *testing.T) {
	catalog, resource := weekdayCatalog(t)
	resource.ChangeoverGroupID = 900
	monday := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)

	colorAttr := entities.ID(1)
	red, blue := entities.ID(10), entities.ID(11)
	ops := []entities.Operation{
		{OperationID: 1, OrderNo: "A", OpNo: 1, OperationName: "Paint red"},
		{OperationID: 2, OrderNo: "B", OpNo: 1, OperationName: "Paint blue"},
	}
	params := []entities.AttributeParam{
		{ParamID: red, AttributeID: colorAttr, Name: "Red"},
		{ParamID: blue, AttributeID: colorAttr, Name: "Blue"},
	}
	assignments := []entities.OrderAttributeAssignment{
		{OperationID: 1, AttributeID: colorAttr, ParamID: red},
		{OperationID: 2, AttributeID: colorAttr, ParamID: blue},
	}
	matrix := []entities.ChangeoverMatrixEntry{
		{ChangeoverGroupID: 900, AttributeID: colorAttr, FromParamID: red, ToParamID: blue, SetupMinutes: 30},
	}
	catalog = entities.Build(ops, nil, []entities.Resource{resource}, nil, nil, nil, params, assignments, nil, matrix, nil,
		catalog.Schedules, catalog.Shifts, catalog.Breaks)

	mdl := &model.Model{
		Catalog: catalog,
		Ops: []model.OperationVar{
			{OpID: 1, Index: 0, ProcessMinutes: 60, EligibleResources: []entities.ID{100}},
			{OpID: 2, Index: 1, ProcessMinutes: 60, EligibleResources: []entities.ID{100}},
		},
		OpIndex: map[entities.ID]int{1: 0, 2: 1},
	}
	// Solver minutes leave exactly a 30-minute gap between op1's end and
	// op2's start, matching the true changeover cost.
	res := &solver.Result{Assignments: []solver.Assignment{
		{OpIndex: 0, Resource: 100, Start: 0, End: 60},
		{OpIndex: 1, Resource: 100, Start: 90, End: 150},
	}}

	calEngine := calendar.New(catalog, calendar.Config{HorizonDays: 30})
	coEngine := changeover.New(catalog)
	mat := materialize.New(catalog, calEngine, coEngine, monday, resource)

	out, err := mat.Materialise(context.Background(), mdl, res, nil)
	if err != nil {
		t.Fatalf("Materialise: %v", err)
	}
	var changeoverBars int
	for _, tl := range out.Timeline {
		if tl.OrderNo == "CHANGEOVER" {
			changeoverBars++
			if tl.ChangeoverMinutes != 30 {
				t.Fatalf("changeover bar minutes = %d, want 30", tl.ChangeoverMinutes)
			}
		}
	}
	if changeoverBars != 1 {
		t.Fatalf("got %d changeover bars, want 1", changeoverBars)
	}
	if rec, ok := findRecord(out.Records, 2); ok && rec.SetupTimeDays <= 0 {
		t.Fatalf("op2 SetupTimeDays = %v, want > 0", rec.SetupTimeDays)
	}
}

func TestMaterialiseFlagsCalendarSoundnessViolation(t *testing.T) {
	catalog, resource := weekdayCatalog(t)
	// Friday: the assignment consumes Friday's full 480 minutes, then
	// spills 20 more minutes that can only be worked the following
	// Monday -- the interval's wall-clock span crosses a weekend the
	// resource never works, which invariant 9 flags.
	friday := time.Date(2026, time.August, 7, 0, 0, 0, 0, time.UTC)

	op := entities.Operation{OperationID: 1, OrderNo: "A", OpNo: 1, OperationName: "Cut"}
	catalog = entities.Build([]entities.Operation{op}, nil, []entities.Resource{resource}, nil, nil, nil, nil, nil, nil, nil, nil,
		catalog.Schedules, catalog.Shifts, catalog.Breaks)

	mdl := &model.Model{
		Catalog: catalog,
		Ops:     []model.OperationVar{{OpID: 1, Index: 0, ProcessMinutes: 500, EligibleResources: []entities.ID{100}}},
		OpIndex: map[entities.ID]int{1: 0},
	}
	res := &solver.Result{Assignments: []solver.Assignment{{OpIndex: 0, Resource: 100, Start: 0, End: 500}}}

	calEngine := calendar.New(catalog, calendar.Config{HorizonDays: 30})
	coEngine := changeover.New(catalog)
	mat := materialize.New(catalog, calEngine, coEngine, friday, resource)

	out, err := mat.Materialise(context.Background(), mdl, res, nil)
	if err != nil {
		t.Fatalf("Materialise: %v", err)
	}
	if len(out.Violations) != 2 {
		t.Fatalf("got %d violations, want 2 (Saturday and Sunday)", len(out.Violations))
	}
	for _, v := range out.Violations {
		if wd := v.Day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			t.Fatalf("violation on %v, want a weekend day", v.Day)
		}
	}
}

func findRecord(records []materialize.OutputRecord, opID entities.ID) (materialize.OutputRecord, bool) {
	for _, r := range records {
		if r.OperationID == opID {
			return r, true
		}
	}
	return materialize.OutputRecord{}, false
}
