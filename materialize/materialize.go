// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package materialize is the Result Materialiser (spec §4.7): it turns
// the solver's integer-minute assignment into real datetimes honouring
// each resource's calendar, recomputes the true (adjacency-based)
// sequence-dependent setup time, and shapes the output/rendering records
// spec §6 describes. Sink, Renderer and the underlying Source are the
// out-of-scope external collaborators (spec §1/§6); this package only
// defines the narrow interfaces they must satisfy.
package materialize

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloudeng.io/sync/errgroup"
	"github.com/cosnicolaou/shopsched/calendar"
	"github.com/cosnicolaou/shopsched/changeover"
	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/model"
	"github.com/cosnicolaou/shopsched/solver"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OutputRecord is the per-scheduled-operation record spec §6 names for
// the output sink.
type OutputRecord struct {
	OperationID      entities.ID
	OrderNo          string
	OpNo             int
	StartTime        time.Time
	EndTime          time.Time
	DurationDays     float64
	OperationName    string
	Quantity         int
	SetupTimeDays    float64
	ResourceID       entities.ID
	ResourceGroupID  entities.ID
	BelongsToOrderNo string
	DueDate          *time.Time
	OrderStart       time.Time
	OrderEnd         time.Time
	PartNo           string
	Product          string
}

// TimelineRecord is the flat per-bar record spec §6 names for the
// rendering sink. OrderNo == "CHANGEOVER" marks a setup block.
type TimelineRecord struct {
	OrderNo           string
	OpNo              int
	OpName            string
	ResourceName      string
	StartTime         time.Time
	EndTime           time.Time
	IsLate            bool
	ColorKey          string
	ChangeoverMinutes int
}

// Sink is the out-of-scope persistence collaborator (spec §1/§6).
type Sink interface {
	Write(ctx context.Context, records []OutputRecord, unscheduled []entities.Operation) error
}

// Renderer is the out-of-scope Gantt-rendering collaborator (spec §1/§6).
type Renderer interface {
	Render(ctx context.Context, timeline []TimelineRecord) error
}

var titleCaser = cases.Title(language.English)

// Result is everything C7 produces for one solve.
type Result struct {
	Records       []OutputRecord
	Timeline      []TimelineRecord
	Unscheduled   []entities.Operation
	// Violations lists the calendar-soundness invariant-9 breaches found
	// by the validation pass: non-zero-duration overlap with a
	// non-working day, a reference-calendar artefact of the uniform
	// SHIFT_DURATION_MINUTES search axis (spec §4.1's design note).
	Violations []Violation
}

// Violation documents one invariant-9 breach for operator review.
type Violation struct {
	OperationID entities.ID
	ResourceID  entities.ID
	Day         time.Time
}

// Materialiser converts solver output into real-world records.
type Materialiser struct {
	catalog    *entities.Catalog
	cal        *calendar.Engine
	changeover *changeover.Engine
	simStart   time.Time
	// referenceResource is used to materialise order-level spans, spec
	// §9's "shared reference calendar" approximation.
	referenceResource entities.Resource
}

// New builds a Materialiser. referenceResource is used only for
// order_start/order_end (spec §4.7 step 5, §9).
func New(catalog *entities.Catalog, cal *calendar.Engine, co *changeover.Engine, simStart time.Time, referenceResource entities.Resource) *Materialiser {
	return &Materialiser{catalog: catalog, cal: cal, changeover: co, simStart: simStart, referenceResource: referenceResource}
}

// Materialise implements spec §4.7. filteredOut names operations the
// input adapter excluded from the model upstream (e.g. an empty resource
// group) and which must still be reported as unscheduled (spec §6).
func (m *Materialiser) Materialise(ctx context.Context, mdl *model.Model, res *solver.Result, filteredOut []entities.Operation) (*Result, error) {
	byResource := map[entities.ID][]solver.Assignment{}
	for _, a := range res.Assignments {
		byResource[a.Resource] = append(byResource[a.Resource], a)
	}
	for r := range byResource {
		assignments := byResource[r]
		sort.Slice(assignments, func(i, j int) bool { return assignments[i].Start < assignments[j].Start })
		byResource[r] = assignments
	}

	type perResourceOutcome struct {
		resource entities.ID
		records  []OutputRecord
		timeline []TimelineRecord
	}
	resourceIDs := make([]entities.ID, 0, len(byResource))
	for r := range byResource {
		resourceIDs = append(resourceIDs, r)
	}
	sort.Slice(resourceIDs, func(i, j int) bool { return resourceIDs[i] < resourceIDs[j] })

	outcomes := make([]perResourceOutcome, len(resourceIDs))
	var g errgroup.T
	for i, r := range resourceIDs {
		i, r := i, r
		g.Go(func() error {
			records, timeline, err := m.materialiseResource(r, byResource[r], mdl)
			if err != nil {
				return err
			}
			outcomes[i] = perResourceOutcome{resource: r, records: records, timeline: timeline}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []OutputRecord
	var timeline []TimelineRecord
	recordsByOp := map[entities.ID]*OutputRecord{}
	for _, o := range outcomes {
		for i := range o.records {
			records = append(records, o.records[i])
		}
		timeline = append(timeline, o.timeline...)
	}
	for i := range records {
		recordsByOp[records[i].OperationID] = &records[i]
	}

	if err := m.fillOrderSpans(recordsByOp, mdl, res); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].OrderNo != records[j].OrderNo {
			return records[i].OrderNo < records[j].OrderNo
		}
		return records[i].OpNo < records[j].OpNo
	})
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].StartTime.Before(timeline[j].StartTime) })

	violations := m.validateCalendarSoundness(byResource, mdl)

	return &Result{
		Records:     records,
		Timeline:    timeline,
		Unscheduled: filteredOut,
		Violations:  violations,
	}, nil
}

func (m *Materialiser) materialiseResource(r entities.ID, assignments []solver.Assignment, mdl *model.Model) ([]OutputRecord, []TimelineRecord, error) {
	resource, ok := m.catalog.Resource(r)
	if !ok {
		return nil, nil, nil
	}

	var records []OutputRecord
	var timeline []TimelineRecord
	var prevOpID entities.ID
	var prevEndSolver int
	hasPrev := false

	for _, a := range assignments {
		opID := mdl.Ops[a.OpIndex].OpID
		op, ok := m.catalog.Operation(opID)
		if !ok {
			continue
		}

		setupMinutes := 0
		if hasPrev {
			setupMinutes = m.changeover.Minutes(prevOpID, opID, resource)
		}

		realStart, err := m.cal.Materialise(resource, m.simStart, a.Start)
		if err != nil {
			return nil, nil, err
		}
		realEnd, err := m.cal.Materialise(resource, m.simStart, a.End)
		if err != nil {
			return nil, nil, err
		}

		if setupMinutes > 0 && hasPrev {
			coStart, err := m.cal.Materialise(resource, m.simStart, prevEndSolver)
			if err != nil {
				return nil, nil, err
			}
			coEnd, err := m.cal.Materialise(resource, m.simStart, a.Start)
			if err != nil {
				return nil, nil, err
			}
			timeline = append(timeline, TimelineRecord{
				OrderNo:           "CHANGEOVER",
				OpNo:              op.OpNo,
				OpName:            "changeover",
				ResourceName:      resource.Name,
				StartTime:         coStart,
				EndTime:           coEnd,
				ChangeoverMinutes: setupMinutes,
			})
		}

		isLate := op.DueDate != nil && realEnd.After(*op.DueDate)
		records = append(records, OutputRecord{
			OperationID:      op.OperationID,
			OrderNo:          op.OrderNo,
			OpNo:             op.OpNo,
			StartTime:        realStart,
			EndTime:          realEnd,
			DurationDays:     float64(a.End-a.Start) / model.MinutesPerDay,
			OperationName:    op.OperationName,
			Quantity:         op.Quantity,
			SetupTimeDays:    float64(setupMinutes) / model.MinutesPerDay,
			ResourceID:       resource.ResourceID,
			ResourceGroupID:  op.ResourceGroupID,
			BelongsToOrderNo: op.BelongsToOrderNo,
			DueDate:          op.DueDate,
			PartNo:           op.PartNo,
			Product:          op.Product,
		})
		timeline = append(timeline, TimelineRecord{
			OrderNo:           op.OrderNo,
			OpNo:              op.OpNo,
			OpName:            op.OperationName,
			ResourceName:      resource.Name,
			StartTime:         realStart,
			EndTime:           realEnd,
			IsLate:            isLate,
			ColorKey:          colorKey(m.catalog, op, resource),
			ChangeoverMinutes: setupMinutes,
		})

		prevOpID = opID
		prevEndSolver = a.End
		hasPrev = true
	}
	return records, timeline, nil
}

// colorKey picks the first attribute value assigned to the operation,
// title-cased, falling back to the resource name (spec's supplemented
// visualize_schedule.py behaviour, see SPEC_FULL.md).
func colorKey(catalog *entities.Catalog, op entities.Operation, resource entities.Resource) string {
	params := catalog.OpToParams(op.OperationID)
	if len(params) == 0 {
		return titleCaser.String(resource.Name)
	}
	return titleCaser.String(strings.TrimSpace(params[0].Name))
}

// fillOrderSpans computes order_start/order_end (spec §4.7 step 5): the
// min/max of an order's operations' solved solver-minute interval,
// materialised once against the shared reference resource rather than
// each operation's own resource (spec §9's accepted approximation).
func (m *Materialiser) fillOrderSpans(byOp map[entities.ID]*OutputRecord, mdl *model.Model, res *solver.Result) error {
	type span struct {
		min, max int
		set      bool
	}
	spans := map[string]span{}
	opOrder := map[entities.ID]string{}
	for _, rec := range byOp {
		opOrder[rec.OperationID] = rec.OrderNo
	}
	for _, a := range res.Assignments {
		opID := mdl.Ops[a.OpIndex].OpID
		order, ok := opOrder[opID]
		if !ok {
			continue
		}
		s := spans[order]
		if !s.set || a.Start < s.min {
			s.min = a.Start
		}
		if !s.set || a.End > s.max {
			s.max = a.End
		}
		s.set = true
		spans[order] = s
	}
	materialised := map[string]struct{ start, end time.Time }{}
	for order, s := range spans {
		start, err := m.cal.Materialise(m.referenceResource, m.simStart, s.min)
		if err != nil {
			return err
		}
		end, err := m.cal.Materialise(m.referenceResource, m.simStart, s.max)
		if err != nil {
			return err
		}
		materialised[order] = struct{ start, end time.Time }{start, end}
	}
	for _, rec := range byOp {
		if sp, ok := materialised[rec.OrderNo]; ok {
			rec.OrderStart = sp.start
			rec.OrderEnd = sp.end
		}
	}
	return nil
}
