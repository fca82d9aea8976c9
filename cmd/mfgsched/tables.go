// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/materialize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// tableSink renders the materialised schedule as a table instead of
// writing to a persistence layer; the real output sink is an
// out-of-scope collaborator (spec §1/§6) this CLI stands in for.
type tableSink struct {
	out io.Writer
}

func (s tableSink) Write(ctx context.Context, records []materialize.OutputRecord, unscheduled []entities.Operation) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(s.out)
	tw.AppendHeader(table.Row{"Order", "Op", "Name", "Resource", "Start", "End", "Setup(d)", "Due", "Order Start", "Order End"})
	for _, r := range records {
		due := ""
		if r.DueDate != nil {
			due = r.DueDate.Format("2006-01-02")
		}
		tw.AppendRow(table.Row{
			r.OrderNo, r.OpNo, r.OperationName, r.ResourceID,
			r.StartTime.Format("2006-01-02 15:04"), r.EndTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.2f", r.SetupTimeDays), due,
			r.OrderStart.Format("2006-01-02"), r.OrderEnd.Format("2006-01-02"),
		})
	}
	tw.Render()

	if len(unscheduled) > 0 {
		fmt.Fprintln(s.out, "\nunscheduled operations (empty resource group):")
		utw := table.NewWriter()
		utw.SetOutputMirror(s.out)
		utw.AppendHeader(table.Row{"Order", "Op", "Name", "Resource Group"})
		for _, op := range unscheduled {
			utw.AppendRow(table.Row{op.OrderNo, op.OpNo, op.OperationName, op.ResourceGroupID})
		}
		utw.Render()
	}

	fmt.Fprintln(s.out, "\nnote: order start/end are materialised against a single shared reference resource's calendar, not each operation's own resource (spec §9 approximation).")
	return nil
}

// tableRenderer renders the Gantt timeline as a flat table; the real
// Gantt renderer is an out-of-scope collaborator (spec §1/§6).
type tableRenderer struct {
	out io.Writer
}

func (r tableRenderer) Render(ctx context.Context, timeline []materialize.TimelineRecord) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.out)
	tw.AppendHeader(table.Row{"Order", "Op", "Name", "Resource", "Start", "End", "Late", "Color"})
	for _, t := range timeline {
		tw.AppendRow(table.Row{t.OrderNo, t.OpNo, t.OpName, t.ResourceName,
			t.StartTime.Format("2006-01-02 15:04"), t.EndTime.Format("2006-01-02 15:04"), t.IsLate, t.ColorKey})
	}
	tw.Render()
	return nil
}

func renderViolations(out io.Writer, violations []materialize.Violation) {
	if len(violations) == 0 {
		return
	}
	fmt.Fprintln(out, "\ncalendar-soundness violations (invariant 9):")
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Operation", "Resource", "Day"})
	for _, v := range violations {
		tw.AppendRow(table.Row{v.OperationID, v.ResourceID, v.Day.Format("2006-01-02")})
	}
	tw.Render()
}
