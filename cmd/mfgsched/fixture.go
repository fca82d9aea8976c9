// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloudeng.io/datetime"
	"github.com/cosnicolaou/shopsched/entities"
	"github.com/cosnicolaou/shopsched/input"
	"gopkg.in/yaml.v3"
)

// yamlSource is a input.Source backed by a single YAML fixture file, the
// same shape the teacher's scheduler.ParseConfig reads a schedule file
// from: a flat config struct with an UnmarshalYAML per scalar that needs
// parsing (timeOfDay below), handed to yaml.Unmarshal directly.
type yamlSource struct {
	path string
}

func newYAMLSource(path string) *yamlSource { return &yamlSource{path: path} }

type timeOfDay datetime.TimeOfDay

func (t *timeOfDay) UnmarshalYAML(node *yaml.Node) error {
	return (*datetime.TimeOfDay)(t).Parse(node.Value)
}

type fixtureOperation struct {
	OperationID       int64   `yaml:"operation_id"`
	OrderNo           string  `yaml:"order_no"`
	OpNo              int     `yaml:"op_no"`
	OperationName     string  `yaml:"operation_name"`
	ResourceGroupID   int64   `yaml:"resource_group_id"`
	Quantity          int     `yaml:"quantity"`
	ProcessTimeDays   float64 `yaml:"process_time_days"`
	SetupTimeDays     float64 `yaml:"setup_time_days"`
	DueDate           string  `yaml:"due_date"`
	EarliestStartDate string  `yaml:"earliest_start_date"`
	BelongsToOrderNo  string  `yaml:"belongs_to_order_no"`
	PartNo            string  `yaml:"part_no"`
	Product           string  `yaml:"product"`
}

type fixtureBomLink struct {
	ParentOrderNo    string `yaml:"parent_order_no"`
	OrderPartNo      string `yaml:"order_part_no"`
	RequiredPartNo   string `yaml:"required_part_no"`
	RequiredQuantity int    `yaml:"required_quantity"`
}

type fixtureResource struct {
	ResourceID        int64  `yaml:"resource_id"`
	Name              string `yaml:"name"`
	ChangeoverGroupID int64  `yaml:"changeover_group_id"`
	Accumulative      bool   `yaml:"accumulative"`
	ScheduleID        int64  `yaml:"schedule_id"`
}

type fixtureResourceGroup struct {
	ResourceGroupID int64    `yaml:"resource_group_id"`
	Name            string   `yaml:"name"`
	Members         []int64  `yaml:"members"`
}

type fixtureAttribute struct {
	AttributeID int64  `yaml:"attribute_id"`
	Name        string `yaml:"name"`
}

type fixtureAttributeParam struct {
	ParamID     int64  `yaml:"param_id"`
	AttributeID int64  `yaml:"attribute_id"`
	Name        string `yaml:"name"`
}

type fixtureAssignment struct {
	OperationID int64 `yaml:"operation_id"`
	AttributeID int64 `yaml:"attribute_id"`
	ParamID     int64 `yaml:"param_id"`
}

type fixtureChangeoverGroup struct {
	ChangeoverGroupID int64  `yaml:"changeover_group_id"`
	Name              string `yaml:"name"`
}

type fixtureMatrixEntry struct {
	ChangeoverGroupID int64 `yaml:"changeover_group_id"`
	AttributeID       int64 `yaml:"attribute_id"`
	FromParamID       int64 `yaml:"from_param_id"`
	ToParamID         int64 `yaml:"to_param_id"`
	SetupMinutes      int   `yaml:"setup_minutes"`
}

type fixtureStandard struct {
	ChangeoverGroupID int64 `yaml:"changeover_group_id"`
	AttributeID       int64 `yaml:"attribute_id"`
	SetupMinutes      int   `yaml:"setup_minutes"`
}

type fixtureBreak struct {
	BreakID int64     `yaml:"break_id"`
	Start   timeOfDay `yaml:"start"`
	End     timeOfDay `yaml:"end"`
}

type fixtureShift struct {
	ShiftID  int64     `yaml:"shift_id"`
	Start    timeOfDay `yaml:"start"`
	End      timeOfDay `yaml:"end"`
	BreakIDs []int64   `yaml:"break_ids"`
}

type fixtureSchedule struct {
	ScheduleID int64    `yaml:"schedule_id"`
	Name       string   `yaml:"name"`
	Days       [7]int64 `yaml:"days"` // Monday..Sunday, 0 means no shift
}

type fixture struct {
	Operations               []fixtureOperation       `yaml:"operations"`
	BomLinks                 []fixtureBomLink         `yaml:"bom_links"`
	Resources                []fixtureResource        `yaml:"resources"`
	ResourceGroups           []fixtureResourceGroup   `yaml:"resource_groups"`
	Attributes               []fixtureAttribute       `yaml:"attributes"`
	AttributeParams          []fixtureAttributeParam  `yaml:"attribute_params"`
	OrderAttributeAssignment []fixtureAssignment      `yaml:"order_attribute_assignments"`
	ChangeoverGroups         []fixtureChangeoverGroup `yaml:"changeover_groups"`
	ChangeoverMatrix         []fixtureMatrixEntry     `yaml:"changeover_matrix"`
	ChangeoverStandards      []fixtureStandard        `yaml:"changeover_standards"`
	Schedules                []fixtureSchedule        `yaml:"schedules"`
	Shifts                   []fixtureShift           `yaml:"shifts"`
	Breaks                   []fixtureBreak           `yaml:"breaks"`
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}

func (f fixture) toRaw() (input.Raw, error) {
	raw := input.Raw{
		GroupMembers: map[entities.ID][]entities.ID{},
	}
	for _, o := range f.Operations {
		due, err := parseDate(o.DueDate)
		if err != nil {
			return input.Raw{}, err
		}
		earliest, err := parseDate(o.EarliestStartDate)
		if err != nil {
			return input.Raw{}, err
		}
		raw.Operations = append(raw.Operations, entities.Operation{
			OperationID:       entities.ID(o.OperationID),
			OrderNo:           o.OrderNo,
			OpNo:              o.OpNo,
			OperationName:     o.OperationName,
			ResourceGroupID:   entities.ID(o.ResourceGroupID),
			Quantity:          o.Quantity,
			ProcessTimeDays:   o.ProcessTimeDays,
			SetupTimeDays:     o.SetupTimeDays,
			DueDate:           due,
			EarliestStartDate: earliest,
			BelongsToOrderNo:  o.BelongsToOrderNo,
			PartNo:            o.PartNo,
			Product:           o.Product,
		})
	}
	for _, l := range f.BomLinks {
		raw.BomLinks = append(raw.BomLinks, entities.BomLink{
			ParentOrderNo:    l.ParentOrderNo,
			OrderPartNo:      l.OrderPartNo,
			RequiredPartNo:   l.RequiredPartNo,
			RequiredQuantity: l.RequiredQuantity,
		})
	}
	for _, r := range f.Resources {
		raw.Resources = append(raw.Resources, entities.Resource{
			ResourceID:        entities.ID(r.ResourceID),
			Name:              r.Name,
			ChangeoverGroupID: entities.ID(r.ChangeoverGroupID),
			Accumulative:      r.Accumulative,
			ScheduleID:        entities.ID(r.ScheduleID),
		})
	}
	for _, g := range f.ResourceGroups {
		raw.ResourceGroups = append(raw.ResourceGroups, entities.ResourceGroup{
			ResourceGroupID: entities.ID(g.ResourceGroupID),
			Name:            g.Name,
		})
		ids := make([]entities.ID, len(g.Members))
		for i, m := range g.Members {
			ids[i] = entities.ID(m)
		}
		raw.GroupMembers[entities.ID(g.ResourceGroupID)] = ids
	}
	for _, a := range f.Attributes {
		raw.Attributes = append(raw.Attributes, entities.Attribute{AttributeID: entities.ID(a.AttributeID), Name: a.Name})
	}
	for _, p := range f.AttributeParams {
		raw.AttributeParams = append(raw.AttributeParams, entities.AttributeParam{
			ParamID: entities.ID(p.ParamID), AttributeID: entities.ID(p.AttributeID), Name: p.Name,
		})
	}
	for _, a := range f.OrderAttributeAssignment {
		raw.OrderAttributeAssignment = append(raw.OrderAttributeAssignment, entities.OrderAttributeAssignment{
			OperationID: entities.ID(a.OperationID), AttributeID: entities.ID(a.AttributeID), ParamID: entities.ID(a.ParamID),
		})
	}
	for _, g := range f.ChangeoverGroups {
		raw.ChangeoverGroups = append(raw.ChangeoverGroups, entities.ChangeoverGroup{ChangeoverGroupID: entities.ID(g.ChangeoverGroupID), Name: g.Name})
	}
	for _, e := range f.ChangeoverMatrix {
		raw.ChangeoverMatrix = append(raw.ChangeoverMatrix, entities.ChangeoverMatrixEntry{
			ChangeoverGroupID: entities.ID(e.ChangeoverGroupID), AttributeID: entities.ID(e.AttributeID),
			FromParamID: entities.ID(e.FromParamID), ToParamID: entities.ID(e.ToParamID), SetupMinutes: e.SetupMinutes,
		})
	}
	for _, s := range f.ChangeoverStandards {
		raw.ChangeoverStandards = append(raw.ChangeoverStandards, entities.ChangeoverStandard{
			ChangeoverGroupID: entities.ID(s.ChangeoverGroupID), AttributeID: entities.ID(s.AttributeID), SetupMinutes: s.SetupMinutes,
		})
	}
	for _, b := range f.Breaks {
		raw.Breaks = append(raw.Breaks, entities.Break{
			BreakID: entities.ID(b.BreakID), Start: datetime.TimeOfDay(b.Start), End: datetime.TimeOfDay(b.End),
		})
	}
	for _, s := range f.Shifts {
		ids := make([]entities.ID, len(s.BreakIDs))
		for i, b := range s.BreakIDs {
			ids[i] = entities.ID(b)
		}
		raw.Shifts = append(raw.Shifts, entities.Shift{
			ShiftID: entities.ID(s.ShiftID), Start: datetime.TimeOfDay(s.Start), End: datetime.TimeOfDay(s.End), BreakIDs: ids,
		})
	}
	for _, s := range f.Schedules {
		var days [7]entities.ID
		for i, d := range s.Days {
			days[i] = entities.ID(d)
		}
		raw.Schedules = append(raw.Schedules, entities.Schedule{
			ScheduleID: entities.ID(s.ScheduleID), Name: s.Name, Days: days,
		})
	}
	return raw, nil
}

func (y *yamlSource) Read(ctx context.Context) (input.Raw, error) {
	data, err := os.ReadFile(y.path)
	if err != nil {
		return input.Raw{}, fmt.Errorf("failed to read fixture file: %q: %w", y.path, err)
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return input.Raw{}, fmt.Errorf("failed to parse fixture file: %q: %w", y.path, err)
	}
	return f.toRaw()
}
