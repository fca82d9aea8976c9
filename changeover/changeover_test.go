// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package changeover_test

import (
	"testing"

	"github.com/cosnicolaou/shopsched/changeover"
	"github.com/cosnicolaou/shopsched/entities"
)

func buildCatalog(resources []entities.Resource, params []entities.AttributeParam,
	assignments []entities.OrderAttributeAssignment, matrix []entities.ChangeoverMatrixEntry,
	standards []entities.ChangeoverStandard) *entities.Catalog {
	return entities.Build(nil, nil, resources, nil, nil, nil, params, assignments, nil, matrix, standards, nil, nil, nil)
}

const (
	colorAttr entities.ID = 1
	red       entities.ID = 10
	blue      entities.ID = 11

	group entities.ID = 100
	op1   entities.ID = 1
	op2   entities.ID = 2
	op3   entities.ID = 3
)

func TestMinutesSameParamIsFree(t *testing.T) {
	resource := entities.Resource{ResourceID: 1, ChangeoverGroupID: group}
	params := []entities.AttributeParam{{ParamID: red, AttributeID: colorAttr, Name: "Red"}}
	assignments := []entities.OrderAttributeAssignment{
		{OperationID: op1, AttributeID: colorAttr, ParamID: red},
		{OperationID: op2, AttributeID: colorAttr, ParamID: red},
	}
	catalog := buildCatalog([]entities.Resource{resource}, params, assignments, nil, nil)
	eng := changeover.New(catalog)
	if got := eng.Minutes(op1, op2, resource); got != 0 {
		t.Fatalf("Minutes(same param) = %d, want 0", got)
	}
}

func TestMinutesMatrixLookup(t *testing.T) {
	resource := entities.Resource{ResourceID: 1, ChangeoverGroupID: group}
	params := []entities.AttributeParam{
		{ParamID: red, AttributeID: colorAttr, Name: "Red"},
		{ParamID: blue, AttributeID: colorAttr, Name: "Blue"},
	}
	assignments := []entities.OrderAttributeAssignment{
		{OperationID: op1, AttributeID: colorAttr, ParamID: red},
		{OperationID: op2, AttributeID: colorAttr, ParamID: blue},
	}
	matrix := []entities.ChangeoverMatrixEntry{
		{ChangeoverGroupID: group, AttributeID: colorAttr, FromParamID: red, ToParamID: blue, SetupMinutes: 45},
	}
	catalog := buildCatalog([]entities.Resource{resource}, params, assignments, matrix, nil)
	eng := changeover.New(catalog)
	if got := eng.Minutes(op1, op2, resource); got != 45 {
		t.Fatalf("Minutes(red->blue) = %d, want 45", got)
	}
	// No matrix entry the other direction and no standard: contributes 0.
	if got := eng.Minutes(op2, op1, resource); got != 0 {
		t.Fatalf("Minutes(blue->red) = %d, want 0 (no matrix entry, no standard)", got)
	}
}

func TestMinutesStandardFallback(t *testing.T) {
	resource := entities.Resource{ResourceID: 1, ChangeoverGroupID: group}
	params := []entities.AttributeParam{
		{ParamID: red, AttributeID: colorAttr, Name: "Red"},
		{ParamID: blue, AttributeID: colorAttr, Name: "Blue"},
	}
	assignments := []entities.OrderAttributeAssignment{
		{OperationID: op1, AttributeID: colorAttr, ParamID: red},
		{OperationID: op2, AttributeID: colorAttr, ParamID: blue},
	}
	standards := []entities.ChangeoverStandard{
		{ChangeoverGroupID: group, AttributeID: colorAttr, SetupMinutes: 20},
	}
	catalog := buildCatalog([]entities.Resource{resource}, params, assignments, nil, standards)
	eng := changeover.New(catalog)
	if got := eng.Minutes(op1, op2, resource); got != 20 {
		t.Fatalf("Minutes(fallback) = %d, want 20", got)
	}
}

func TestMinutesAccumulativeTakesMax(t *testing.T) {
	materialAttr := entities.ID(2)
	accum := entities.Resource{ResourceID: 1, ChangeoverGroupID: group, Accumulative: true}
	serial := entities.Resource{ResourceID: 2, ChangeoverGroupID: group, Accumulative: false}
	params := []entities.AttributeParam{
		{ParamID: 20, AttributeID: colorAttr, Name: "Red"},
		{ParamID: 21, AttributeID: colorAttr, Name: "Blue"},
		{ParamID: 30, AttributeID: materialAttr, Name: "Steel"},
		{ParamID: 31, AttributeID: materialAttr, Name: "Plastic"},
	}
	assignments := []entities.OrderAttributeAssignment{
		{OperationID: op1, AttributeID: colorAttr, ParamID: 20},
		{OperationID: op1, AttributeID: materialAttr, ParamID: 30},
		{OperationID: op2, AttributeID: colorAttr, ParamID: 21},
		{OperationID: op2, AttributeID: materialAttr, ParamID: 31},
	}
	standards := []entities.ChangeoverStandard{
		{ChangeoverGroupID: group, AttributeID: colorAttr, SetupMinutes: 15},
		{ChangeoverGroupID: group, AttributeID: materialAttr, SetupMinutes: 60},
	}
	catalog := buildCatalog([]entities.Resource{accum, serial}, params, assignments, nil, standards)
	eng := changeover.New(catalog)
	if got := eng.Minutes(op1, op2, accum); got != 60 {
		t.Fatalf("Minutes(accumulative) = %d, want max(15,60)=60", got)
	}
	if got := eng.Minutes(op1, op2, serial); got != 75 {
		t.Fatalf("Minutes(serial) = %d, want sum(15,60)=75", got)
	}
}

func TestMinutesNoChangeoverGroupIsFree(t *testing.T) {
	resource := entities.Resource{ResourceID: 1}
	catalog := buildCatalog([]entities.Resource{resource}, nil, nil, nil, nil)
	eng := changeover.New(catalog)
	if got := eng.Minutes(op1, op2, resource); got != 0 {
		t.Fatalf("Minutes(no group) = %d, want 0", got)
	}
}
