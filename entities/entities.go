// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package entities holds the typed, immutable in-memory representation of
// the scheduling problem: operations, resources, attributes and the
// calendar/changeover reference data that the rest of the engine reads
// but never mutates. Values are built once by package input and are safe
// for concurrent read-only use by every downstream component.
package entities

import (
	"time"

	"cloudeng.io/datetime"
)

// ID is an opaque, stable identifier. The zero value never identifies a
// real entity.
type ID int64

// Operation is one step of one manufacturing order.
type Operation struct {
	OperationID       ID
	OrderNo           string
	OpNo              int
	OperationName     string
	ResourceGroupID   ID
	Quantity          int
	ProcessTimeDays   float64
	SetupTimeDays     float64
	DueDate           *time.Time
	EarliestStartDate *time.Time
	BelongsToOrderNo  string // empty if not set
	PartNo            string // empty if not set
	Product           string // empty if not set
}

// BomLink declares that producing OrderPartNo of ParentOrderNo requires
// RequiredQuantity units of RequiredPartNo. Consumed only by package
// dependency to derive inter-order precedences; never carried to the
// solver.
type BomLink struct {
	ParentOrderNo    string
	OrderPartNo      string
	RequiredPartNo   string
	RequiredQuantity int
}

// Resource is a machine capable of executing operations of one or more
// resource groups.
type Resource struct {
	ResourceID        ID
	Name              string
	ChangeoverGroupID ID   // zero if the resource has no changeover group
	Accumulative      bool // concurrent setups: net changeover is the max, not the sum
	ScheduleID        ID   // zero if the resource has no working calendar (never works)
}

// HasChangeoverGroup reports whether the resource participates in the
// changeover-cost model at all.
func (r Resource) HasChangeoverGroup() bool { return r.ChangeoverGroupID != 0 }

// ResourceGroup is a capability class; membership with Resource is
// many-to-many and held in the Catalog's group index.
type ResourceGroup struct {
	ResourceGroupID ID
	Name            string
}

// Attribute is a categorical dimension, e.g. colour or material.
type Attribute struct {
	AttributeID ID
	Name        string
}

// AttributeParam is one value in an Attribute's domain.
type AttributeParam struct {
	ParamID     ID
	AttributeID ID
	Name        string
}

// OrderAttributeAssignment records an operation's value for one attribute.
// An operation may carry several, one per attribute it is sensitive to.
type OrderAttributeAssignment struct {
	OperationID ID
	AttributeID ID
	ParamID     ID
}

// ChangeoverGroup is a family of resources that share a setup-cost regime.
type ChangeoverGroup struct {
	ChangeoverGroupID ID
	Name              string
}

// ChangeoverMatrixEntry gives the asymmetric from->to setup cost for one
// attribute within one changeover group.
type ChangeoverMatrixEntry struct {
	ChangeoverGroupID ID
	AttributeID       ID
	FromParamID       ID
	ToParamID         ID
	SetupMinutes      int
}

// ChangeoverStandard is the fallback setup cost for an attribute within a
// changeover group, used when no specific from->to pair is in the matrix.
type ChangeoverStandard struct {
	ChangeoverGroupID ID
	AttributeID       ID
	SetupMinutes      int
}

// Weekday indexes a Schedule's seven slots, Monday first, matching
// cloudeng.io/datetime's week ordering.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Schedule is an ordered week of optional shifts. A zero ShiftID in a day
// slot means the resource does not work that day.
type Schedule struct {
	ScheduleID ID
	Name       string
	Days       [7]ID // indexed by Weekday, holds a ShiftID or 0
}

// Shift is a working window expressed as time-of-day. End may be less
// than Start, meaning the shift crosses midnight.
type Shift struct {
	ShiftID  ID
	Start    datetime.TimeOfDay
	End      datetime.TimeOfDay
	BreakIDs []ID
}

// Break is a non-working window within a shift, also able to cross
// midnight.
type Break struct {
	BreakID ID
	Start   datetime.TimeOfDay
	End     datetime.TimeOfDay
}
