// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pipeline wires C1 through C7 into the single batch run spec §2
// describes, configured the way the teacher's scheduler package loads a
// schedulesConfig: an immutable value unmarshalled from YAML via
// cloudeng.io/cmdutil/cmdyaml, one field per tunable spec §4/§5/§6 names.
package pipeline

import (
	"context"

	"cloudeng.io/cmdutil/cmdyaml"
	"github.com/cosnicolaou/shopsched/model"
	"gopkg.in/yaml.v3"
)

// Weights mirrors model.Weights with yaml tags, spec §4.4's six-tuple
// objective configuration.
type Weights struct {
	Lateness   int `yaml:"lateness" cmd:"weight applied to total tardiness minutes"`
	Changeover int `yaml:"changeover" cmd:"weight applied to total changeover minutes"`
	Makespan   int `yaml:"makespan" cmd:"weight applied to the schedule makespan"`
	LoadRange  int `yaml:"load_range" cmd:"weight applied to max-minus-min resource load"`
	MaxLoad    int `yaml:"max_load" cmd:"weight applied to the single busiest resource's load"`
	Gravity    int `yaml:"gravity" cmd:"weight applied to the sum of all start times, when enabled"`
}

func (w Weights) toModel() model.Weights {
	return model.Weights{
		Lateness: w.Lateness, Changeover: w.Changeover, Makespan: w.Makespan,
		LoadRange: w.LoadRange, MaxLoad: w.MaxLoad, Gravity: w.Gravity,
	}
}

// DefaultWeights matches model.DefaultWeights.
func DefaultWeights() Weights {
	dw := model.DefaultWeights()
	return Weights{
		Lateness: dw.Lateness, Changeover: dw.Changeover, Makespan: dw.Makespan,
		LoadRange: dw.LoadRange, MaxLoad: dw.MaxLoad, Gravity: dw.Gravity,
	}
}

// Config is the whole run's tunables, spec §4/§5/§6.
type Config struct {
	ShiftStartHour int `yaml:"shift_start_hour" cmd:"fallback shift start hour for a working day with no resolvable shift record"`
	ShiftStartMin  int `yaml:"shift_start_min" cmd:"fallback shift start minute for a working day with no resolvable shift record"`
	ShiftEndHour   int `yaml:"shift_end_hour" cmd:"fallback shift end hour for a working day with no resolvable shift record"`
	ShiftEndMin    int `yaml:"shift_end_min" cmd:"fallback shift end minute for a working day with no resolvable shift record"`

	ShiftDurationMinutes   int `yaml:"shift_duration_minutes" cmd:"uniform per-day minute axis used for earliest-start offsets (spec §4.4)"`
	PlanningDays           int `yaml:"planning_days" cmd:"model horizon look-ahead window in days, spec §4.6"`
	MaterialiseHorizonDays int `yaml:"materialise_horizon_days" cmd:"bounded search horizon in days for the Calendar Engine's Materialise loop, spec §4.1"`

	SolverTimeLimitSeconds int  `yaml:"solver_time_limit_seconds" cmd:"wall-clock bound on the solve call"`
	NumSearchWorkers       int  `yaml:"num_search_workers" cmd:"size of the parallel portfolio search"`
	Deterministic          bool `yaml:"deterministic" cmd:"pin num_search_workers to 1 for reproducible runs (invariant 10)"`
	EnableGravityStrategy  bool `yaml:"enable_gravity_strategy" cmd:"add the gravity (pull-left) term to the objective"`

	Weights Weights `yaml:"objective_weights" cmd:"the six objective term weights"`
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		ShiftStartHour:         8,
		ShiftEndHour:           16,
		ShiftDurationMinutes:   480,
		PlanningDays:           90,
		MaterialiseHorizonDays: 730,
		SolverTimeLimitSeconds: 600,
		NumSearchWorkers:       8,
		Weights:                DefaultWeights(),
	}
}

// ParseConfigFile loads a Config from a YAML file, cloudeng.io/cmdutil
// style, layering onto DefaultConfig so an omitted field keeps its
// default rather than zeroing out.
func ParseConfigFile(ctx context.Context, path string) (Config, error) {
	cfg := DefaultConfig()
	if err := cmdyaml.ParseConfigFile(ctx, path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseConfig loads a Config from in-memory YAML bytes, used by tests
// the way the teacher's scheduler_test.go builds fixtures inline.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
