// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline_test

import (
	"testing"

	"github.com/cosnicolaou/shopsched/pipeline"
)

func TestDefaultConfigSeparatesPlanningAndMaterialiseHorizon(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	if cfg.PlanningDays != 90 {
		t.Fatalf("PlanningDays = %d, want 90 (spec §4.6)", cfg.PlanningDays)
	}
	if cfg.MaterialiseHorizonDays != 730 {
		t.Fatalf("MaterialiseHorizonDays = %d, want 730 (spec §4.1)", cfg.MaterialiseHorizonDays)
	}
}

func TestParseConfigOverridesOnlyNamedFields(t *testing.T) {
	cfg, err := pipeline.ParseConfig([]byte(`
planning_days: 30
shift_start_hour: 6
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.PlanningDays != 30 {
		t.Fatalf("PlanningDays = %d, want 30", cfg.PlanningDays)
	}
	if cfg.ShiftStartHour != 6 {
		t.Fatalf("ShiftStartHour = %d, want 6", cfg.ShiftStartHour)
	}
	// Everything else keeps DefaultConfig's values.
	if cfg.MaterialiseHorizonDays != 730 {
		t.Fatalf("MaterialiseHorizonDays = %d, want unchanged default 730", cfg.MaterialiseHorizonDays)
	}
	if cfg.ShiftEndHour != 16 {
		t.Fatalf("ShiftEndHour = %d, want unchanged default 16", cfg.ShiftEndHour)
	}
}
