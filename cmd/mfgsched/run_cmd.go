// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cosnicolaou/shopsched/pipeline"
)

// RunFlags configures one batch pass, the same ConfigFileFlags-style
// grouping the teacher uses for its schedule/control subcommands.
type RunFlags struct {
	ConfigFile string `subcmd:"config,,path to the pipeline YAML configuration file"`
	Fixture    string `subcmd:"fixture,,path to the input fixture YAML file"`
	SimStart   string `subcmd:"sim-start,,simulation start date, YYYY-MM-DD; defaults to today"`
	LogFile    string `subcmd:"log-file,,log file; defaults to stderr"`
}

// Run is the "run" subcommand: C1 through C7 end to end against a YAML
// fixture, rendered to stdout as tables.
type Run struct{}

func (r *Run) setupLogging(logfile string) (*slog.Logger, func(), error) {
	f, err := newLogfile(logfile)
	if err != nil {
		return nil, func() {}, err
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { f.Close() }, nil
}

func (r *Run) Run(ctx context.Context, flagValues any, args []string) error {
	fv := flagValues.(*RunFlags)
	if fv.Fixture == "" {
		return fmt.Errorf("a fixture file is required, see --fixture")
	}

	cfg := pipeline.DefaultConfig()
	if fv.ConfigFile != "" {
		loaded, err := pipeline.ParseConfigFile(ctx, fv.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to parse pipeline config file: %q: %w", fv.ConfigFile, err)
		}
		cfg = loaded
	}

	simStart := time.Now()
	if fv.SimStart != "" {
		t, err := time.Parse("2006-01-02", fv.SimStart)
		if err != nil {
			return fmt.Errorf("invalid sim-start date: %q: %w", fv.SimStart, err)
		}
		simStart = t
	}

	logger, closeLog, err := r.setupLogging(fv.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	src := newYAMLSource(fv.Fixture)
	sink := tableSink{out: os.Stdout}
	renderer := tableRenderer{out: os.Stdout}

	result, err := pipeline.Run(ctx, src, sink, renderer, simStart, cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}
	renderViolations(os.Stdout, result.Violations)
	return nil
}
