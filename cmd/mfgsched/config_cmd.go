// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/cosnicolaou/shopsched/pipeline"
	"gopkg.in/yaml.v3"
)

// ConfigFlags names the file whose effective configuration to display.
type ConfigFlags struct {
	ConfigFile string `subcmd:"config,,path to the pipeline YAML configuration file; omit to show the defaults"`
}

// ConfigCmd implements the "config" subcommand.
type ConfigCmd struct{}

func (c *ConfigCmd) Display(ctx context.Context, flagValues any, args []string) error {
	fv := flagValues.(*ConfigFlags)
	cfg := pipeline.DefaultConfig()
	if fv.ConfigFile != "" {
		loaded, err := pipeline.ParseConfigFile(ctx, fv.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to parse pipeline config file: %q: %w", fv.ConfigFile, err)
		}
		cfg = loaded
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
