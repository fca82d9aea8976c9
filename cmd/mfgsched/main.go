// Copyright 2024 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"os"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
)

const cmdSpec = `name: mfgsched
summary: mfgsched schedules manufacturing operations onto resources
commands:
  - name: run
    summary: run the scheduling pipeline end to end against a fixture file
  - name: config
    summary: display the effective pipeline configuration
`

func cli() *subcmd.CommandSetYAML {
	cmd := subcmd.MustFromYAML(cmdSpec)
	run := &Run{}
	cmd.Set("run").MustRunner(run.Run, &RunFlags{})
	cfg := &ConfigCmd{}
	cmd.Set("config").MustRunner(cfg.Display, &ConfigFlags{})
	return cmd
}

var interrupt = errors.New("interrupt")

func main() {
	ctx := context.Background()
	ctx, cancel := context.WithCancelCause(ctx)
	cmdutil.HandleSignals(func() { cancel(interrupt) }, os.Interrupt)
	err := cli().Dispatch(ctx)
	if context.Cause(ctx) == interrupt {
		cmdutil.Exit("%v", interrupt)
	}
	if err != nil {
		cmdutil.Exit("%v", err)
	}
}
