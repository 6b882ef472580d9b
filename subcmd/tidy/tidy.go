// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tidy is tidy subcommand to run clang-tidy with resolved flags.
package tidy

import (
	"context"
	"errors"
	"fmt"

	"github.com/maruel/subcommands"

	"github.com/tskit-dev/rtidy/subcmd/cmdenv"
	"github.com/tskit-dev/rtidy/tidy"
)

const usage = `run clang-tidy on sources of an R package

 $ rtidy tidy [-C <root>] <files>... [-- <clang-tidy args>...]

Compiler flags are resolved from R (R CMD config, R RHOME),
the package's src/Makevars (or src/Makevars.in) and the package
include directories, and given to clang-tidy after "--".
Args after "--" on this command line are passed to clang-tidy.

Exits with the last non-zero clang-tidy exit code, or 1 if R or
clang-tidy is not found. Set $CLANG_TIDY to use a specific clang-tidy.
`

// Cmd returns the Command for the `tidy` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return newCmd(cmdenv.Environment)
}

func newCmd(environment func(subcommands.Application, subcommands.Env) tidy.Environment) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "tidy [-C <root>] <files>... [-- <clang-tidy args>...]",
		ShortDesc: "run clang-tidy with resolved flags",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{environment: environment}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase
	environment func(subcommands.Application, subcommands.Env) tidy.Environment

	opts     tidy.Options
	logFlags cmdenv.LogFlags
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.logFlags.Register(&c.Flags)
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cmdenv.Context(a, c, env, c.logFlags)
	code, err := c.run(ctx, args, c.environment(a, env))
	if err != nil {
		switch {
		case errors.Is(err, tidy.ErrNoInputs):
			fmt.Fprintf(a.GetErr(), "Error: %v\n%s", err, usage)
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return code
}

func (c *run) run(ctx context.Context, args []string, env tidy.Environment) (int, error) {
	files, extra := tidy.SplitArgs(args)
	d, err := tidy.Setup(ctx, c.opts, files, env)
	if err != nil {
		return 1, err
	}
	return d.Run(ctx, files, extra), nil
}
