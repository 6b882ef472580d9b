// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compdb is compdb subcommand to write a compilation database.
package compdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maruel/subcommands"

	"github.com/tskit-dev/rtidy/o11y/clog"
	"github.com/tskit-dev/rtidy/subcmd/cmdenv"
	"github.com/tskit-dev/rtidy/tidy"
)

const usage = `write compile_commands.json with resolved flags

 $ rtidy compdb [-C <root>] [-o <file>] <files>...

writes a clang compilation database for <files> so editors
and clang tools can parse the package sources without rtidy.
<file> is relative to the project root.
`

// Cmd returns the Command for the `compdb` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return newCmd(cmdenv.Environment)
}

func newCmd(environment func(subcommands.Application, subcommands.Env) tidy.Environment) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "compdb [-C <root>] [-o <file>] <files>...",
		ShortDesc: "write compile_commands.json with resolved flags",
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
	output   string
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.logFlags.Register(&c.Flags)
	c.Flags.StringVar(&c.output, "o", "compile_commands.json", "output filename relative to the project root. - for stdout")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cmdenv.Context(a, c, env, c.logFlags)
	err := c.run(ctx, a, args, c.environment(a, env))
	if err != nil {
		switch {
		case errors.Is(err, tidy.ErrNoInputs):
			fmt.Fprintf(a.GetErr(), "Error: %v\n%s", err, usage)
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, a subcommands.Application, args []string, env tidy.Environment) error {
	if len(args) == 0 {
		return tidy.ErrNoInputs
	}
	asm, err := tidy.NewAssembler(ctx, c.opts, env)
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	d := &tidy.Dispatcher{Flags: asm}
	cmds, err := d.CompileCommands(ctx, wd, args)
	if err != nil {
		return err
	}
	buf, err := tidy.MarshalCompileCommands(cmds)
	if err != nil {
		return err
	}
	if c.output == "-" {
		_, err = a.GetOut().Write(buf)
		return err
	}
	fname := c.output
	if !filepath.IsAbs(fname) {
		fname = filepath.Join(asm.Root, fname)
	}
	err = os.WriteFile(fname, buf, 0644)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "wrote %d entries to %s", len(cmds), fname)
	return nil
}
