// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package flags is flags subcommand to print resolved compiler flags.
package flags

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/maruel/subcommands"

	"github.com/tskit-dev/rtidy/lang"
	"github.com/tskit-dev/rtidy/subcmd/cmdenv"
	"github.com/tskit-dev/rtidy/tidy"
	"github.com/tskit-dev/rtidy/toolsupport/shutil"
)

const usage = `print resolved compiler flags

 $ rtidy flags [-C <root>] [-lang c|c++] [<file>]

prints the flags given to clang-tidy after "--", one per line.
If <file> is given, flags are for the language of <file>, and
headers get "-x <lang>". -lang can't be used with <file>.
With -shell, prints the flags on one line quoted for a shell.
`

// Cmd returns the Command for the `flags` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return newCmd(cmdenv.Environment)
}

func newCmd(environment func(subcommands.Application, subcommands.Env) tidy.Environment) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "flags [-C <root>] [-lang c|c++] [<file>]",
		ShortDesc: "print resolved compiler flags",
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
	lang     string
	shell    bool
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.logFlags.Register(&c.Flags)
	c.Flags.StringVar(&c.lang, "lang", string(lang.CXX), "language of flags: c or c++")
	c.Flags.BoolVar(&c.shell, "shell", false, "print flags on one line, quoted for a shell")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cmdenv.Context(a, c, env, c.logFlags)
	err := c.run(ctx, a.GetOut(), args, c.environment(a, env))
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(a.GetErr(), "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(a.GetErr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer, args []string, env tidy.Environment) error {
	if len(args) > 1 {
		return fmt.Errorf("too many files %q: %w", args, flag.ErrHelp)
	}
	if len(args) == 1 && c.langSet() {
		return fmt.Errorf("-lang=%q with file %q: %w", c.lang, args[0], flag.ErrHelp)
	}
	l, ok := lang.Parse(c.lang)
	if !ok {
		return fmt.Errorf("unknown -lang=%q: %w", c.lang, flag.ErrHelp)
	}
	asm, err := tidy.NewAssembler(ctx, c.opts, env)
	if err != nil {
		return err
	}
	var flagArgs []string
	if len(args) == 1 {
		d := &tidy.Dispatcher{Flags: asm}
		inv, err := d.Resolve(ctx, args[0], nil)
		if err != nil {
			return err
		}
		flagArgs = inv.Flags.Args()
	} else {
		flags, err := asm.Flags(ctx, l)
		if err != nil {
			return err
		}
		flagArgs = flags.Args()
	}
	if c.shell {
		_, err = fmt.Fprintln(w, shutil.Join(flagArgs))
		return err
	}
	for _, arg := range flagArgs {
		_, err := fmt.Fprintln(w, arg)
		if err != nil {
			return err
		}
	}
	return nil
}

// langSet reports whether -lang is given on the command line.
func (c *run) langSet() bool {
	set := false
	c.Flags.Visit(func(f *flag.Flag) {
		if f.Name == "lang" {
			set = true
		}
	})
	return set
}
