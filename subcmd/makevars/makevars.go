// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makevars is makevars subcommand to print parsed Makevars.
package makevars

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"

	"github.com/maruel/subcommands"

	"github.com/tskit-dev/rtidy/lang"
	"github.com/tskit-dev/rtidy/resolve"
	"github.com/tskit-dev/rtidy/subcmd/cmdenv"
	"github.com/tskit-dev/rtidy/tidy"
)

const usage = `print variables parsed from Makevars

 $ rtidy makevars [-C <root>] [-lang c|c++]

prints the Makevars file used, then "NAME = value" for each
variable in sorted order, after continuation lines are joined
and += appends are accumulated.
With -lang, prints only the variables consulted for the language.
`

// Cmd returns the Command for the `makevars` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return newCmd(cmdenv.Environment)
}

func newCmd(environment func(subcommands.Application, subcommands.Env) tidy.Environment) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "makevars [-C <root>] [-lang c|c++]",
		ShortDesc: "print variables parsed from Makevars",
		LongDesc:  usage,
		Advanced:  true,
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
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.logFlags.Register(&c.Flags)
	c.Flags.StringVar(&c.lang, "lang", "", "print only variables for the language: c or c++")
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
	if len(args) != 0 {
		return fmt.Errorf("position arguments not expected: %w", flag.ErrHelp)
	}
	asm, err := tidy.LoadProject(ctx, c.opts, env)
	if err != nil {
		return err
	}
	vars, fname, err := asm.Vars(ctx)
	if err != nil {
		return err
	}
	if fname == "" {
		fmt.Fprintf(w, "# no %q in %s\n", asm.Config.Makevars, asm.SourceDir())
	} else {
		fmt.Fprintf(w, "# %s\n", fname)
	}
	var names []string
	if c.lang != "" {
		l, ok := lang.Parse(c.lang)
		if !ok {
			return fmt.Errorf("unknown -lang=%q: %w", c.lang, flag.ErrHelp)
		}
		names = resolve.VarKeys(l)
	} else {
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	for _, name := range names {
		v, ok := vars[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s = %s\n", name, v)
	}
	return nil
}
