// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package watch is watch subcommand to rerun clang-tidy on changes.
package watch

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
	"github.com/tskit-dev/rtidy/toolsupport/gccutil"
)

const usage = `rerun clang-tidy when sources change

 $ rtidy watch [-C <root>] [-deps_compiler <cc>] <files>... [-- <clang-tidy args>...]

runs clang-tidy on <files>, then reruns it on a file when the
file, Makevars or the project config changes. With -deps_compiler,
headers reported by "<cc> -M" with the resolved flags are watched too.
Stop with Ctrl-C.
`

// Cmd returns the Command for the `watch` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return newCmd(cmdenv.Environment)
}

func newCmd(environment func(subcommands.Application, subcommands.Env) tidy.Environment) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "watch [-C <root>] <files>... [-- <clang-tidy args>...]",
		ShortDesc: "rerun clang-tidy when sources change",
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

	opts         tidy.Options
	logFlags     cmdenv.LogFlags
	depsCompiler string
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.logFlags.Register(&c.Flags)
	c.Flags.StringVar(&c.depsCompiler, "deps_compiler", "", "compiler to list included headers with -M. headers are not watched if empty")
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
	files, extra := tidy.SplitArgs(args)
	d, err := tidy.Setup(ctx, c.opts, files, env)
	if err != nil {
		return err
	}
	asm, err := tidy.LoadProject(ctx, c.opts, env)
	if err != nil {
		return err
	}
	var triggers []string
	for _, name := range asm.Config.Makevars {
		triggers = append(triggers, filepath.Join(asm.SourceDir(), name))
	}
	triggers = append(triggers, c.opts.ConfigPath(asm.Root))
	w := &tidy.Watcher{
		Dispatcher: d,
		Triggers:   triggers,
		Report: func(files []string, exitCode int) {
			fmt.Fprintf(a.GetErr(), "rtidy: %d files exit=%d\n", len(files), exitCode)
		},
	}
	if c.depsCompiler != "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		w.Deps = func(ctx context.Context, fname string) ([]string, error) {
			cmds, err := d.CompileCommands(ctx, wd, []string{fname})
			if err != nil {
				return nil, err
			}
			args := append([]string{c.depsCompiler}, cmds[0].Arguments[1:]...)
			deps, err := gccutil.Deps(ctx, env.Exec, args, wd)
			if err != nil {
				return nil, err
			}
			clog.Debugf(ctx, "%s: %d deps", fname, len(deps))
			return deps, nil
		}
	}
	return w.Watch(ctx, files, extra)
}
