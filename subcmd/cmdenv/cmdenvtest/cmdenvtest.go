// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cmdenvtest provides a fake application and environment to
// test subcommands.
package cmdenvtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"sync"
	"testing/fstest"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/tskit-dev/rtidy/execute"
	"github.com/tskit-dev/rtidy/tidy"
	"github.com/tskit-dev/rtidy/toolchain"
)

// App is an application that writes to buffers.
type App struct {
	*cli.Application
	Out bytes.Buffer
	Err bytes.Buffer
}

// NewApp returns an application with cmds.
func NewApp(cmds ...*subcommands.Command) *App {
	return &App{
		Application: &cli.Application{
			Name: "rtidy",
			Context: func(ctx context.Context) context.Context {
				return ctx
			},
			Commands: cmds,
		},
	}
}

// GetOut implements subcommands.Application.
func (a *App) GetOut() io.Writer { return &a.Out }

// GetErr implements subcommands.Application.
func (a *App) GetErr() io.Writer { return &a.Err }

// Run runs the command line args, starting with a command name, and
// returns the exit code.
func (a *App) Run(args ...string) int {
	if args == nil {
		args = []string{}
	}
	return subcommands.Run(a, args)
}

// Toolchain is a fake toolchain and project tree.
type Toolchain struct {
	// Paths maps executable names to paths found on PATH.
	Paths map[string]string
	// Outputs maps space joined args of R queries to their output.
	// Queries not in Outputs fail.
	Outputs map[string]string
	// Files is the project tree at the project root.
	Files fstest.MapFS
	// ExitCodes maps file names to exit codes of clang-tidy.
	ExitCodes map[string]int

	mu   sync.Mutex
	runs [][]string
}

// Environment returns the environment for a subcommand run.
// Its signature matches cmdenv.Environment.
func (t *Toolchain) Environment(a subcommands.Application, env subcommands.Env) tidy.Environment {
	return tidy.Environment{
		Env: toolchain.Env{
			LookPath: func(file string) (string, error) {
				if p, ok := t.Paths[file]; ok {
					return p, nil
				}
				return "", exec.ErrNotFound
			},
			CheckExecutable: func(string) error { return nil },
		},
		Runner: t,
		Exec:   t,
		Stdout: a.GetOut(),
		Stderr: a.GetErr(),
		FS: func(string) fs.FS {
			return t.Files
		},
	}
}

// Output implements toolchain.Runner.
func (t *Toolchain) Output(ctx context.Context, args []string) (string, error) {
	out, ok := t.Outputs[strings.Join(args, " ")]
	if !ok {
		return "", fmt.Errorf("%q: exit status 1", args)
	}
	return out, nil
}

// Run implements execute.Executor. It records cmd and exits with the
// code in ExitCodes for the file in cmd.
func (t *Toolchain) Run(ctx context.Context, cmd *execute.Cmd) error {
	t.mu.Lock()
	t.runs = append(t.runs, cmd.Args)
	t.mu.Unlock()
	if len(cmd.Args) > 1 {
		if code := t.ExitCodes[cmd.Args[1]]; code != 0 {
			return &execute.ExitError{ExitCode: code}
		}
	}
	return nil
}

// Runs returns command lines run by Run.
func (t *Toolchain) Runs() [][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]string(nil), t.runs...)
}
