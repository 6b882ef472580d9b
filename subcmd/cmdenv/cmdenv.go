// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package cmdenv sets up the environment shared by subcommands.
package cmdenv

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"github.com/tskit-dev/rtidy/execute/localexec"
	"github.com/tskit-dev/rtidy/o11y/clog"
	"github.com/tskit-dev/rtidy/tidy"
	"github.com/tskit-dev/rtidy/toolchain"
)

// LogLevelEnvVar sets the log level.
const LogLevelEnvVar = "RTIDY_LOG_LEVEL"

// DefaultLogLevel is the log level when neither -v nor LogLevelEnvVar
// is set.
const DefaultLogLevel = log.WarnLevel

// LogFlags are logging flags of a subcommand.
type LogFlags struct {
	verbose bool
}

// Register registers the flags in flagSet.
func (f *LogFlags) Register(flagSet *flag.FlagSet) {
	flagSet.BoolVar(&f.verbose, "v", false, "log debug messages. overrides $"+LogLevelEnvVar)
}

// Level returns the log level for vars.
func (f LogFlags) Level(vars map[string]string) (log.Level, error) {
	if f.verbose {
		return log.DebugLevel, nil
	}
	s := vars[LogLevelEnvVar]
	if s == "" {
		return DefaultLogLevel, nil
	}
	level, err := log.ParseLevel(s)
	if err != nil {
		return DefaultLogLevel, fmt.Errorf("bad $%s: %w", LogLevelEnvVar, err)
	}
	return level, nil
}

// Vars returns the defined variables of env.
func Vars(env subcommands.Env) map[string]string {
	vars := make(map[string]string, len(env))
	for k, v := range env {
		if v.Exists {
			vars[k] = v.Value
		}
	}
	return vars
}

// Context returns the context for a subcommand run, with a logger
// writing to the application's stderr and a run id.
func Context(a subcommands.Application, r subcommands.CommandRun, env subcommands.Env, f LogFlags) context.Context {
	ctx := cli.GetContext(a, r, env)
	level, err := f.Level(Vars(env))
	logger := clog.New(a.GetErr(), level)
	log.SetDefault(logger)
	ctx = clog.NewSpan(clog.NewContext(ctx, logger), "run", uuid.New().String()[:8])
	if err != nil {
		clog.Warningf(ctx, "%v", err)
	}
	return ctx
}

// Environment returns the process environment for tidy.
func Environment(a subcommands.Application, env subcommands.Env) tidy.Environment {
	return tidy.Environment{
		Env:    toolchain.SystemEnv(Vars(env)),
		Runner: toolchain.LocalRunner{},
		Exec:   localexec.LocalExec{},
		Stdout: a.GetOut(),
		Stderr: a.GetErr(),
	}
}

// KeepSeparator returns args for c with the "--" that ends the flags of
// c doubled. The flag parser consumes the first, so c still gets the
// separator before passthrough args, as in `tidy -v -- -fix`.
func KeepSeparator(c *subcommands.Command, args []string) []string {
	rest, ok := parseFlags(c, args)
	if !ok {
		return args
	}
	n := len(args) - len(rest)
	if n == 0 || args[n-1] != "--" {
		return args
	}
	// "--" may be the value of a flag, as in `-C --`.
	if before, ok := parseFlags(c, args[:n-1]); !ok || len(before) != 0 {
		return args
	}
	ret := make([]string, 0, len(args)+1)
	ret = append(ret, args[:n]...)
	ret = append(ret, "--")
	return append(ret, args[n:]...)
}

// parseFlags parses args with a new flag set of c, and returns the
// remaining args.
func parseFlags(c *subcommands.Command, args []string) ([]string, bool) {
	flagSet := c.CommandRun().GetFlags()
	flagSet.Init(c.Name(), flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() {}
	if err := flagSet.Parse(args); err != nil {
		return nil, false
	}
	return flagSet.Args(), true
}
