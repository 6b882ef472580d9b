// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// rtidy runs clang-tidy on C/C++ sources of an R package with the
// compiler flags R would use to build the package.
package main

import (
	"context"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"github.com/tskit-dev/rtidy/subcmd/cmdenv"
	"github.com/tskit-dev/rtidy/subcmd/compdb"
	"github.com/tskit-dev/rtidy/subcmd/flags"
	"github.com/tskit-dev/rtidy/subcmd/help"
	"github.com/tskit-dev/rtidy/subcmd/makevars"
	"github.com/tskit-dev/rtidy/subcmd/tidy"
	"github.com/tskit-dev/rtidy/subcmd/version"
	"github.com/tskit-dev/rtidy/subcmd/watch"
	"github.com/tskit-dev/rtidy/toolchain"
)

const rtidyVersion = "rtidy v0.1.0"

// impliedCommand runs when the first arg is not a command.
const impliedCommand = "tidy"

// passthroughCommands take clang-tidy args after "--".
var passthroughCommands = map[string]bool{
	"tidy":  true,
	"watch": true,
}

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "rtidy",
		Title: "clang-tidy for R packages with native code",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			tidy.Cmd(),
			flags.Cmd(),
			compdb.Cmd(),
			watch.Cmd(),
			makevars.Cmd(),

			help.Cmd(impliedCommand),
			version.Cmd(rtidyVersion),
		},
		EnvVars: map[string]subcommands.EnvVarDefinition{
			toolchain.AnalyzerEnvVar: {
				ShortDesc: "clang-tidy executable to use instead of the one on PATH",
			},
			cmdenv.LogLevelEnvVar: {
				ShortDesc: "log level: debug, info, warn or error",
				Default:   cmdenv.DefaultLogLevel.String(),
			},
		},
	}
}

func main() {
	os.Exit(rtidyMain(os.Args[1:]))
}

func rtidyMain(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer signals.HandleInterrupt(cancel)()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	app := getApplication(ctx)
	return subcommands.Run(app, routeArgs(args, app.Commands))
}

// routeArgs prepends impliedCommand to args unless args start with a
// command name or a help flag, so `rtidy a.c -- -fix` runs `tidy`.
// For commands taking passthrough args, a "--" right after the flags is
// kept for the command, so `rtidy -- -fix` has no input files.
func routeArgs(args []string, cmds []*subcommands.Command) []string {
	if len(args) == 0 {
		return args
	}
	switch args[0] {
	case "-h", "-help", "--help":
		return args
	}
	name, cmdArgs := impliedCommand, args
	for _, c := range cmds {
		if c.Name() == args[0] {
			name, cmdArgs = args[0], args[1:]
			break
		}
	}
	for _, c := range cmds {
		if c.Name() == name && passthroughCommands[name] {
			cmdArgs = cmdenv.KeepSeparator(c, cmdArgs)
			break
		}
	}
	return append([]string{name}, cmdArgs...)
}
