// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tidy

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/tskit-dev/rtidy/execute"
	"github.com/tskit-dev/rtidy/lang"
	"github.com/tskit-dev/rtidy/o11y/clog"
	"github.com/tskit-dev/rtidy/toolsupport/gccutil"
)

// ArgsSeparator separates input files from clang-tidy args on the
// command line, and clang-tidy args from compiler flags in a clang-tidy
// invocation.
const ArgsSeparator = "--"

// SplitArgs splits args at the first ArgsSeparator into input files and
// passthrough args.
func SplitArgs(args []string) (files, extra []string) {
	for i, arg := range args {
		if arg == ArgsSeparator {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}

// FlagSource provides compiler flags for a language.
type FlagSource interface {
	Flags(ctx context.Context, l lang.Language) (gccutil.Flags, error)
}

// Invocation is a resolved clang-tidy invocation for a file.
type Invocation struct {
	Path  string
	Lang  lang.Language
	Flags gccutil.Flags
	// Extra is passed to clang-tidy before ArgsSeparator.
	Extra []string
}

// Args returns the command line to run tool for the invocation.
func (inv Invocation) Args(tool string) []string {
	args := make([]string, 0, len(inv.Extra)+len(inv.Flags)+3)
	args = append(args, tool, inv.Path)
	args = append(args, inv.Extra...)
	args = append(args, ArgsSeparator)
	return append(args, inv.Flags.Args()...)
}

// Dispatcher runs clang-tidy on files.
type Dispatcher struct {
	// Analyzer is the path of clang-tidy.
	Analyzer string
	Flags    FlagSource
	Exec     execute.Executor

	Stdout io.Writer
	Stderr io.Writer
}

// Resolve returns the invocation for path.
// Headers get `-x <lang>` ahead of the other flags.
func (d *Dispatcher) Resolve(ctx context.Context, path string, extra []string) (Invocation, error) {
	l := lang.Classify(path)
	flags, err := d.Flags.Flags(ctx, l)
	if err != nil {
		return Invocation{}, err
	}
	if lang.IsHeader(path) {
		x := gccutil.Token{Kind: gccutil.PlainSeparate, Arg: "-x", Value: string(l)}
		flags = append(gccutil.Flags{x}, flags...)
	}
	return Invocation{
		Path:  path,
		Lang:  l,
		Flags: flags,
		Extra: extra,
	}, nil
}

// Run runs clang-tidy on each file in order, and returns the last
// non-zero exit code, or 0 if all runs succeeded.
// A file whose flags can't be resolved, or whose run fails to start,
// counts as exit code 1. A failed file doesn't stop the rest.
func (d *Dispatcher) Run(ctx context.Context, files, extra []string) int {
	exitCode := 0
	for _, fname := range files {
		if err := ctx.Err(); err != nil {
			clog.Warningf(ctx, "interrupted before %s: %v", fname, err)
			if exitCode == 0 {
				exitCode = 1
			}
			break
		}
		code := d.runFile(ctx, fname, extra)
		if code != 0 {
			exitCode = code
		}
	}
	return exitCode
}

func (d *Dispatcher) runFile(ctx context.Context, fname string, extra []string) int {
	id := uuid.New().String()
	ctx = clog.NewSpan(ctx, "file", fname)
	inv, err := d.Resolve(ctx, fname, extra)
	if err != nil {
		clog.Errorf(ctx, "failed to resolve flags: %v", err)
		return 1
	}
	cmd := &execute.Cmd{
		ID:   id,
		Desc: "TIDY " + fname,
		Args: inv.Args(d.Analyzer),
	}
	if d.Stdout != nil {
		cmd.SetStdoutWriter(d.Stdout)
	}
	if d.Stderr != nil {
		cmd.SetStderrWriter(d.Stderr)
	}
	clog.Debugf(ctx, "%s: %s", cmd.Desc, cmd.Command())
	err = d.Exec.Run(ctx, cmd)
	var eerr *execute.ExitError
	if err != nil && !errors.As(err, &eerr) {
		clog.Errorf(ctx, "%v", err)
	}
	code := execute.ExitCode(err)
	clog.Debugf(ctx, "%s exit=%d", cmd.Desc, code)
	return code
}
