// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package gccutil provides utilities of gcc compatible command lines.
package gccutil

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tskit-dev/rtidy/execute"
	"github.com/tskit-dev/rtidy/o11y/clog"
	"github.com/tskit-dev/rtidy/toolsupport/makeutil"
)

// DepsArgs returns command line args to get deps for args.
func DepsArgs(args []string) []string {
	var dargs []string
	skip := false
	for _, arg := range args {
		if skip {
			skip = false
			continue
		}
		switch arg {
		case "-MD", "-MMD", "-c":
			continue
		case "-MF", "-o":
			skip = true
			continue
		}
		if strings.HasPrefix(arg, "-MF") {
			continue
		}
		if strings.HasPrefix(arg, "-o") {
			continue
		}
		dargs = append(dargs, arg)
	}
	dargs = append(dargs, "-M")
	return dargs
}

// Deps runs the compiler command specified by args in dir with ex, and
// returns the files the compiled source depends on.
// Relative paths in the compiler output are joined with dir.
func Deps(ctx context.Context, ex execute.Executor, args []string, dir string) ([]string, error) {
	s := time.Now()
	cmd := &execute.Cmd{
		ID:   uuid.New().String(),
		Desc: "DEPS",
		Args: DepsArgs(args),
		Dir:  dir,
	}
	err := ex.Run(ctx, cmd)
	if err != nil {
		clog.Warningf(ctx, "failed to run %s: %v\n%s", cmd.Command(), err, cmd.Stderr())
		return nil, err
	}
	stdout := cmd.Stdout()
	if len(stdout) == 0 {
		clog.Warningf(ctx, "failed to run gcc deps? stdout:0 args:%q\nstderr:%s", cmd.Args, cmd.Stderr())
	}
	deps := makeutil.ParseDeps(stdout, dir)
	clog.Debugf(ctx, "gcc deps stdout:%d -> deps:%d: %s", len(stdout), len(deps), time.Since(s))
	return deps, nil
}
