// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tskit-dev/rtidy/subcmd/cmdenv/cmdenvtest"
)

func TestRouteArgs(t *testing.T) {
	cmds := getApplication(context.Background()).Commands
	for _, tc := range []struct {
		args []string
		want []string
	}{
		{
			args: nil,
			want: nil,
		},
		{
			args: []string{"src/tskitr.cpp", "--", "-fix"},
			want: []string{"tidy", "src/tskitr.cpp", "--", "-fix"},
		},
		{
			args: []string{"-C", "..", "src/a.c"},
			want: []string{"tidy", "-C", "..", "src/a.c"},
		},
		{
			args: []string{"tidy", "src/a.c"},
			want: []string{"tidy", "src/a.c"},
		},
		{
			args: []string{"--", "-fix"},
			want: []string{"tidy", "--", "--", "-fix"},
		},
		{
			args: []string{"tidy", "-v", "--", "-fix"},
			want: []string{"tidy", "-v", "--", "--", "-fix"},
		},
		{
			args: []string{"-C", "..", "--", "-fix"},
			want: []string{"tidy", "-C", "..", "--", "--", "-fix"},
		},
		{
			args: []string{"watch", "--", "-fix"},
			want: []string{"watch", "--", "--", "-fix"},
		},
		{
			// "--" is the value of -C.
			args: []string{"-C", "--", "src/a.c"},
			want: []string{"tidy", "-C", "--", "src/a.c"},
		},
		{
			args: []string{"-v", "src/a.c", "--", "-fix"},
			want: []string{"tidy", "-v", "src/a.c", "--", "-fix"},
		},
		{
			args: []string{"-unknown", "--", "-fix"},
			want: []string{"tidy", "-unknown", "--", "-fix"},
		},
		{
			args: []string{"compdb", "--", "src/a.c"},
			want: []string{"compdb", "--", "src/a.c"},
		},
		{
			args: []string{"flags", "-lang", "c"},
			want: []string{"flags", "-lang", "c"},
		},
		{
			args: []string{"help"},
			want: []string{"help"},
		},
		{
			args: []string{"-help"},
			want: []string{"-help"},
		},
		{
			args: []string{"version"},
			want: []string{"version"},
		},
	} {
		got := routeArgs(tc.args, cmds)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("routeArgs(%q) diff -want +got:\n%s", tc.args, diff)
		}
	}
}

func TestApplication(t *testing.T) {
	app := getApplication(context.Background())
	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name())
	}
	want := []string{"tidy", "flags", "compdb", "watch", "makevars", "help", "version"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("commands diff -want +got:\n%s", diff)
	}
	for _, name := range []string{"CLANG_TIDY", "RTIDY_LOG_LEVEL"} {
		if _, ok := app.EnvVars[name]; !ok {
			t.Errorf("env var %s is not declared", name)
		}
	}
}

func TestRun_NoInputs(t *testing.T) {
	for _, args := range [][]string{
		{"--", "-fix"},
		{"tidy", "-v", "--", "-fix"},
		{"-C", ".", "--", "-fix", "-checks=-*"},
		{"watch", "--", "-fix"},
	} {
		app := &cmdenvtest.App{Application: getApplication(context.Background())}
		code := app.Run(routeArgs(args, app.Commands)...)
		if code != 1 {
			t.Errorf("run %q: exit=%d; want 1", args, code)
		}
		if got, want := app.Err.String(), "Error: no input files provided\n"; !strings.Contains(got, want) {
			t.Errorf("run %q: stderr=%q; want %q", args, got, want)
		}
		if app.Out.Len() != 0 {
			t.Errorf("run %q: stdout=%q; want empty", args, app.Out.String())
		}
	}
}
