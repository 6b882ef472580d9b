// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want Flags
	}{
		{
			name: "include_forms",
			args: []string{
				"-I", "../inst/include",
				"-I../local",
				"-isystem", "sys",
				"-isystemsys2",
				"-isystem=sys3",
				"-iquote", "quoted",
				"-iquotequoted2",
				"--include-directory=inc",
				"-idirafter", "late",
			},
			want: Flags{
				{Kind: PathSeparate, Option: "-I", Path: "../inst/include"},
				{Kind: PathJoined, Option: "-I", Path: "../local"},
				{Kind: PathSeparate, Option: "-isystem", Path: "sys"},
				{Kind: PathJoined, Option: "-isystem", Path: "sys2"},
				{Kind: PathEquals, Option: "-isystem", Path: "sys3"},
				{Kind: PathSeparate, Option: "-iquote", Path: "quoted"},
				{Kind: PathJoined, Option: "-iquote", Path: "quoted2"},
				{Kind: PathEquals, Option: "--include-directory", Path: "inc"},
				{Kind: PathSeparate, Option: "-idirafter", Path: "late"},
			},
		},
		{
			name: "plain",
			args: []string{
				"-DNDEBUG",
				"-include", "config.h",
				"-isysroot/opt/sdk",
				"-fpic",
				"-std=gnu++17",
				"-D", "TSK_BUILD",
			},
			want: Flags{
				{Kind: Plain, Arg: "-DNDEBUG"},
				{Kind: PlainSeparate, Arg: "-include", Value: "config.h"},
				{Kind: Plain, Arg: "-isysroot/opt/sdk"},
				{Kind: Plain, Arg: "-fpic"},
				{Kind: Plain, Arg: "-std=gnu++17"},
				{Kind: PlainSeparate, Arg: "-D", Value: "TSK_BUILD"},
			},
		},
		{
			name: "dangling_option",
			args: []string{"-O2", "-I"},
			want: Flags{
				{Kind: Plain, Arg: "-O2"},
				{Kind: Plain, Arg: "-I"},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.args)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Classify(%q) diff -want +got:\n%s", tc.args, diff)
			}
			if diff := cmp.Diff(tc.args, got.Args()); diff != "" {
				t.Errorf("Classify(%q).Args() diff -want +got:\n%s", tc.args, diff)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		name   string
		args   []string
		anchor string
		want   []string
	}{
		{
			name:   "continuation_scenario",
			args:   []string{"-DFOO", "-I../local"},
			anchor: "/pkg/src",
			want:   []string{"-DFOO", "-I/pkg/local"},
		},
		{
			name: "all_forms",
			args: []string{
				"-I", "../inst/include",
				"-isystem./vendor/../vendor",
				"-isystem=sys",
				"-iquote", ".",
				"-I/usr/share/R/include",
				"-isystem", "/opt/include/../include",
				"-DNDEBUG",
				"-include", "config.h",
			},
			anchor: "/pkg/src",
			want: []string{
				"-I", "/pkg/inst/include",
				"-isystem/pkg/src/vendor",
				"-isystem=/pkg/src/sys",
				"-iquote", "/pkg/src",
				"-I/usr/share/R/include",
				"-isystem", "/opt/include/../include",
				"-DNDEBUG",
				"-include", "config.h",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			flags := Classify(tc.args)
			got := flags.Normalize(tc.anchor)
			if diff := cmp.Diff(tc.want, got.Args()); diff != "" {
				t.Errorf("Normalize(%q, %q) diff -want +got:\n%s", tc.args, tc.anchor, diff)
			}
			again := got.Normalize(tc.anchor)
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("Normalize is not idempotent for %q: diff -first +second:\n%s", tc.args, diff)
			}
			if diff := cmp.Diff(tc.args, flags.Args()); diff != "" {
				t.Errorf("Normalize modified its input: diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "first_occurrence",
			args: []string{"-I/a", "-DNDEBUG", "-I/b", "-I/a", "-DNDEBUG", "-O2"},
			want: []string{"-I/a", "-DNDEBUG", "-I/b", "-O2"},
		},
		{
			name: "separate_options_stay_paired",
			args: []string{"-isystem", "/a", "-isystem", "/b", "-isystem", "/a", "-D", "X", "-D", "Y"},
			want: []string{"-isystem", "/a", "-isystem", "/b", "-D", "X", "-D", "Y"},
		},
		{
			name: "forms_are_distinct",
			args: []string{"-I", "/a", "-I/a"},
			want: []string{"-I", "/a", "-I/a"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.args).Dedupe()
			if diff := cmp.Diff(tc.want, got.Args()); diff != "" {
				t.Errorf("Dedupe(%q) diff -want +got:\n%s", tc.args, diff)
			}
			if diff := cmp.Diff(got, got.Dedupe()); diff != "" {
				t.Errorf("Dedupe is not idempotent for %q: diff -first +second:\n%s", tc.args, diff)
			}
		})
	}
}

func TestFlagsHelpers(t *testing.T) {
	flags := Classify([]string{"-DNDEBUG", "-I", "/a", "-isystem=/b", "-O2"})
	flags = append(flags, IncludeDir("/c"), PlainToken("-g"))
	if !flags.Contains("-DNDEBUG") {
		t.Errorf("Contains(-DNDEBUG)=false; want true")
	}
	if flags.Contains("-I") {
		t.Errorf("Contains(-I)=true; want false")
	}
	if diff := cmp.Diff([]string{"/a", "/b", "/c"}, flags.IncludeDirs()); diff != "" {
		t.Errorf("IncludeDirs diff -want +got:\n%s", diff)
	}
	if got, want := flags[1].String(), "-I /a"; got != want {
		t.Errorf("String()=%q; want %q", got, want)
	}
}
