// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package tidy

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tskit-dev/rtidy/lang"
	"github.com/tskit-dev/rtidy/toolsupport/gccutil"
)

func TestCompileCommands(t *testing.T) {
	ctx := context.Background()
	d := &Dispatcher{
		Flags: fakeFlags{
			lang.C:   gccutil.Flags{gccutil.IncludeDir("/pkg/inst/include"), gccutil.PlainToken("-DNDEBUG")},
			lang.CXX: gccutil.Flags{gccutil.IncludeDir("/pkg/inst/include"), gccutil.PlainToken("-DNDEBUG")},
		},
	}
	got, err := d.CompileCommands(ctx, "/pkg", []string{"src/tskit.c", "/pkg/src/RcppTskit.cpp", "inst/include/tskit.h"})
	if err != nil {
		t.Fatalf("CompileCommands=_, %v; want nil err", err)
	}
	want := []CompileCommand{
		{
			Directory: "/pkg",
			File:      "/pkg/src/tskit.c",
			Arguments: []string{"cc", "-I/pkg/inst/include", "-DNDEBUG", "-c", "/pkg/src/tskit.c"},
		},
		{
			Directory: "/pkg",
			File:      "/pkg/src/RcppTskit.cpp",
			Arguments: []string{"c++", "-I/pkg/inst/include", "-DNDEBUG", "-c", "/pkg/src/RcppTskit.cpp"},
		},
		{
			Directory: "/pkg",
			File:      "/pkg/inst/include/tskit.h",
			Arguments: []string{"cc", "-x", "c", "-I/pkg/inst/include", "-DNDEBUG", "-c", "/pkg/inst/include/tskit.h"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CompileCommands diff -want +got:\n%s", diff)
	}

	buf, err := MarshalCompileCommands(got)
	if err != nil {
		t.Fatal(err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(buf, &raw); err != nil {
		t.Fatalf("compile_commands.json is not valid json: %v\n%s", err, buf)
	}
	for _, key := range []string{"directory", "file", "arguments"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("entry %v has no %q", raw[0], key)
		}
	}
}
