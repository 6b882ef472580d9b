// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package compdb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/tskit-dev/rtidy/subcmd/cmdenv/cmdenvtest"
	"github.com/tskit-dev/rtidy/tidy"
)

func TestRun(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	outFile := filepath.Join(t.TempDir(), "compile_commands.json")
	flags := []string{
		"-I/proj/RcppTskit/inst/include",
		"-DTSK_R",
		"-I/proj/RcppTskit/inst/include/tskit",
		"-I/proj/RcppTskit/inst/include/tskit/tskit",
		"-DNDEBUG",
	}
	entries := []tidy.CompileCommand{
		{
			Directory: wd,
			File:      "/proj/RcppTskit/src/tskitr.cpp",
			Arguments: append(append([]string{"c++"}, flags...), "-c", "/proj/RcppTskit/src/tskitr.cpp"),
		},
		{
			Directory: wd,
			File:      "/proj/RcppTskit/inst/include/tskit.h",
			Arguments: append(append([]string{"cc", "-x", "c"}, flags...), "-c", "/proj/RcppTskit/inst/include/tskit.h"),
		},
	}
	files := []string{"/proj/RcppTskit/src/tskitr.cpp", "/proj/RcppTskit/inst/include/tskit.h"}

	for _, tc := range []struct {
		name       string
		paths      map[string]string
		args       []string
		wantCode   int
		wantStdout []tidy.CompileCommand
		wantFile   []tidy.CompileCommand
		wantStderr string
	}{
		{
			name:       "stdout",
			paths:      map[string]string{"R": "/usr/bin/R"},
			args:       append([]string{"-C", "/proj", "-o", "-"}, files...),
			wantStdout: entries,
		},
		{
			name:     "file",
			paths:    map[string]string{"R": "/usr/bin/R"},
			args:     append([]string{"-C", "/proj", "-o", outFile}, files...),
			wantFile: entries,
		},
		{
			name:       "no_inputs",
			paths:      map[string]string{"R": "/usr/bin/R"},
			args:       []string{"-C", "/proj", "-o", "-"},
			wantCode:   1,
			wantStderr: "Error: no input files provided\n",
		},
		{
			name:       "no_r",
			paths:      map[string]string{},
			args:       append([]string{"-C", "/proj", "-o", "-"}, files...),
			wantCode:   1,
			wantStderr: "Error: R not found on PATH",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toolchain := &cmdenvtest.Toolchain{
				Paths: tc.paths,
				Files: fstest.MapFS{
					"RcppTskit/src/Makevars": {Data: []byte("PKG_CPPFLAGS = -I../inst/include -DTSK_R\n")},
				},
			}
			cmd := newCmd(toolchain.Environment)
			app := cmdenvtest.NewApp(cmd)
			code := app.Run(append([]string{cmd.Name()}, tc.args...)...)
			if code != tc.wantCode {
				t.Errorf("exit=%d; want %d\nstderr:\n%s", code, tc.wantCode, app.Err.String())
			}
			if tc.wantStderr != "" && !strings.Contains(app.Err.String(), tc.wantStderr) {
				t.Errorf("stderr=%q; want %q", app.Err.String(), tc.wantStderr)
			}
			var got []tidy.CompileCommand
			if app.Out.Len() > 0 {
				if err := json.Unmarshal(app.Out.Bytes(), &got); err != nil {
					t.Fatalf("stdout is not a compilation database: %v\n%s", err, app.Out.String())
				}
			}
			if diff := cmp.Diff(tc.wantStdout, got); diff != "" {
				t.Errorf("stdout diff -want +got:\n%s", diff)
			}
			if tc.wantFile == nil {
				return
			}
			buf, err := os.ReadFile(outFile)
			if err != nil {
				t.Fatalf("compdb didn't write %s: %v", outFile, err)
			}
			got = nil
			if err := json.Unmarshal(buf, &got); err != nil {
				t.Fatalf("%s is not a compilation database: %v\n%s", outFile, err, buf)
			}
			if diff := cmp.Diff(tc.wantFile, got); diff != "" {
				t.Errorf("%s diff -want +got:\n%s", outFile, diff)
			}
		})
	}
}
