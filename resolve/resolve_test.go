// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package resolve

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/tskit-dev/rtidy/buildconfig"
	"github.com/tskit-dev/rtidy/lang"
	"github.com/tskit-dev/rtidy/toolchain"
)

type fakeToolchain map[lang.Language]toolchain.Snapshot

func (f fakeToolchain) Snapshot(ctx context.Context, l lang.Language) toolchain.Snapshot {
	return f[l]
}

var unavailable = toolchain.Probe{Err: errors.New("R: exit status 1")}

func offline() toolchain.Snapshot {
	return toolchain.Snapshot{
		Home:              unavailable,
		CPPFlags:          unavailable,
		CompilerFlags:     unavailable,
		DependencyInclude: unavailable,
	}
}

func online(compilerFlags string) toolchain.Snapshot {
	return toolchain.Snapshot{
		Home:              toolchain.Probe{Value: "/usr/lib/R"},
		CPPFlags:          toolchain.Probe{Value: "-I/usr/local/include -DFOO"},
		CompilerFlags:     toolchain.Probe{Value: compilerFlags},
		DependencyInclude: toolchain.Probe{Value: "/opt/Rcpp/include"},
	}
}

func newAssembler(fsys fstest.MapFS, tc fakeToolchain) *Assembler {
	cfg := buildconfig.Default()
	cfg.Package = "pkg"
	return &Assembler{
		Root:      "/",
		FS:        fsys,
		Config:    cfg,
		Toolchain: tc,
	}
}

func TestFlags(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name      string
		fsys      fstest.MapFS
		toolchain fakeToolchain
		lang      lang.Language
		want      []string
	}{
		{
			name:      "no_makevars_offline",
			fsys:      fstest.MapFS{},
			toolchain: fakeToolchain{lang.C: offline()},
			lang:      lang.C,
			want: []string{
				"-I/pkg/inst/include",
				"-I/pkg/inst/include/tskit",
				"-I/pkg/inst/include/tskit/tskit",
				"-DNDEBUG",
			},
		},
		{
			name: "continuation_scenario",
			fsys: fstest.MapFS{
				"pkg/src/Makevars": {Data: []byte("PKG_CPPFLAGS += -DFOO\\\n-I../local\n")},
			},
			toolchain: fakeToolchain{lang.C: offline()},
			lang:      lang.C,
			want: []string{
				"-DFOO",
				"-I/pkg/local",
				"-I/pkg/inst/include",
				"-I/pkg/inst/include/tskit",
				"-I/pkg/inst/include/tskit/tskit",
				"-DNDEBUG",
			},
		},
		{
			name: "precedence",
			fsys: fstest.MapFS{
				"pkg/src/Makevars": {Data: []byte(
					"PKG_CPPFLAGS = -I../local -I$(R_HOME)/extra -DFOO\n" +
						"PKG_CXXFLAGS += -std=c++17\n" +
						"PKG_CFLAGS = -std=c99\n")},
			},
			toolchain: fakeToolchain{lang.CXX: online("-g -O2")},
			lang:      lang.CXX,
			want: []string{
				"-I/pkg/local",
				"-I/usr/lib/R/extra",
				"-DFOO",
				"-std=c++17",
				"-I/usr/local/include",
				"-g",
				"-O2",
				"-I/opt/Rcpp/include",
				"-I/pkg/inst/include",
				"-I/pkg/inst/include/tskit",
				"-I/pkg/inst/include/tskit/tskit",
				"-I/usr/lib/R/include",
				"-DNDEBUG",
			},
		},
		{
			name: "template_and_separate_forms",
			fsys: fstest.MapFS{
				"pkg/src/Makevars.in": {Data: []byte("PKG_CPPFLAGS = -isystem ../sys -iquote . -DNDEBUG\n")},
			},
			toolchain: fakeToolchain{lang.C: offline()},
			lang:      lang.C,
			want: []string{
				"-isystem",
				"/pkg/sys",
				"-iquote",
				"/pkg/src",
				"-DNDEBUG",
				"-I/pkg/inst/include",
				"-I/pkg/inst/include/tskit",
				"-I/pkg/inst/include/tskit/tskit",
			},
		},
		{
			name: "unexpanded_home_offline",
			fsys: fstest.MapFS{
				"pkg/src/Makevars": {Data: []byte("PKG_CFLAGS = -I$(R_HOME)/include\n")},
			},
			toolchain: fakeToolchain{lang.C: offline()},
			lang:      lang.C,
			want: []string{
				"-I/pkg/src/$(R_HOME)/include",
				"-I/pkg/inst/include",
				"-I/pkg/inst/include/tskit",
				"-I/pkg/inst/include/tskit/tskit",
				"-DNDEBUG",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := newAssembler(tc.fsys, tc.toolchain)
			got, err := a.Flags(ctx, tc.lang)
			if err != nil {
				t.Fatalf("Flags(%s)=_, %v; want nil err", tc.lang, err)
			}
			if diff := cmp.Diff(tc.want, got.Args()); diff != "" {
				t.Errorf("Flags(%s) diff -want +got:\n%s", tc.lang, diff)
			}
		})
	}
}

func TestFlags_NoNDebug(t *testing.T) {
	ctx := context.Background()
	a := newAssembler(fstest.MapFS{}, fakeToolchain{lang.C: offline()})
	a.Config.NDebug = false
	got, err := a.Flags(ctx, lang.C)
	if err != nil {
		t.Fatal(err)
	}
	if got.Contains(NDebug) {
		t.Errorf("Flags=%q; want no %s", got.Args(), NDebug)
	}
}

func TestFlags_BadMakevars(t *testing.T) {
	ctx := context.Background()
	a := newAssembler(fstest.MapFS{
		"pkg/src/Makevars": {Data: []byte("PKG_CFLAGS = -DMSG=\"unterminated\n")},
	}, fakeToolchain{lang.C: offline()})
	_, err := a.Flags(ctx, lang.C)
	if err == nil {
		t.Errorf("Flags=_, nil; want error")
	}
}

func TestFlags_Idempotent(t *testing.T) {
	ctx := context.Background()
	a := newAssembler(fstest.MapFS{
		"pkg/src/Makevars": {Data: []byte("PKG_CPPFLAGS = -I. -I../inst/include -I./../src\n")},
	}, fakeToolchain{lang.CXX: online("-O2 -O2")})
	got, err := a.Flags(ctx, lang.CXX)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, got.Normalize(a.SourceDir()).Dedupe()); diff != "" {
		t.Errorf("Flags not stable under Normalize+Dedupe: -got +again:\n%s", diff)
	}
}
