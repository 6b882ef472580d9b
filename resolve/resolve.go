// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package resolve assembles compiler flags for analyzing sources of an
// R package.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/tskit-dev/rtidy/buildconfig"
	"github.com/tskit-dev/rtidy/lang"
	"github.com/tskit-dev/rtidy/o11y/clog"
	"github.com/tskit-dev/rtidy/toolchain"
	"github.com/tskit-dev/rtidy/toolsupport/gccutil"
	"github.com/tskit-dev/rtidy/toolsupport/makeutil"
	"github.com/tskit-dev/rtidy/toolsupport/shutil"
)

// NDebug is the flag that disables assertions.
const NDebug = "-DNDEBUG"

// Toolchain provides toolchain configuration for a language.
type Toolchain interface {
	Snapshot(ctx context.Context, l lang.Language) toolchain.Snapshot
}

// Assembler assembles flags for a package.
type Assembler struct {
	// Root is the absolute path of the project root.
	Root string
	// FS is the file system rooted at Root.
	FS fs.FS

	Config    buildconfig.Config
	Toolchain Toolchain
}

// PackageDir returns the absolute path of the package.
func (a *Assembler) PackageDir() string {
	return filepath.Join(a.Root, filepath.FromSlash(a.Config.Package))
}

// SourceDir returns the absolute path of the native source dir.
// Relative paths in flags are resolved against it.
func (a *Assembler) SourceDir() string {
	return filepath.Join(a.PackageDir(), filepath.FromSlash(a.Config.SourceDir))
}

// VarKeys returns Makevars variables that hold flags for l.
func VarKeys(l lang.Language) []string {
	if l == lang.CXX {
		return []string{"PKG_CPPFLAGS", "PKG_CXXFLAGS"}
	}
	return []string{"PKG_CPPFLAGS", "PKG_CFLAGS"}
}

// Vars returns the variables of the package's Makevars, and the name of
// the file relative to Root.
func (a *Assembler) Vars(ctx context.Context) (makeutil.Vars, string, error) {
	dir := path.Join(a.Config.Package, a.Config.SourceDir)
	return makeutil.LoadVarsFile(ctx, a.FS, dir, a.Config.Makevars...)
}

// CheckIncludeDirs logs a warning for configured include dirs that
// don't exist.
func (a *Assembler) CheckIncludeDirs(ctx context.Context) {
	for _, d := range a.Config.IncludeDirs {
		fi, err := fs.Stat(a.FS, path.Join(a.Config.Package, d))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			clog.Warningf(ctx, "include dir %s not found in %s", d, a.PackageDir())
		case err != nil:
			clog.Warningf(ctx, "include dir %s: %v", d, err)
		case !fi.IsDir():
			clog.Warningf(ctx, "include dir %s is not a directory", d)
		}
	}
}

// Flags returns the flags to parse a source of language l.
//
// Flags are, in order, Makevars flags, toolchain CPPFLAGS, toolchain
// CFLAGS or CXXFLAGS, the dependency include dir, the package include
// dirs and the R include dir, with relative paths resolved against
// SourceDir and duplicates removed.
// Unavailable toolchain values are skipped. It returns an error only if
// Makevars exists but can't be read or parsed.
func (a *Assembler) Flags(ctx context.Context, l lang.Language) (gccutil.Flags, error) {
	snap := a.Toolchain.Snapshot(ctx, l)
	srcDir := a.SourceDir()

	subst := map[string]string{}
	if snap.Home.Available() {
		subst["R_HOME"] = snap.Home.Value
	}
	flags, err := a.makevarsFlags(ctx, l, subst)
	if err != nil {
		return nil, err
	}
	flags = flags.Normalize(srcDir)

	for _, p := range []struct {
		name  string
		probe toolchain.Probe
	}{
		{"CPPFLAGS", snap.CPPFlags},
		{"compiler flags", snap.CompilerFlags},
	} {
		if !p.probe.Available() {
			continue
		}
		args, err := shutil.Split(p.probe.Value)
		if err != nil {
			clog.Warningf(ctx, "toolchain %s %q: %v", p.name, p.probe.Value, err)
			continue
		}
		flags = append(flags, gccutil.Classify(args)...)
	}
	if snap.DependencyInclude.Available() {
		flags = append(flags, gccutil.IncludeDir(snap.DependencyInclude.Value))
	}
	pkgDir := a.PackageDir()
	for _, d := range a.Config.IncludeDirs {
		flags = append(flags, gccutil.IncludeDir(filepath.Join(pkgDir, filepath.FromSlash(d))))
	}
	if snap.Home.Available() {
		flags = append(flags, gccutil.IncludeDir(filepath.Join(snap.Home.Value, "include")))
	}

	flags = flags.Normalize(srcDir)
	if a.Config.NDebug && !flags.Contains(NDebug) {
		flags = append(flags, gccutil.PlainToken(NDebug))
	}
	return flags.Dedupe(), nil
}

func (a *Assembler) makevarsFlags(ctx context.Context, l lang.Language, subst map[string]string) (gccutil.Flags, error) {
	vars, fname, err := a.Vars(ctx)
	if err != nil {
		return nil, fmt.Errorf("makevars: %w", err)
	}
	var args []string
	for _, key := range VarKeys(l) {
		v := vars[key]
		if v == "" {
			continue
		}
		v = makeutil.Expand(v, subst)
		fields, err := shutil.Split(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fname, key, err)
		}
		clog.Debugf(ctx, "%s %s=%q", fname, key, fields)
		args = append(args, fields...)
	}
	return gccutil.Classify(args), nil
}
