// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package buildconfig provides the project config for rtidy.
package buildconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.starlark.net/starlark"

	"github.com/tskit-dev/rtidy/o11y/clog"
)

// DefaultFile is the config file name relative to the project root.
const DefaultFile = "tools/rtidy.star"

const (
	// package dir name relative to the project root. string
	fieldPackage = "package"
	// native source dir relative to the package dir. string
	fieldSourceDir = "source_dir"
	// header dirs relative to the package dir. list
	fieldIncludeDirs = "include_dirs"
	// R expression printing the dependency include dir. string
	fieldDependencyExpr = "dependency_expr"
	// whether to add -DNDEBUG. bool
	fieldNDebug = "ndebug"
	// candidate Makevars names in the source dir. list
	fieldMakevars = "makevars"
)

// Config is a project config.
type Config struct {
	Package        string
	SourceDir      string
	IncludeDirs    []string
	DependencyExpr string
	NDebug         bool
	Makevars       []string
}

// Default returns the default config.
func Default() Config {
	return Config{
		Package:   "RcppTskit",
		SourceDir: "src",
		IncludeDirs: []string{
			"inst/include",
			"inst/include/tskit",
			"inst/include/tskit/tskit",
		},
		DependencyExpr: "system.file('include', package = 'Rcpp')",
		NDebug:         true,
		Makevars:       []string{"Makevars", "Makevars.in"},
	}
}

// Load loads config from fname on fsys.
// It returns the default config if fname doesn't exist.
func Load(ctx context.Context, fsys fs.FS, fname string) (Config, error) {
	buf, err := fs.ReadFile(fsys, fname)
	if errors.Is(err, fs.ErrNotExist) {
		clog.Debugf(ctx, "no config %s; use default", fname)
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return Parse(ctx, fname, buf)
}

// Parse executes the Starlark src and returns the config it sets.
// Globals not set by src keep their default values.
func Parse(ctx context.Context, fname string, src []byte) (Config, error) {
	thread := &starlark.Thread{
		Name: "config",
		Print: func(thread *starlark.Thread, msg string) {
			clog.Infof(ctx, "thread:%s %s", thread.Name, msg)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load is not allowed in %s", fname)
		},
	}
	globals, err := starlark.ExecFile(thread, fname, src, nil)
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			clog.Warningf(ctx, "stacktrace:\n%s", eerr.Backtrace())
		}
		return Config{}, fmt.Errorf("failed to exec %s: %w", fname, err)
	}
	cfg := Default()
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if err := cfg.set(name, globals[name]); err != nil {
			return Config{}, fmt.Errorf("%s: %w", fname, err)
		}
	}
	clog.Debugf(ctx, "config %s: %+v", fname, cfg)
	return cfg, nil
}

func (cfg *Config) set(name string, v starlark.Value) error {
	var err error
	switch name {
	case fieldPackage:
		cfg.Package, err = unpackString(name, v)
	case fieldSourceDir:
		cfg.SourceDir, err = unpackString(name, v)
	case fieldDependencyExpr:
		cfg.DependencyExpr, err = unpackString(name, v)
	case fieldIncludeDirs:
		cfg.IncludeDirs, err = unpackList(name, v)
	case fieldMakevars:
		cfg.Makevars, err = unpackList(name, v)
	case fieldNDebug:
		b, ok := v.(starlark.Bool)
		if !ok {
			return fmt.Errorf("%s: got %s; want bool", name, v.Type())
		}
		cfg.NDebug = bool(b)
	default:
		return fmt.Errorf("unknown config %q", name)
	}
	return err
}

func unpackString(name string, v starlark.Value) (string, error) {
	s, ok := starlark.AsString(v)
	if !ok {
		return "", fmt.Errorf("%s: got %s; want string", name, v.Type())
	}
	return s, nil
}

func unpackList(name string, v starlark.Value) ([]string, error) {
	if _, ok := v.(starlark.String); ok {
		return nil, fmt.Errorf("%s: got string; want list", name)
	}
	iter := starlark.Iterate(v)
	if iter == nil {
		return nil, fmt.Errorf("%s: got %s; want list", name, v.Type())
	}
	defer iter.Done()
	list := []string{}
	var elem starlark.Value
	for iter.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("%s: got %s in %s; want string", name, elem.Type(), v.Type())
		}
		list = append(list, s)
	}
	return list, nil
}
