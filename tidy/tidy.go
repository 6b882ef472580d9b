// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package tidy runs clang-tidy on sources of an R package with the
// resolved compiler flags.
package tidy

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tskit-dev/rtidy/buildconfig"
	"github.com/tskit-dev/rtidy/execute"
	"github.com/tskit-dev/rtidy/execute/localexec"
	"github.com/tskit-dev/rtidy/o11y/clog"
	"github.com/tskit-dev/rtidy/resolve"
	"github.com/tskit-dev/rtidy/toolchain"
)

// ErrNoInputs is an error when no input files are given.
var ErrNoInputs = errors.New("no input files provided")

// Options are options to set up a run.
type Options struct {
	// Root is the project root directory.
	Root string
	// ConfigFile is the project config, relative to Root or absolute.
	ConfigFile string
}

// ConfigPath returns the absolute path of the project config for the
// absolute project root.
func (o Options) ConfigPath(root string) string {
	fname := o.ConfigFile
	if fname == "" {
		fname = buildconfig.DefaultFile
	}
	if filepath.IsAbs(fname) {
		return filepath.Clean(fname)
	}
	return filepath.Join(root, filepath.FromSlash(fname))
}

// RegisterFlags registers flags for the options.
func (o *Options) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.StringVar(&o.Root, "C", ".", "project root directory that contains the package directory")
	flagSet.StringVar(&o.ConfigFile, "config", buildconfig.DefaultFile, "project config file, relative to the project root or absolute. defaults are used if it doesn't exist")
}

// Environment is the process environment a run depends on.
type Environment struct {
	Env    toolchain.Env
	Runner toolchain.Runner
	Exec   execute.Executor
	Stdout io.Writer
	Stderr io.Writer

	// FS returns the file system rooted at dir.
	// os.DirFS if nil.
	FS func(dir string) fs.FS
}

// LoadProject loads the project config and returns the flag assembler
// for the project without a toolchain.
func LoadProject(ctx context.Context, opts Options, env Environment) (*resolve.Assembler, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	fsys := env.rootFS(root)
	cfg, err := loadConfig(ctx, opts.ConfigPath(root), root, fsys, env)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &resolve.Assembler{
		Root:   root,
		FS:     fsys,
		Config: cfg,
	}, nil
}

// NewAssembler locates R, loads the project config and returns the flag
// assembler for the project.
// It returns *toolchain.NotFoundError if R is not found.
func NewAssembler(ctx context.Context, opts Options, env Environment) (*resolve.Assembler, error) {
	locator := toolchain.Locator{Env: env.Env}
	host, err := locator.Host()
	if err != nil {
		return nil, err
	}
	script, _ := locator.Script()
	clog.Debugf(ctx, "R=%s Rscript=%s", host, script)

	asm, err := LoadProject(ctx, opts, env)
	if err != nil {
		return nil, err
	}
	runner := env.Runner
	if runner == nil {
		runner = toolchain.LocalRunner{}
	}
	asm.Toolchain = &toolchain.Query{
		Host:           host,
		Script:         script,
		DependencyExpr: asm.Config.DependencyExpr,
		Runner:         runner,
	}
	return asm, nil
}

// Setup checks prerequisites and returns the dispatcher for files.
// Checks are in order: files are given, R is found, then clang-tidy is
// found.
func Setup(ctx context.Context, opts Options, files []string, env Environment) (*Dispatcher, error) {
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	asm, err := NewAssembler(ctx, opts, env)
	if err != nil {
		return nil, err
	}
	analyzer, err := toolchain.Locator{Env: env.Env}.Analyzer()
	if err != nil {
		return nil, err
	}
	clog.Infof(ctx, "clang-tidy=%s package=%s", analyzer, asm.PackageDir())
	asm.CheckIncludeDirs(ctx)
	ex := env.Exec
	if ex == nil {
		ex = localexec.LocalExec{}
	}
	return &Dispatcher{
		Analyzer: analyzer,
		Flags:    asm,
		Exec:     ex,
		Stdout:   env.Stdout,
		Stderr:   env.Stderr,
	}, nil
}

// loadConfig loads the config at the absolute path fname. fname is read
// through fsys if it is in root.
func loadConfig(ctx context.Context, fname, root string, fsys fs.FS, env Environment) (buildconfig.Config, error) {
	rel, err := filepath.Rel(root, fname)
	if err == nil && filepath.IsLocal(rel) {
		return buildconfig.Load(ctx, fsys, filepath.ToSlash(rel))
	}
	return buildconfig.Load(ctx, env.rootFS(filepath.Dir(fname)), filepath.Base(fname))
}

func (env Environment) rootFS(dir string) fs.FS {
	if env.FS != nil {
		return env.FS(dir)
	}
	return os.DirFS(dir)
}
