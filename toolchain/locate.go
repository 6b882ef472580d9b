// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package toolchain locates the R toolchain and the analyzer, and queries
// R for its installation root and compiler flags.
package toolchain

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// AnalyzerEnvVar names the analyzer executable, bypassing PATH lookup.
const AnalyzerEnvVar = "CLANG_TIDY"

// Tool describes an executable to locate.
type Tool struct {
	// Name is used in diagnostics.
	Name string
	// Candidates are executable names tried on PATH in order.
	Candidates []string
	// EnvVar, if set, names an environment variable that overrides
	// the PATH lookup.
	EnvVar string
	// Hint tells the user how to fix a missing tool.
	Hint string
}

var (
	// Host is the R executable.
	Host = Tool{
		Name:       "R",
		Candidates: []string{"R", "R.exe"},
		Hint:       "install R or set PATH accordingly",
	}
	// Analyzer is the static-analysis executable.
	Analyzer = Tool{
		Name:       "clang-tidy",
		Candidates: []string{"clang-tidy"},
		EnvVar:     AnalyzerEnvVar,
		Hint:       "install LLVM/clang-tidy",
	}
	// Script is the lightweight R script runner. It is optional.
	Script = Tool{
		Name:       "Rscript",
		Candidates: []string{"Rscript", "Rscript.exe"},
		Hint:       "install R or set PATH accordingly",
	}
)

// NotFoundError is an error when a tool can't be located.
type NotFoundError struct {
	Tool Tool
	// Override is the value of Tool.EnvVar that didn't resolve.
	Override string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Override != "" {
		return fmt.Sprintf("%s=%q is not an executable: %v; %s.", e.Tool.EnvVar, e.Override, e.Err, e.Tool.Hint)
	}
	return fmt.Sprintf("%s not found on PATH; %s.", e.Tool.Name, e.Tool.Hint)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Env is a snapshot of the environment tools are located in.
type Env struct {
	// LookPath resolves an executable name on the search path.
	LookPath func(file string) (string, error)
	// CheckExecutable checks that path is an executable file.
	CheckExecutable func(path string) error
	// Vars holds environment variables, such as AnalyzerEnvVar.
	Vars map[string]string
}

// SystemEnv returns Env that looks up the process's PATH, with vars as
// its environment variables.
func SystemEnv(vars map[string]string) Env {
	return Env{
		LookPath:        exec.LookPath,
		CheckExecutable: checkExecutable,
		Vars:            vars,
	}
}

// Locator finds tools in Env.
type Locator struct {
	Env Env
}

// Find returns the absolute path of tool.
// It returns *NotFoundError if none of the candidates resolve.
func (l Locator) Find(tool Tool) (string, error) {
	if tool.EnvVar != "" {
		if v := l.Env.Vars[tool.EnvVar]; v != "" {
			return l.override(tool, v)
		}
	}
	for _, name := range tool.Candidates {
		p, err := l.Env.LookPath(name)
		if err != nil || p == "" {
			continue
		}
		return absPath(p), nil
	}
	return "", &NotFoundError{Tool: tool}
}

// override resolves v given in tool.EnvVar. A bare name is looked up on
// PATH, and a path must be an executable.
func (l Locator) override(tool Tool, v string) (string, error) {
	if !strings.ContainsAny(v, `/\`) {
		p, err := l.Env.LookPath(v)
		if err != nil {
			return "", &NotFoundError{Tool: tool, Override: v, Err: err}
		}
		return absPath(p), nil
	}
	if l.Env.CheckExecutable != nil {
		if err := l.Env.CheckExecutable(v); err != nil {
			return "", &NotFoundError{Tool: tool, Override: v, Err: err}
		}
	}
	return absPath(v), nil
}

// Host returns the path of the R executable.
func (l Locator) Host() (string, error) {
	return l.Find(Host)
}

// Analyzer returns the path of the analyzer.
func (l Locator) Analyzer() (string, error) {
	return l.Find(Analyzer)
}

// Script returns the path of Rscript if found.
func (l Locator) Script() (string, bool) {
	p, err := l.Find(Script)
	return p, err == nil
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}
