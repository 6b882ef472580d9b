// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tskit-dev/rtidy/execute/localexec"
	"github.com/tskit-dev/rtidy/lang"
	"github.com/tskit-dev/rtidy/o11y/clog"
)

var (
	// ErrEmpty is an error when a probe succeeded with no output.
	ErrEmpty = errors.New("empty output")
	// ErrNotRequested is an error for a probe that was not run.
	ErrNotRequested = errors.New("not requested")
)

// Runner runs a command and returns its trimmed stdout.
type Runner interface {
	Output(ctx context.Context, args []string) (string, error)
}

// LocalRunner runs commands on the local machine.
type LocalRunner struct{}

// Output runs args and returns its stdout.
func (LocalRunner) Output(ctx context.Context, args []string) (string, error) {
	return localexec.Output(ctx, args)
}

// Probe is a result of a best-effort toolchain query.
// Err is set when the value is unavailable.
type Probe struct {
	Value string
	Err   error
}

// Available reports whether the probe obtained a value.
func (p Probe) Available() bool {
	return p.Err == nil && p.Value != ""
}

func (p Probe) String() string {
	if !p.Available() {
		return fmt.Sprintf("<unavailable: %v>", p.Err)
	}
	return p.Value
}

func newProbe(out string, err error) Probe {
	if err != nil {
		return Probe{Err: err}
	}
	if out == "" {
		return Probe{Err: ErrEmpty}
	}
	return Probe{Value: out}
}

// Snapshot is the toolchain configuration for a language.
type Snapshot struct {
	// Home is the installation root of R.
	Home Probe
	// CPPFlags is the preprocessor flags.
	CPPFlags Probe
	// CompilerFlags is CFLAGS or CXXFLAGS, depending on the language.
	CompilerFlags Probe
	// DependencyInclude is the include dir of the dependency package.
	DependencyInclude Probe
}

// Query queries the R toolchain.
type Query struct {
	// Host is the path of R.
	Host string
	// Script is the path of Rscript. Empty if unavailable.
	Script string
	// DependencyExpr is the R expression that evaluates to the
	// dependency include dir. No probe if empty.
	DependencyExpr string

	Runner Runner

	mu    sync.Mutex
	cache map[lang.Language]Snapshot
}

// Home returns the installation root, from `R RHOME`.
func (q *Query) Home(ctx context.Context) Probe {
	return newProbe(q.lastLine(ctx, []string{q.Host, "RHOME"}))
}

// Config returns the value of `R CMD config <name>`.
func (q *Query) Config(ctx context.Context, name string) Probe {
	out, err := q.Runner.Output(ctx, []string{q.Host, "CMD", "config", name})
	return newProbe(strings.TrimSpace(out), err)
}

// Eval evaluates expr in R and returns the last non-blank line it prints.
func (q *Query) Eval(ctx context.Context, expr string) Probe {
	code := fmt.Sprintf("cat(%s)", expr)
	args := []string{q.Host, "--vanilla", "--slave", "-e", code}
	if q.Script != "" {
		args = []string{q.Script, "--vanilla", "-e", code}
	}
	return newProbe(q.lastLine(ctx, args))
}

func (q *Query) lastLine(ctx context.Context, args []string) (string, error) {
	out, err := q.Runner.Output(ctx, args)
	if err != nil {
		return "", err
	}
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l, nil
		}
	}
	return "", nil
}

// Snapshot returns the toolchain configuration for l.
// Probes run concurrently. The result is cached in q.
func (q *Query) Snapshot(ctx context.Context, l lang.Language) Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := q.cache[l]; ok {
		return s
	}
	compilerVar := "CFLAGS"
	if l == lang.CXX {
		compilerVar = "CXXFLAGS"
	}
	s := Snapshot{
		DependencyInclude: Probe{Err: ErrNotRequested},
	}
	var eg errgroup.Group
	eg.Go(func() error {
		s.Home = q.Home(ctx)
		return nil
	})
	eg.Go(func() error {
		s.CPPFlags = q.Config(ctx, "CPPFLAGS")
		return nil
	})
	eg.Go(func() error {
		s.CompilerFlags = q.Config(ctx, compilerVar)
		return nil
	})
	if q.DependencyExpr != "" {
		eg.Go(func() error {
			s.DependencyInclude = q.Eval(ctx, q.DependencyExpr)
			return nil
		})
	}
	_ = eg.Wait()
	for _, p := range []struct {
		name  string
		probe Probe
	}{
		{"home", s.Home},
		{"CPPFLAGS", s.CPPFlags},
		{compilerVar, s.CompilerFlags},
		{"dependency include", s.DependencyInclude},
	} {
		if !p.probe.Available() {
			clog.Debugf(ctx, "toolchain %s: %v", p.name, p.probe.Err)
		}
	}
	if q.cache == nil {
		q.cache = make(map[lang.Language]Snapshot)
	}
	q.cache[l] = s
	return s
}
