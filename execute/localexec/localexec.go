// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package localexec implements local command execution.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/tskit-dev/rtidy/execute"
	"github.com/tskit-dev/rtidy/o11y/clog"
)

// LocalExec implements execute.Executor interface that runs commands locally.
type LocalExec struct{}

// Run runs cmd with LocalExec.
func Run(ctx context.Context, cmd *execute.Cmd) error {
	return LocalExec{}.Run(ctx, cmd)
}

// Run runs a cmd.
// It returns *execute.ExitError if the cmd exits with non-zero code.
func (LocalExec) Run(ctx context.Context, cmd *execute.Cmd) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("no arguments in the command. ID: %s", cmd.ID)
	}
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Env = cmd.Env
	c.Dir = cmd.Dir
	c.Stdout = cmd.StdoutWriter()
	c.Stderr = cmd.StderrWriter()
	s := time.Now()
	err := c.Run()
	code, exited := exitCode(err)
	clog.Debugf(ctx, "%s exit=%d stdout=%d stderr=%d %s", cmd.ID, code, len(cmd.Stdout()), len(cmd.Stderr()), time.Since(s))
	if !exited {
		return fmt.Errorf("failed to run %q: %w", cmd.Args, err)
	}
	if code != 0 {
		return &execute.ExitError{ExitCode: code}
	}
	return nil
}

// exitCode returns exit code of the process and whether the process
// ran to exit. A process killed by a signal reports 128+signal.
func exitCode(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 1, false
	}
	if w, ok := eerr.ProcessState.Sys().(syscall.WaitStatus); ok {
		if w.Signaled() {
			return 128 + int(w.Signal()), true
		}
		return w.ExitStatus(), true
	}
	return 1, true
}

// Output runs args and returns its stdout with surrounding whitespace
// trimmed.
func Output(ctx context.Context, args []string) (string, error) {
	cmd := &execute.Cmd{
		ID:   uuid.New().String(),
		Args: args,
	}
	err := Run(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("%s: %w\n%s", cmd.Command(), err, strings.TrimSpace(string(cmd.Stderr())))
	}
	return strings.TrimSpace(string(cmd.Stdout())), nil
}
