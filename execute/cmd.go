// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package execute runs commands.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tskit-dev/rtidy/toolsupport/shutil"
)

// Executor is an interface to run the cmd.
type Executor interface {
	Run(ctx context.Context, cmd *Cmd) error
}

// Cmd includes all the information required to run a command.
type Cmd struct {
	// ID is used as a unique identifier for this cmd in logs.
	ID string

	// Desc is a short, human-readable identifier of the cmd.
	// Example: "TIDY src/tskitr.cpp"
	Desc string

	// Args holds command line arguments.
	Args []string

	// Env specifies the environment of the process.
	// nil means the current process's environment.
	Env []string

	// Dir specifies the working directory of the cmd.
	// Empty means the current directory.
	Dir string

	stdoutWriter io.Writer
	stderrWriter io.Writer

	stdoutBuffer bytes.Buffer
	stderrBuffer bytes.Buffer
}

// String returns an ID of the cmd.
func (c *Cmd) String() string {
	return c.ID
}

// Command returns a command line string.
func (c *Cmd) Command() string {
	return shutil.Join(c.Args)
}

// SetStdoutWriter sets w for stdout.
func (c *Cmd) SetStdoutWriter(w io.Writer) {
	c.stdoutWriter = w
}

// SetStderrWriter sets w for stderr.
func (c *Cmd) SetStderrWriter(w io.Writer) {
	c.stderrWriter = w
}

// StdoutWriter returns a writer set for stdout.
func (c *Cmd) StdoutWriter() io.Writer {
	c.stdoutBuffer.Reset()
	if c.stdoutWriter == nil {
		return &c.stdoutBuffer
	}
	return io.MultiWriter(c.stdoutWriter, &c.stdoutBuffer)
}

// StderrWriter returns a writer set for stderr.
func (c *Cmd) StderrWriter() io.Writer {
	c.stderrBuffer.Reset()
	if c.stderrWriter == nil {
		return &c.stderrBuffer
	}
	return io.MultiWriter(c.stderrWriter, &c.stderrBuffer)
}

// Stdout returns stdout output of the cmd.
func (c *Cmd) Stdout() []byte {
	return c.stdoutBuffer.Bytes()
}

// Stderr returns stderr output of the cmd.
func (c *Cmd) Stderr() []byte {
	return c.stderrBuffer.Bytes()
}

// ExitError is an error of cmd exit.
type ExitError struct {
	ExitCode int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit=%d", e.ExitCode)
}

// ExitCode returns the exit code represented by err.
// nil is 0, ExitError is its code, and any other error, such as a
// failure to start the process, is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var eerr *ExitError
	if errors.As(err, &eerr) {
		return eerr.ExitCode
	}
	return 1
}
