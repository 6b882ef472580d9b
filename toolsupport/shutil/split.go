// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package shutil provides utilities for POSIX shell command lines.
package shutil

import (
	"fmt"

	"github.com/google/shlex"
)

// Split splits a flag string, such as a make variable value or
// `R CMD config` output, into args with POSIX shell quoting rules.
// It returns error for unterminated quotes or a trailing escape.
func Split(cmdline string) ([]string, error) {
	args, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("failed to split %q: %w", cmdline, err)
	}
	return args, nil
}
