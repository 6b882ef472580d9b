// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make: variable assignments
// in makefiles and dependency lists emitted by `cc -M`.
package makeutil

import (
	"path/filepath"
	"strings"
)

// ParseDeps parses the output of `cc -M` or `cc -MM` and returns the
// prerequisites of all its rules, in order of first appearance and
// without duplicates. Relative paths are joined with dir.
//
// Targets are ignored, so a rule with several targets, several rules
// (e.g. one per source) and the empty rules of `-MP` are handled alike.
func ParseDeps(b []byte, dir string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, line := range ruleLines(b) {
		i := ruleColon(line)
		if i < 0 {
			continue
		}
		for _, dep := range depFields(line[i+1:]) {
			if dir != "" && !filepath.IsAbs(dep) {
				dep = filepath.Join(dir, dep)
			}
			if seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}
	}
	return deps
}

// ruleLines splits b into lines with continuation lines joined.
func ruleLines(b []byte) []string {
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\\\n", " ")
	return strings.Split(s, "\n")
}

// ruleColon returns the index of the colon that ends the targets of
// line, or -1. A colon not followed by a space, such as the one in
// `C:\include`, is part of a path.
func ruleColon(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case ':':
			if i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t' {
				return i
			}
		}
	}
	return -1
}

// depFields splits s at unescaped spaces.
// `\ ` and `\#` are unescaped, and `$$` is `$`.
func depFields(s string) []string {
	var fields []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			fields = append(fields, sb.String())
			sb.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '#'):
			i++
			sb.WriteByte(s[i])
		case c == '$' && i+1 < len(s) && s[i+1] == '$':
			i++
			sb.WriteByte('$')
		case c == ' ' || c == '\t' || c == '\r':
			flush()
		default:
			sb.WriteByte(c)
		}
	}
	flush()
	return fields
}
