// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/tskit-dev/rtidy/o11y/clog"
)

// DefaultVarsFiles are the names LoadVarsFile checks, in order.
var DefaultVarsFiles = []string{"Makevars", "Makevars.in"}

// Vars maps a make variable name to its accumulated value.
type Vars map[string]string

// LoadVarsFile reads the first of names (DefaultVarsFiles if empty) that
// exists in dir on fsys, and returns its variables and the file name used.
// It returns empty Vars and no error when none of the files exist.
func LoadVarsFile(ctx context.Context, fsys fs.FS, dir string, names ...string) (Vars, string, error) {
	if len(names) == 0 {
		names = DefaultVarsFiles
	}
	for _, name := range names {
		fname := path.Join(dir, name)
		b, err := fs.ReadFile(fsys, fname)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		vars, err := ParseVars(strings.NewReader(string(b)))
		if err != nil {
			return nil, "", fmt.Errorf("parse %s: %w", fname, err)
		}
		clog.Debugf(ctx, "makevars %s: %d vars", fname, len(vars))
		return vars, fname, nil
	}
	clog.Debugf(ctx, "makevars: none of %q in %s", names, dir)
	return Vars{}, "", nil
}

// ParseVars parses make variable assignments from r.
//
// Comments start at the first unescaped '#'. A trailing '\' joins the
// next physical line with a single space. `NAME = v`, `NAME := v` and
// `NAME ::= v` replace the value, `NAME += v` appends to it, and
// `NAME ?= v` sets it only if it is unset. Rule and recipe lines, and
// anything else that is not an assignment, are ignored.
func ParseVars(r io.Reader) (Vars, error) {
	vars := make(Vars)
	var sb strings.Builder
	joining := false
	inRule := false
	flush := func() {
		line := sb.String()
		sb.Reset()
		joining = false
		inRule = vars.apply(line, inRule)
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := strings.TrimRight(stripComment(s.Text()), " \t\r")
		if joining {
			line = strings.TrimLeft(line, " \t")
		}
		body, cont := strings.CutSuffix(line, `\`)
		if !cont {
			sb.WriteString(line)
			flush()
			continue
		}
		sb.WriteString(strings.TrimRight(body, " \t"))
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteByte(' ')
		}
		joining = true
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if joining {
		flush()
	}
	return vars, nil
}

// stripComment cuts line at the first '#' not escaped by '\'.
// An escaped `\#` is kept as a literal '#'.
func stripComment(line string) string {
	if !strings.Contains(line, "#") {
		return line
	}
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '#':
			sb.WriteByte('#')
			i++
		case line[i] == '#':
			return sb.String()
		default:
			sb.WriteByte(line[i])
		}
	}
	return sb.String()
}

// apply applies a logical line and reports whether the following lines
// belong to a rule.
func (v Vars) apply(line string, inRule bool) bool {
	if strings.HasPrefix(line, "\t") && inRule {
		// recipe line
		return true
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return inRule
	}
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		// rule `target: prereqs`, directive, or garbage.
		return strings.Contains(line, ":")
	}
	name := line[:eq]
	value := strings.TrimSpace(line[eq+1:])
	op := byte('=')
	switch {
	case strings.HasSuffix(name, "+"), strings.HasSuffix(name, "?"):
		op = name[len(name)-1]
		name = name[:len(name)-1]
	case strings.HasSuffix(name, "::"):
		name = name[:len(name)-2]
	case strings.HasSuffix(name, ":"):
		name = name[:len(name)-1]
	}
	name = varName(name)
	if name == "" {
		return false
	}
	switch op {
	case '+':
		v.Append(name, value)
	case '?':
		if _, ok := v[name]; !ok {
			v[name] = value
		}
	default:
		v[name] = value
	}
	return false
}

// varName trims whitespace and `export`/`override` directives from name.
// It returns "" if name is not a single word.
func varName(name string) string {
	fields := strings.Fields(name)
	for len(fields) > 1 && (fields[0] == "export" || fields[0] == "override") {
		fields = fields[1:]
	}
	if len(fields) != 1 {
		return ""
	}
	return fields[0]
}

// Append appends value to the variable name, separated by a space.
// Appending to an undefined variable starts from the empty value.
func (v Vars) Append(name, value string) {
	prev := v[name]
	switch {
	case prev == "":
		v[name] = value
	case value == "":
	default:
		v[name] = prev + " " + value
	}
}

// Expand substitutes `$(NAME)` and `${NAME}` references in s for names
// defined in vars. Other references are kept as is.
func Expand(s string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(s, "$") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '$' && i+1 < len(s) {
			var closer byte
			switch s[i+1] {
			case '(':
				closer = ')'
			case '{':
				closer = '}'
			}
			if closer != 0 {
				if j := strings.IndexByte(s[i+2:], closer); j >= 0 {
					if val, ok := vars[s[i+2:i+2+j]]; ok {
						sb.WriteString(val)
						i += 2 + j
						continue
					}
				}
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
