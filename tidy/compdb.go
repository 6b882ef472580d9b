// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package tidy

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/tskit-dev/rtidy/lang"
)

// CompileCommand is an entry of a clang compilation database.
// https://clang.llvm.org/docs/JSONCompilationDatabase.html
type CompileCommand struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
}

// compilers are driver names used in compilation database entries.
var compilers = map[lang.Language]string{
	lang.C:   "cc",
	lang.CXX: "c++",
}

// CompileCommands returns compilation database entries for files.
// Relative file names are resolved against dir.
func (d *Dispatcher) CompileCommands(ctx context.Context, dir string, files []string) ([]CompileCommand, error) {
	cmds := make([]CompileCommand, 0, len(files))
	for _, fname := range files {
		if !filepath.IsAbs(fname) {
			fname = filepath.Join(dir, fname)
		}
		inv, err := d.Resolve(ctx, fname, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
		args := []string{compilers[inv.Lang]}
		args = append(args, inv.Flags.Args()...)
		args = append(args, "-c", fname)
		cmds = append(cmds, CompileCommand{
			Directory: dir,
			File:      fname,
			Arguments: args,
		})
	}
	return cmds, nil
}

// MarshalCompileCommands returns cmds in compile_commands.json format.
func MarshalCompileCommands(cmds []CompileCommand) ([]byte, error) {
	buf, err := json.MarshalIndent(cmds, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}
