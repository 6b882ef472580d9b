// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package gccutil

import (
	"path/filepath"
	"strings"
)

// Kind is a shape of a command line token.
type Kind int

const (
	// Plain is a token that does not carry a path.
	Plain Kind = iota
	// PathSeparate is an include-path option followed by a separate
	// path argument, e.g. `-I dir`, `-isystem dir`.
	PathSeparate
	// PathJoined is an include-path option with the path concatenated,
	// e.g. `-Idir`, `-isystemdir`.
	PathJoined
	// PathEquals is an include-path option with `=` and the path,
	// e.g. `-isystem=dir`, `--include-directory=dir`.
	PathEquals
	// PlainSeparate is a non-path option followed by a separate
	// argument, e.g. `-D NAME`, `-include file.h`.
	PlainSeparate
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case PathSeparate:
		return "separate"
	case PathJoined:
		return "joined"
	case PathEquals:
		return "equals"
	case PlainSeparate:
		return "plain-separate"
	}
	return "unknown"
}

// Token is a command line unit.
// A PathSeparate token covers two args: the option and its path.
type Token struct {
	Kind Kind
	// Option is the include-path option for path-bearing tokens.
	Option string
	// Path is the path for path-bearing tokens.
	Path string
	// Arg is the raw arg for Plain and PlainSeparate tokens.
	Arg string
	// Value is the argument following Arg for PlainSeparate tokens.
	Value string
}

// PlainToken returns a Plain token of arg.
func PlainToken(arg string) Token {
	return Token{Kind: Plain, Arg: arg}
}

// IncludeDir returns a `-I<dir>` token.
func IncludeDir(dir string) Token {
	return Token{Kind: PathJoined, Option: "-I", Path: dir}
}

// Args returns the command line args of the token.
func (t Token) Args() []string {
	switch t.Kind {
	case PathSeparate:
		return []string{t.Option, t.Path}
	case PathJoined:
		return []string{t.Option + t.Path}
	case PathEquals:
		return []string{t.Option + "=" + t.Path}
	case PlainSeparate:
		return []string{t.Arg, t.Value}
	}
	return []string{t.Arg}
}

func (t Token) String() string {
	return strings.Join(t.Args(), " ")
}

// HasPath reports whether the token carries a path.
func (t Token) HasPath() bool {
	switch t.Kind {
	case PathSeparate, PathJoined, PathEquals:
		return true
	}
	return false
}

// Options that take a path as the next arg.
// https://clang.llvm.org/docs/ClangCommandLineReference.html#include-path-management
var separateOptions = map[string]bool{
	"-I":                  true,
	"--include-directory": true,
	"-isystem":            true,
	"-iquote":             true,
	"-idirafter":          true,
}

// Non-path options that take the next arg, kept together with it so
// dedupe never separates them.
var separateArgOptions = map[string]bool{
	"-D":       true,
	"-U":       true,
	"-include": true,
	"-imacros": true,
	"-x":       true,
	"-Xclang":  true,
	"-target":  true,
	"-arch":    true,
}

// Options that may have the path concatenated.
// Note that `-isysroot`, `-include` and `-iprefix` are not among them.
var joinedOptions = []string{
	"-idirafter",
	"-isystem",
	"-iquote",
	"-I",
}

// Options that may take the path after `=`.
var equalsOptions = []string{
	"--include-directory",
	"-isystem",
	"-I",
}

// Flags is a sequence of tokens in command line order.
type Flags []Token

// Classify classifies args into tokens.
func Classify(args []string) Flags {
	flags := make(Flags, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if separateOptions[arg] && i+1 < len(args) {
			i++
			flags = append(flags, Token{Kind: PathSeparate, Option: arg, Path: args[i]})
			continue
		}
		if separateArgOptions[arg] && i+1 < len(args) {
			i++
			flags = append(flags, Token{Kind: PlainSeparate, Arg: arg, Value: args[i]})
			continue
		}
		flags = append(flags, classifyArg(arg))
	}
	return flags
}

func classifyArg(arg string) Token {
	for _, opt := range equalsOptions {
		if p, ok := strings.CutPrefix(arg, opt+"="); ok {
			return Token{Kind: PathEquals, Option: opt, Path: p}
		}
	}
	for _, opt := range joinedOptions {
		if p, ok := strings.CutPrefix(arg, opt); ok && p != "" {
			return Token{Kind: PathJoined, Option: opt, Path: p}
		}
	}
	return PlainToken(arg)
}

// Args returns the command line args of flags.
func (f Flags) Args() []string {
	args := make([]string, 0, len(f))
	for _, t := range f {
		args = append(args, t.Args()...)
	}
	return args
}

// Contains reports whether flags has a Plain token of arg.
func (f Flags) Contains(arg string) bool {
	for _, t := range f {
		if t.Kind == Plain && t.Arg == arg {
			return true
		}
	}
	return false
}

// Normalize returns new flags where relative paths of path-bearing
// tokens are resolved against anchor and cleaned.
// Plain tokens and absolute paths are unchanged.
func (f Flags) Normalize(anchor string) Flags {
	out := make(Flags, 0, len(f))
	for _, t := range f {
		if t.HasPath() && !filepath.IsAbs(t.Path) {
			t.Path = filepath.Clean(filepath.Join(anchor, t.Path))
		}
		out = append(out, t)
	}
	return out
}

// Dedupe returns new flags without exact duplicate tokens.
// The first occurrence is kept and order is preserved.
func (f Flags) Dedupe() Flags {
	out := make(Flags, 0, len(f))
	seen := make(map[string]bool, len(f))
	for _, t := range f {
		key := strings.Join(t.Args(), "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// IncludeDirs returns paths of include-path tokens in order.
func (f Flags) IncludeDirs() []string {
	var dirs []string
	for _, t := range f {
		if t.HasPath() {
			dirs = append(dirs, t.Path)
		}
	}
	return dirs
}
