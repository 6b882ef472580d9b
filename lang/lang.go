// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package lang classifies source files by dialect.
package lang

import (
	"path/filepath"
	"strings"
)

// Language is a source dialect as accepted by `-x`.
type Language string

const (
	C   Language = "c"
	CXX Language = "c++"
)

// Parse parses s as a Language.
func Parse(s string) (Language, bool) {
	switch Language(s) {
	case C, CXX:
		return Language(s), true
	}
	return "", false
}

var extLanguages = map[string]Language{
	".c":   C,
	".cc":  CXX,
	".cxx": CXX,
	".cpp": CXX,
	".hh":  CXX,
	".hpp": CXX,
	".hxx": CXX,
}

var headerExts = map[string]bool{
	".h":   true,
	".hh":  true,
	".hpp": true,
	".hxx": true,
}

// Classify returns the dialect of path by its extension.
// Unknown extensions, including ".h", are C.
func Classify(path string) Language {
	if l, ok := extLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return l
	}
	return C
}

// IsHeader reports whether path is a header file.
// Headers need an explicit `-x` because the analyzer can't tell the
// dialect from the extension.
func IsHeader(path string) bool {
	return headerExts[strings.ToLower(filepath.Ext(path))]
}
