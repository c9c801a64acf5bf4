// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// highlightDiff renders a unified diff with chroma's built-in "diff"
// lexer, the real tokenize/format pass the teacher's own
// internal/tui/exp/diffview never got past a stub for ("Diff View
// (stub)"). Falls back to the plain diff text on any formatting error,
// since a rendering failure should never hide the underlying diff from
// "/diff".
func highlightDiff(diff string) string {
	lexer := lexers.Get("diff")
	if lexer == nil {
		return diff
	}
	iterator, err := lexer.Tokenise(nil, diff)
	if err != nil {
		return diff
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.TTY16m

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return diff
	}
	return buf.String()
}
