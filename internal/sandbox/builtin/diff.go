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
package builtin

import "github.com/sergi/go-diff/diffmatchpatch"

// unifiedLineDiff renders a human-readable diff between before and after,
// line-aware via diffmatchpatch's line-mode preprocessing so the output
// reads like a normal text diff instead of a character-level one.
func unifiedLineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	wSrc, wDst, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(wSrc, wDst, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	return dmp.DiffPrettyText(diffs)
}
