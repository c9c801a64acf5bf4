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

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

// fuzzyMatchThreshold is the minimum fuzzy score (out of len(pattern)*2,
// roughly) an edit's old_string must reach against a line window before
// FileEditTool accepts it as the edit site.
const fuzzyMatchThreshold = 0.6

// FileEditTool applies one or more find/replace edits to a file in a
// single transaction: all edits are applied in order to an in-memory copy,
// and the file is written only once every edit has succeeded, so a failing
// edit leaves the file exactly as it was found.
type FileEditTool struct {
	WorkDir string
}

func NewFileEditTool(workDir string) *FileEditTool { return &FileEditTool{WorkDir: workDir} }

func (t *FileEditTool) Name() string        { return "file_edit" }
func (t *FileEditTool) Description() string { return "Applies one or more exact or fuzzy-matched find/replace edits to a file transactionally." }
func (t *FileEditTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *FileEditTool) InputSchema() *sandbox.JSONSchema {
	editSchema := sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"old_string": sandbox.NewStringSchema("Text to find. Matched exactly first, then fuzzily if no exact match exists."),
		"new_string": sandbox.NewStringSchema("Replacement text."),
	}, "old_string", "new_string")
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"path":  sandbox.NewStringSchema("File path to edit, relative to the working directory."),
		"edits": sandbox.NewArraySchema(editSchema, "Ordered list of edits to apply."),
	}, "path", "edits")
}

func (t *FileEditTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	path, _ := input["path"].(string)
	return &sandbox.Operation{OperationType: "file_edit", Target: path, Risk: sandbox.RiskModerate, Summary: "edit " + path}, nil
}

type fileEdit struct {
	Old string
	New string
}

func (t *FileEditTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	path, ok := input["path"].(string)
	if !ok || path == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "path is required"}
	}
	rawEdits, ok := input["edits"].([]interface{})
	if !ok || len(rawEdits) == 0 {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "edits must be a non-empty array"}
	}

	edits := make([]fileEdit, 0, len(rawEdits))
	for _, re := range rawEdits {
		m, ok := re.(map[string]interface{})
		if !ok {
			return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "each edit must be an object"}
		}
		old, _ := m["old_string"].(string)
		newS, _ := m["new_string"].(string)
		if old == "" {
			return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "old_string must not be empty"}
		}
		edits = append(edits, fileEdit{Old: old, New: newS})
	}

	clean, err := parser.SanitizePath(t.WorkDir, path)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, &sandbox.Error{Code: "FILE_NOT_FOUND", Message: err.Error()}
	}
	original := string(data)
	current := original

	applied := make([]string, 0, len(edits))
	for i, e := range edits {
		next, err := applyEdit(current, e)
		if err != nil {
			return nil, &sandbox.Error{
				Code:    "EDIT_FAILED",
				Message: fmt.Sprintf("edit %d: %v (rolled back %d prior edit(s))", i, err, len(applied)),
			}
		}
		current = next
		applied = append(applied, e.Old)
	}

	tmp := clean + ".tmp"
	if err := os.WriteFile(tmp, []byte(current), 0o600); err != nil {
		return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
	}
	if err := os.Rename(tmp, clean); err != nil {
		os.Remove(tmp)
		return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
	}

	return &sandbox.Result{
		Output: fmt.Sprintf("applied %d edit(s) to %s", len(edits), clean),
		Diff:   unifiedLineDiff(original, current),
		Metadata: map[string]interface{}{
			"path":        clean,
			"edits_count": len(edits),
			"at":          time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// applyEdit replaces the first occurrence of e.Old in content, falling
// back to a fuzzy line-window match when no exact occurrence exists.
func applyEdit(content string, e fileEdit) (string, error) {
	if idx := strings.Index(content, e.Old); idx >= 0 {
		return content[:idx] + e.New + content[idx+len(e.Old):], nil
	}

	window, start, end, ok := fuzzyFindWindow(content, e.Old)
	if !ok {
		return "", fmt.Errorf("no exact or fuzzy match found for %q", truncateForError(e.Old))
	}
	_ = window
	return content[:start] + e.New + content[end:], nil
}

// fuzzyFindWindow slides a window of pattern's line count over content's
// lines and returns the best-scoring window via sahilm/fuzzy, provided it
// clears fuzzyMatchThreshold.
func fuzzyFindWindow(content, pattern string) (window string, start, end int, ok bool) {
	patternLines := strings.Split(pattern, "\n")
	n := len(patternLines)

	contentLines := strings.Split(content, "\n")
	if len(contentLines) < n {
		return "", 0, 0, false
	}

	candidates := make([]string, 0, len(contentLines)-n+1)
	offsets := make([]int, 0, len(contentLines)-n+1)
	offset := 0
	lineStarts := make([]int, len(contentLines))
	for i, l := range contentLines {
		lineStarts[i] = offset
		offset += len(l) + 1
	}
	for i := 0; i+n <= len(contentLines); i++ {
		candidates = append(candidates, strings.Join(contentLines[i:i+n], "\n"))
		offsets = append(offsets, lineStarts[i])
	}

	matches := fuzzy.Find(pattern, candidates)
	if len(matches) == 0 {
		return "", 0, 0, false
	}
	best := matches[0]
	maxScore := len(pattern) * 2
	if maxScore == 0 || float64(best.Score)/float64(maxScore) < fuzzyMatchThreshold {
		return "", 0, 0, false
	}

	start = offsets[best.Index]
	end = start + len(candidates[best.Index])
	return candidates[best.Index], start, end, true
}

func truncateForError(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
