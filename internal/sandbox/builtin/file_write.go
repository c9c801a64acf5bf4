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
	"path/filepath"
	"time"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

// MaxSafeContentSize keeps a single write within typical LLM output limits.
const MaxSafeContentSize = 50 * 1024

// FileWriteTool writes a file atomically: it stages into a temp file in the
// same directory, backs up any existing file with a timestamp suffix, then
// renames the temp file into place, so a crash mid-write never leaves a
// half-written file at the target path.
type FileWriteTool struct {
	WorkDir string
}

func NewFileWriteTool(workDir string) *FileWriteTool { return &FileWriteTool{WorkDir: workDir} }

func (t *FileWriteTool) Name() string        { return "file_write" }
func (t *FileWriteTool) Description() string { return "Writes content to a file atomically, creating parent directories and backing up any existing file." }
func (t *FileWriteTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *FileWriteTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"path":    sandbox.NewStringSchema("File path to write, relative to the working directory."),
		"content": sandbox.NewStringSchema("Content to write. Max 50KB per call."),
		"mode":    sandbox.NewStringSchema("create (fail if exists), overwrite, or append.").WithEnum("create", "overwrite", "append").WithDefault("create"),
	}, "path", "content")
}

func (t *FileWriteTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	path, _ := input["path"].(string)
	return &sandbox.Operation{OperationType: "file_write", Target: path, Risk: sandbox.RiskModerate, Summary: "write " + path}, nil
}

func (t *FileWriteTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	path, ok := input["path"].(string)
	if !ok || path == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "path is required"}
	}
	content, ok := input["content"].(string)
	if !ok {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "content is required"}
	}
	if len(content) > MaxSafeContentSize {
		return nil, &sandbox.Error{Code: "CONTENT_TOO_LARGE", Message: fmt.Sprintf("content exceeds %d byte limit", MaxSafeContentSize)}
	}

	mode, _ := input["mode"].(string)
	if mode == "" {
		mode = "create"
	}

	clean, err := parser.SanitizePath(t.WorkDir, path)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	existing, statErr := os.Stat(clean)
	fileExists := statErr == nil
	if fileExists && mode == "create" {
		return nil, &sandbox.Error{Code: "FILE_EXISTS", Message: fmt.Sprintf("file already exists: %s", path)}
	}

	if err := os.MkdirAll(filepath.Dir(clean), 0o750); err != nil {
		return nil, &sandbox.Error{Code: "MKDIR_FAILED", Message: err.Error()}
	}

	var before []byte
	backupPath := ""
	if fileExists && mode != "append" {
		before, _ = os.ReadFile(clean)
		backupPath = fmt.Sprintf("%s.bak.%d", clean, existing.ModTime().UnixNano())
		if err := os.WriteFile(backupPath, before, 0o600); err != nil {
			backupPath = ""
		}
	}

	var bytesWritten int
	if mode == "append" {
		f, err := os.OpenFile(clean, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
		}
		n, err := f.WriteString(content)
		f.Close()
		if err != nil {
			return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
		}
		bytesWritten = n
	} else {
		tmp := clean + ".tmp"
		if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
			return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
		}
		if err := os.Rename(tmp, clean); err != nil {
			os.Remove(tmp)
			return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
		}
		bytesWritten = len(content)
	}

	diff := ""
	if fileExists {
		diff = unifiedLineDiff(string(before), content)
	}

	return &sandbox.Result{
		Output: fmt.Sprintf("wrote %d bytes to %s", bytesWritten, clean),
		Diff:   diff,
		Metadata: map[string]interface{}{
			"path":          clean,
			"bytes_written": bytesWritten,
			"mode":          mode,
			"created":       !fileExists,
			"backup_path":   backupPath,
			"at":            time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
