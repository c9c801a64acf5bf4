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

// Package builtin implements the sandbox tools agents get by default:
// file read/write/edit, directory listing, grep, shell execution,
// JSON patching, safe git operations, and RAG search.
package builtin

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

const (
	// MaxFileReadSize caps how much of a file we'll load into memory.
	MaxFileReadSize = 10 * 1024 * 1024
	// DefaultMaxLines caps text output to keep responses out of context bloat.
	DefaultMaxLines = 1000
)

// FileReadTool reads a file from within a working directory, with line
// windowing so a caller can page through large files.
type FileReadTool struct {
	WorkDir string
}

func NewFileReadTool(workDir string) *FileReadTool { return &FileReadTool{WorkDir: workDir} }

func (t *FileReadTool) Name() string        { return "file_read" }
func (t *FileReadTool) Description() string { return "Reads a file's contents, optionally windowed by line range or base64-encoded for binary data." }
func (t *FileReadTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *FileReadTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"path":       sandbox.NewStringSchema("File path to read, relative to the working directory."),
		"encoding":   sandbox.NewStringSchema("text (default) or base64 for binary files.").WithEnum("text", "base64").WithDefault("text"),
		"max_lines":  sandbox.NewNumberSchema("Maximum lines to return (default 1000, 0 = unlimited)."),
		"start_line": sandbox.NewNumberSchema("1-based line to start reading from (default 1)."),
	}, "path")
}

func (t *FileReadTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	path, _ := input["path"].(string)
	return &sandbox.Operation{OperationType: "file_read", Target: path, Risk: sandbox.RiskLow, Summary: "read " + path}, nil
}

func (t *FileReadTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	start := time.Now()
	path, ok := input["path"].(string)
	if !ok || path == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "path is required"}
	}

	clean, err := parser.SanitizePath(t.WorkDir, path)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	info, err := os.Stat(clean)
	if os.IsNotExist(err) {
		return nil, &sandbox.Error{Code: "FILE_NOT_FOUND", Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &sandbox.Error{Code: "STAT_FAILED", Message: err.Error()}
	}
	if info.IsDir() {
		return nil, &sandbox.Error{Code: "IS_DIRECTORY", Message: fmt.Sprintf("path is a directory: %s", path)}
	}
	if info.Size() > MaxFileReadSize {
		return nil, &sandbox.Error{Code: "FILE_TOO_LARGE", Message: fmt.Sprintf("file too large: %d bytes", info.Size())}
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, &sandbox.Error{Code: "READ_FAILED", Message: err.Error()}
	}

	encoding, _ := input["encoding"].(string)
	if encoding == "" {
		encoding = "text"
	}
	maxLines := DefaultMaxLines
	if m, ok := input["max_lines"].(float64); ok {
		maxLines = int(m)
	}
	startLine := 1
	if s, ok := input["start_line"].(float64); ok && s > 0 {
		startLine = int(s)
	}

	var content string
	truncated := false
	if encoding == "base64" {
		content = base64.StdEncoding.EncodeToString(data)
	} else {
		lines := strings.Split(string(data), "\n")
		if startLine > 1 {
			if startLine > len(lines) {
				lines = nil
			} else {
				lines = lines[startLine-1:]
			}
		}
		if maxLines > 0 && len(lines) > maxLines {
			lines = lines[:maxLines]
			truncated = true
		}
		content = strings.Join(lines, "\n")
	}

	return &sandbox.Result{
		Output: content,
		Metadata: map[string]interface{}{
			"path":          clean,
			"size_bytes":    info.Size(),
			"truncated":     truncated,
			"elapsed_ms":    time.Since(start).Milliseconds(),
			"modified_at":   info.ModTime().Format(time.RFC3339),
		},
	}, nil
}
