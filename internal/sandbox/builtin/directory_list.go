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
	"sort"
	"strings"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

// DirectoryListTool lists the contents of a directory, optionally
// recursing.
type DirectoryListTool struct {
	WorkDir string
}

func NewDirectoryListTool(workDir string) *DirectoryListTool { return &DirectoryListTool{WorkDir: workDir} }

func (t *DirectoryListTool) Name() string        { return "directory_list" }
func (t *DirectoryListTool) Description() string { return "Lists files and subdirectories under a path, optionally recursively." }
func (t *DirectoryListTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *DirectoryListTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"path":      sandbox.NewStringSchema("Directory to list, relative to the working directory (default: \".\")."),
		"recursive": sandbox.NewBooleanSchema("Recurse into subdirectories (default: false)."),
	})
}

func (t *DirectoryListTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	path, _ := input["path"].(string)
	if path == "" {
		path = "."
	}
	return &sandbox.Operation{OperationType: "directory_list", Target: path, Risk: sandbox.RiskLow, Summary: "list " + path}, nil
}

func (t *DirectoryListTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	path, _ := input["path"].(string)
	if path == "" {
		path = "."
	}
	recursive, _ := input["recursive"].(bool)

	clean, err := parser.SanitizePath(t.WorkDir, path)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	info, err := os.Stat(clean)
	if err != nil {
		return nil, &sandbox.Error{Code: "NOT_FOUND", Message: err.Error()}
	}
	if !info.IsDir() {
		return nil, &sandbox.Error{Code: "NOT_A_DIRECTORY", Message: fmt.Sprintf("%s is not a directory", path)}
	}

	var entries []string
	if recursive {
		err = filepath.Walk(clean, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if p == clean {
				return nil
			}
			rel, _ := filepath.Rel(clean, p)
			if fi.IsDir() {
				entries = append(entries, rel+"/")
			} else {
				entries = append(entries, rel)
			}
			return nil
		})
		if err != nil {
			return nil, &sandbox.Error{Code: "WALK_FAILED", Message: err.Error()}
		}
	} else {
		dirEntries, err := os.ReadDir(clean)
		if err != nil {
			return nil, &sandbox.Error{Code: "READ_FAILED", Message: err.Error()}
		}
		for _, de := range dirEntries {
			if de.IsDir() {
				entries = append(entries, de.Name()+"/")
			} else {
				entries = append(entries, de.Name())
			}
		}
	}
	sort.Strings(entries)

	return &sandbox.Result{
		Output:   strings.Join(entries, "\n"),
		Metadata: map[string]interface{}{"path": clean, "count": len(entries), "recursive": recursive},
	}, nil
}
