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
	"os"

	"github.com/tidwall/gjson"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

// JSONQueryTool reads a value out of a JSON file by gjson dotted path,
// the read-side counterpart to JSONPatchTool's sjson-based writes: both
// tools address the same document shape with the same path syntax, so an
// agent only has to learn one notation for JSON access.
type JSONQueryTool struct {
	WorkDir string
}

func NewJSONQueryTool(workDir string) *JSONQueryTool { return &JSONQueryTool{WorkDir: workDir} }

func (t *JSONQueryTool) Name() string        { return "json_query" }
func (t *JSONQueryTool) Description() string { return "Reads a value from a JSON file by gjson dotted path, e.g. \"server.port\" or \"items.#.name\"." }
func (t *JSONQueryTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *JSONQueryTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"file": sandbox.NewStringSchema("JSON file to read, relative to the working directory."),
		"path": sandbox.NewStringSchema("gjson dotted path to extract."),
	}, "file", "path")
}

func (t *JSONQueryTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	file, _ := input["file"].(string)
	return &sandbox.Operation{OperationType: "json_query", Target: file, Risk: sandbox.RiskLow, Summary: "query " + file}, nil
}

func (t *JSONQueryTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	file, ok := input["file"].(string)
	if !ok || file == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "file is required"}
	}
	path, ok := input["path"].(string)
	if !ok || path == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "path is required"}
	}

	clean, err := parser.SanitizePath(t.WorkDir, file)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, &sandbox.Error{Code: "FILE_NOT_FOUND", Message: err.Error()}
	}

	result := gjson.GetBytes(data, path)
	if !result.Exists() {
		return nil, &sandbox.Error{Code: "PATH_NOT_FOUND", Message: "no value at path " + path}
	}

	return &sandbox.Result{
		Output: result.Raw,
		Metadata: map[string]interface{}{
			"path":      clean,
			"query":     path,
			"value_type": result.Type.String(),
		},
	}, nil
}
