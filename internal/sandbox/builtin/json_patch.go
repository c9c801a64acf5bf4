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
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/sjson"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

// JSONPatchTool applies a set of path/value operations to a JSON file
// using gjson/sjson path syntax rather than a full RFC 6902 patch
// document, matching how the rest of the sandbox tools address JSON
// structures elsewhere in the module.
type JSONPatchTool struct {
	WorkDir string
}

func NewJSONPatchTool(workDir string) *JSONPatchTool { return &JSONPatchTool{WorkDir: workDir} }

func (t *JSONPatchTool) Name() string        { return "json_patch" }
func (t *JSONPatchTool) Description() string { return "Applies path/value set operations to a JSON file." }
func (t *JSONPatchTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *JSONPatchTool) InputSchema() *sandbox.JSONSchema {
	opSchema := sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"path":  sandbox.NewStringSchema("gjson/sjson dotted path within the document, e.g. \"server.port\"."),
		"value": sandbox.NewStringSchema("JSON-encoded value to set at path."),
		"op":    sandbox.NewStringSchema("set or delete.").WithEnum("set", "delete").WithDefault("set"),
	}, "path")
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"file":       sandbox.NewStringSchema("JSON file to patch, relative to the working directory."),
		"operations": sandbox.NewArraySchema(opSchema, "Ordered list of patch operations."),
	}, "file", "operations")
}

func (t *JSONPatchTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	file, _ := input["file"].(string)
	return &sandbox.Operation{OperationType: "json_patch", Target: file, Risk: sandbox.RiskModerate, Summary: "patch " + file}, nil
}

func (t *JSONPatchTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	file, ok := input["file"].(string)
	if !ok || file == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "file is required"}
	}
	rawOps, ok := input["operations"].([]interface{})
	if !ok || len(rawOps) == 0 {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "operations must be a non-empty array"}
	}

	clean, err := parser.SanitizePath(t.WorkDir, file)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, &sandbox.Error{Code: "FILE_NOT_FOUND", Message: err.Error()}
	}
	if !json.Valid(data) {
		return nil, &sandbox.Error{Code: "INVALID_JSON", Message: "target file is not valid JSON"}
	}

	doc := string(data)
	applied := 0
	for _, ro := range rawOps {
		m, ok := ro.(map[string]interface{})
		if !ok {
			return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "each operation must be an object"}
		}
		path, _ := m["path"].(string)
		if path == "" {
			return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "operation path is required"}
		}
		op, _ := m["op"].(string)
		if op == "" {
			op = "set"
		}

		var next string
		if op == "delete" {
			next, err = sjson.Delete(doc, path)
		} else {
			valueStr, _ := m["value"].(string)
			var v interface{}
			if err := json.Unmarshal([]byte(valueStr), &v); err != nil {
				return nil, &sandbox.Error{Code: "INVALID_VALUE", Message: fmt.Sprintf("value at %s is not valid JSON: %v", path, err)}
			}
			next, err = sjson.Set(doc, path, v)
		}
		if err != nil {
			return nil, &sandbox.Error{Code: "PATCH_FAILED", Message: err.Error()}
		}
		doc = next
		applied++
	}

	tmp := clean + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0o600); err != nil {
		return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
	}
	if err := os.Rename(tmp, clean); err != nil {
		os.Remove(tmp)
		return nil, &sandbox.Error{Code: "WRITE_FAILED", Message: err.Error()}
	}

	return &sandbox.Result{
		Output:   fmt.Sprintf("applied %d operation(s) to %s", applied, clean),
		Diff:     unifiedLineDiff(string(data), doc),
		Metadata: map[string]interface{}{"path": clean, "operations_applied": applied},
	}, nil
}
