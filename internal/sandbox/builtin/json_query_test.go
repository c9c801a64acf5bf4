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
	"path/filepath"
	"testing"
)

func TestJSONQueryTool_ReadsPath(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"server":{"port":8080},"items":[{"name":"a"},{"name":"b"}]}`), 0o600)
	tool := NewJSONQueryTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"file": "config.json", "path": "server.port"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Output != "8080" {
		t.Errorf("expected 8080, got %q", result.Output)
	}
}

func TestJSONQueryTool_ArrayQuery(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"items":[{"name":"a"},{"name":"b"}]}`), 0o600)
	tool := NewJSONQueryTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"file": "config.json", "path": "items.#.name"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Output != `["a","b"]` {
		t.Errorf("expected [\"a\",\"b\"], got %q", result.Output)
	}
}

func TestJSONQueryTool_PathNotFound(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"a":1}`), 0o600)
	tool := NewJSONQueryTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"file": "config.json", "path": "missing.key"})
	if err == nil {
		t.Fatal("expected error for missing path")
	}
}
