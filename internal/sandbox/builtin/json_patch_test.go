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
	"strings"
	"testing"
)

func TestJSONPatchTool_SetAndDelete(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"server":{"port":8080},"debug":true}`), 0o600)
	tool := NewJSONPatchTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"file": "config.json",
		"operations": []interface{}{
			map[string]interface{}{"path": "server.port", "value": "9090", "op": "set"},
			map[string]interface{}{"path": "debug", "op": "delete"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "config.json"))
	if !strings.Contains(string(data), `"port":9090`) {
		t.Errorf("expected port updated, got %q", data)
	}
	if strings.Contains(string(data), "debug") {
		t.Errorf("expected debug key removed, got %q", data)
	}
}

func TestJSONPatchTool_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`not json`), 0o600)
	tool := NewJSONPatchTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"file":       "bad.json",
		"operations": []interface{}{map[string]interface{}{"path": "a", "value": "1"}},
	})
	if err == nil {
		t.Fatal("expected error for invalid JSON target")
	}
}
