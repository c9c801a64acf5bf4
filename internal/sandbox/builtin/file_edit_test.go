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

func TestFileEditTool_ExactReplace(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("func Foo() {\n\treturn\n}\n"), 0o600)
	tool := NewFileEditTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "a.go",
		"edits": []interface{}{
			map[string]interface{}{"old_string": "func Foo()", "new_string": "func Bar()"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "a.go"))
	if string(data) != "func Bar() {\n\treturn\n}\n" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestFileEditTool_MultiEditRollsBackOnFailure(t *testing.T) {
	dir := t.TempDir()
	original := "alpha\nbeta\ngamma\n"
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte(original), 0o600)
	tool := NewFileEditTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "a.txt",
		"edits": []interface{}{
			map[string]interface{}{"old_string": "alpha", "new_string": "ALPHA"},
			map[string]interface{}{"old_string": "does-not-exist-anywhere", "new_string": "x"},
		},
	})
	if err == nil {
		t.Fatal("expected the batch to fail on the second edit")
	}

	data, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(data) != original {
		t.Errorf("expected file untouched after rollback, got %q", data)
	}
}

func TestFileEditTool_FuzzyMatchFallback(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("func Foo()  {\n    return\n}\n"), 0o600)
	tool := NewFileEditTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"path": "a.go",
		"edits": []interface{}{
			map[string]interface{}{"old_string": "func Foo() {\n\treturn\n}", "new_string": "func Bar() {\n\treturn\n}"},
		},
	})
	if err != nil {
		t.Fatalf("expected fuzzy match to find the near-identical block: %v", err)
	}
}
