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

func TestDirectoryListTool_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o600)
	os.Mkdir(filepath.Join(dir, "sub"), 0o750)
	tool := NewDirectoryListTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Output, "a.txt") || !strings.Contains(result.Output, "sub/") {
		t.Errorf("unexpected listing: %q", result.Output)
	}
}

func TestDirectoryListTool_Recursive(t *testing.T) {
	dir := t.TempDir()
	os.Mkdir(filepath.Join(dir, "sub"), 0o750)
	os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("x"), 0o600)
	tool := NewDirectoryListTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"recursive": true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Output, filepath.Join("sub", "b.txt")) {
		t.Errorf("expected nested file in recursive listing: %q", result.Output)
	}
}
