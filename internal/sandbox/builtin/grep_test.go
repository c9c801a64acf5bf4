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

func TestGrepTool_FindsMatch(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\n\nfunc TODO() {}\n"), 0o600)
	tool := NewGrepTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "TODO"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Output, "a.go:3:") {
		t.Errorf("unexpected output: %q", result.Output)
	}
}

func TestGrepTool_GlobFilter(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.go"), []byte("needle\n"), 0o600)
	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("needle\n"), 0o600)
	tool := NewGrepTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "needle", "glob": "*.go"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(result.Output, "a.txt") {
		t.Errorf("glob filter should have excluded a.txt: %q", result.Output)
	}
}

func TestGrepTool_InvalidPattern(t *testing.T) {
	dir := t.TempDir()
	tool := NewGrepTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "("})
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
}
