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

func TestFileWriteTool_ContentSizeLimit(t *testing.T) {
	dir := t.TempDir()
	tool := NewFileWriteTool(dir)

	t.Run("within limit succeeds", func(t *testing.T) {
		content := strings.Repeat("a", 40*1024)
		result, err := tool.Execute(context.Background(), map[string]interface{}{"path": "test.txt", "content": content, "mode": "create"})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		data, err := os.ReadFile(filepath.Join(dir, "test.txt"))
		if err != nil {
			t.Fatal(err)
		}
		if len(data) != 40*1024 {
			t.Errorf("expected 40KB file, got %d bytes", len(data))
		}
		_ = result
	})

	t.Run("exceeding limit fails", func(t *testing.T) {
		content := strings.Repeat("a", 60*1024)
		_, err := tool.Execute(context.Background(), map[string]interface{}{"path": "large.txt", "content": content, "mode": "create"})
		if err == nil {
			t.Fatal("expected error for content exceeding limit")
		}
	})
}

func TestFileWriteTool_CreateModeFailsIfExists(t *testing.T) {
	dir := t.TempDir()
	tool := NewFileWriteTool(dir)

	if _, err := tool.Execute(context.Background(), map[string]interface{}{"path": "a.txt", "content": "v1", "mode": "create"}); err != nil {
		t.Fatal(err)
	}
	_, err := tool.Execute(context.Background(), map[string]interface{}{"path": "a.txt", "content": "v2", "mode": "create"})
	if err == nil {
		t.Fatal("expected FILE_EXISTS error on second create")
	}
}

func TestFileWriteTool_OverwriteBacksUpPrevious(t *testing.T) {
	dir := t.TempDir()
	tool := NewFileWriteTool(dir)

	if _, err := tool.Execute(context.Background(), map[string]interface{}{"path": "a.txt", "content": "v1", "mode": "create"}); err != nil {
		t.Fatal(err)
	}
	result, err := tool.Execute(context.Background(), map[string]interface{}{"path": "a.txt", "content": "v2", "mode": "overwrite"})
	if err != nil {
		t.Fatal(err)
	}
	backup, _ := result.Metadata["backup_path"].(string)
	if backup == "" {
		t.Fatal("expected a backup_path to be recorded")
	}
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("expected backup file to exist: %v", err)
	}
	if string(data) != "v1" {
		t.Errorf("expected backup to contain v1, got %q", data)
	}
}

func TestFileWriteTool_AppendMode(t *testing.T) {
	dir := t.TempDir()
	tool := NewFileWriteTool(dir)

	tool.Execute(context.Background(), map[string]interface{}{"path": "a.txt", "content": "v1", "mode": "create"})
	tool.Execute(context.Background(), map[string]interface{}{"path": "a.txt", "content": "v2", "mode": "append"})

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v1v2" {
		t.Errorf("expected appended content, got %q", data)
	}
}
