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
	"strings"
	"testing"
	"time"
)

func TestShellExecuteTool_Basic(t *testing.T) {
	dir := t.TempDir()
	tool := NewShellExecuteTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"command": "echo hello"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(result.Output) != "hello" {
		t.Errorf("unexpected output: %q", result.Output)
	}
	if code, _ := result.Metadata["exit_code"].(int); code != 0 {
		t.Errorf("expected exit code 0, got %v", code)
	}
}

func TestShellExecuteTool_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	tool := NewShellExecuteTool(dir)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"command": "exit 3"})
	if err != nil {
		t.Fatal(err)
	}
	if code, _ := result.Metadata["exit_code"].(int); code != 3 {
		t.Errorf("expected exit code 3, got %v", code)
	}
}

func TestShellExecuteTool_Timeout(t *testing.T) {
	dir := t.TempDir()
	tool := NewShellExecuteTool(dir)

	start := time.Now()
	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"command":         "sleep 5",
		"timeout_seconds": float64(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("expected timeout to cut execution short, took %v", elapsed)
	}
	if timedOut, _ := result.Metadata["timed_out"].(bool); !timedOut {
		t.Error("expected timed_out=true in metadata")
	}
}

func TestShellExecuteTool_RequiresCommand(t *testing.T) {
	dir := t.TempDir()
	tool := NewShellExecuteTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{})
	if err == nil {
		t.Fatal("expected error when command is missing")
	}
}
