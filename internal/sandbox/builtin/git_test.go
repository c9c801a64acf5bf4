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
	"testing"
)

func TestGitTool_RejectsDisallowedSubcommand(t *testing.T) {
	dir := t.TempDir()
	tool := NewGitTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"subcommand": "push"})
	if err == nil {
		t.Fatal("expected push to be rejected")
	}
}

func TestGitTool_RejectsDangerousFlag(t *testing.T) {
	dir := t.TempDir()
	tool := NewGitTool(dir)

	_, err := tool.Execute(context.Background(), map[string]interface{}{
		"subcommand": "add",
		"args":       []interface{}{"--force"},
	})
	if err == nil {
		t.Fatal("expected --force to be rejected")
	}
}

func TestGitTool_PreflightRisk(t *testing.T) {
	tool := NewGitTool(t.TempDir())

	op, err := tool.Preflight(map[string]interface{}{"subcommand": "commit"})
	if err != nil {
		t.Fatal(err)
	}
	if op.Risk == "" {
		t.Fatal("expected a risk classification")
	}
}
