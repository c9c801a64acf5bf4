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
package safety

import "testing"

func TestPreflightCommand_CriticalPattern(t *testing.T) {
	r := PreflightCommand(CommandInput{Tool: "shell-execute", OpType: "execute", Command: "rm -rf /tmp/x"})
	if r.RiskLevel != RiskCritical {
		t.Fatalf("expected critical, got %v", r.RiskLevel)
	}
	if len(r.Reasons) == 0 {
		t.Fatal("expected a reason")
	}
}

func TestPreflightCommand_MediumPattern(t *testing.T) {
	r := PreflightCommand(CommandInput{Tool: "shell-execute", OpType: "execute", Command: "npm install lodash"})
	if r.RiskLevel != RiskMedium {
		t.Fatalf("expected medium, got %v", r.RiskLevel)
	}
}

func TestPreflightCommand_HighPattern(t *testing.T) {
	r := PreflightCommand(CommandInput{Tool: "shell-execute", OpType: "execute", Command: "sudo rm file"})
	if r.RiskLevel != RiskHigh {
		t.Fatalf("expected high, got %v", r.RiskLevel)
	}
}

func TestPreflightCommand_NeverDeescalates(t *testing.T) {
	r := PreflightCommand(CommandInput{Tool: "shell-execute", OpType: "execute", Command: "rm -rf / && sudo reboot"})
	if r.RiskLevel != RiskCritical {
		t.Fatalf("expected critical to win over high, got %v", r.RiskLevel)
	}
}

func TestPreflightCommand_PathTraversalEscalatesFromLow(t *testing.T) {
	r := PreflightCommand(CommandInput{Tool: "file-read", OpType: "read", Command: "cat ../../etc/passwd"})
	if r.RiskLevel != RiskMedium {
		t.Fatalf("expected medium, got %v", r.RiskLevel)
	}
}

func TestPreflightFiles_GitPath(t *testing.T) {
	r := PreflightFiles(FilesInput{Tool: "file-write", OpType: "write", Paths: []string{".git/config"}})
	if r.RiskLevel != RiskHigh {
		t.Fatalf("expected high, got %v", r.RiskLevel)
	}
}

func TestPreflightFiles_DotEnv(t *testing.T) {
	r := PreflightFiles(FilesInput{Tool: "file-read", OpType: "read", Paths: []string{"config/.env.production"}})
	if r.RiskLevel != RiskMedium {
		t.Fatalf("expected medium, got %v", r.RiskLevel)
	}
}

func TestPreflightFiles_LargeBatch(t *testing.T) {
	paths := make([]string, 21)
	for i := range paths {
		paths[i] = "file.txt"
	}
	r := PreflightFiles(FilesInput{Tool: "file-read", OpType: "read", Paths: paths})
	if r.RiskLevel != RiskMedium {
		t.Fatalf("expected medium for batch > 20, got %v", r.RiskLevel)
	}
}

func TestPreflightFiles_SmallBatchStaysLow(t *testing.T) {
	r := PreflightFiles(FilesInput{Tool: "file-read", OpType: "read", Paths: []string{"a.txt", "b.txt"}})
	if r.RiskLevel != RiskLow {
		t.Fatalf("expected low, got %v", r.RiskLevel)
	}
}
