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
package parser

import "testing"

func TestParseCommand_Basic(t *testing.T) {
	args, err := ParseCommand("python script.py")
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 2 || args[0] != "python" || args[1] != "script.py" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestParseCommand_Quoting(t *testing.T) {
	args, err := ParseCommand(`echo "hello world"`)
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 2 || args[1] != "hello world" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestParseCommand_EscapedQuote(t *testing.T) {
	args, err := ParseCommand(`python -c 'print(\"hello\")'`)
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 3 || args[2] != `print("hello")` {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestParseCommand_UnclosedQuote(t *testing.T) {
	_, err := ParseCommand(`echo "unterminated`)
	if err == nil {
		t.Fatal("expected error for unclosed quote")
	}
}

func TestParseCommand_Empty(t *testing.T) {
	_, err := ParseCommand("   ")
	if err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestSanitizePath_WithinRoot(t *testing.T) {
	p, err := SanitizePath("/work", "sub/file.txt")
	if err != nil {
		t.Fatal(err)
	}
	if p != "/work/sub/file.txt" {
		t.Fatalf("unexpected path: %s", p)
	}
}

func TestSanitizePath_TraversalRejected(t *testing.T) {
	_, err := SanitizePath("/work", "../outside.txt")
	if err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

func TestSanitizePath_AbsoluteOutsideRejected(t *testing.T) {
	_, err := SanitizePath("/work", "/etc/passwd")
	if err == nil {
		t.Fatal("expected absolute escape to be rejected")
	}
}

func TestSanitizePaths_AllOrNothing(t *testing.T) {
	_, err := SanitizePaths("/work", []string{"a.txt", "../b.txt"})
	if err == nil {
		t.Fatal("expected batch to fail on the traversal entry")
	}
}
