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
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

// maxGrepMatches bounds the number of matches returned so a broad pattern
// over a large tree can't blow past the LLM's context window.
const maxGrepMatches = 500

// GrepTool searches file contents under a directory for a regular
// expression, similarly to ripgrep but scoped to the sandbox root.
type GrepTool struct {
	WorkDir string
}

func NewGrepTool(workDir string) *GrepTool { return &GrepTool{WorkDir: workDir} }

func (t *GrepTool) Name() string        { return "grep" }
func (t *GrepTool) Description() string { return "Searches file contents under a directory for a regular expression." }
func (t *GrepTool) Backend() sandbox.Backend { return sandbox.BackendSearch }

func (t *GrepTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"pattern": sandbox.NewStringSchema("Regular expression to search for."),
		"path":    sandbox.NewStringSchema("Directory to search under, relative to the working directory (default \".\")."),
		"glob":    sandbox.NewStringSchema("Optional filename glob filter, e.g. \"*.go\"."),
	}, "pattern")
}

func (t *GrepTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	path, _ := input["path"].(string)
	if path == "" {
		path = "."
	}
	return &sandbox.Operation{OperationType: "grep", Target: path, Risk: sandbox.RiskLow, Summary: "search " + path}, nil
}

func (t *GrepTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	patternStr, ok := input["pattern"].(string)
	if !ok || patternStr == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "pattern is required"}
	}
	re, err := regexp.Compile(patternStr)
	if err != nil {
		return nil, &sandbox.Error{Code: "INVALID_PATTERN", Message: err.Error()}
	}

	path, _ := input["path"].(string)
	if path == "" {
		path = "."
	}
	glob, _ := input["glob"].(string)

	clean, err := parser.SanitizePath(t.WorkDir, path)
	if err != nil {
		return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
	}

	var matches []string
	truncated := false
	err = filepath.Walk(clean, func(p string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		if glob != "" {
			if ok, _ := filepath.Match(glob, fi.Name()); !ok {
				return nil
			}
		}
		f, err := os.Open(p)
		if err != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if len(matches) >= maxGrepMatches {
				truncated = true
				return filepath.SkipAll
			}
			line := scanner.Text()
			if re.MatchString(line) {
				rel, _ := filepath.Rel(clean, p)
				matches = append(matches, fmt.Sprintf("%s:%d:%s", rel, lineNo, line))
			}
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return nil, &sandbox.Error{Code: "WALK_FAILED", Message: err.Error()}
	}

	return &sandbox.Result{
		Output:   strings.Join(matches, "\n"),
		Metadata: map[string]interface{}{"match_count": len(matches), "truncated": truncated},
	}, nil
}
