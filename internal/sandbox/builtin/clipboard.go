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

	"github.com/atotto/clipboard"

	"github.com/loomware/warp/internal/sandbox"
)

// ClipboardTool reads or writes the host OS clipboard. It's a plug-in in
// the spirit of spec.md's Figma/browser/blockchain adapters: a narrow
// capability an agent can use without the sandbox knowing anything about
// how it's implemented on the host.
type ClipboardTool struct{}

func NewClipboardTool() *ClipboardTool { return &ClipboardTool{} }

func (t *ClipboardTool) Name() string        { return "clipboard" }
func (t *ClipboardTool) Description() string { return "Reads the current clipboard contents, or writes text to the clipboard." }
func (t *ClipboardTool) Backend() sandbox.Backend { return sandbox.BackendFilesystem }

func (t *ClipboardTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"action": sandbox.NewStringSchema("read or write.").WithEnum("read", "write"),
		"text":   sandbox.NewStringSchema("Text to write; required when action is \"write\"."),
	}, "action")
}

func (t *ClipboardTool) Capabilities() []sandbox.Capability {
	return []sandbox.Capability{sandbox.CapabilityReadFile, sandbox.CapabilityWriteFile}
}

func (t *ClipboardTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	action, _ := input["action"].(string)
	risk := sandbox.RiskLow
	if action == "write" {
		risk = sandbox.RiskModerate
	}
	return &sandbox.Operation{OperationType: "clipboard_" + action, Target: "clipboard", Risk: risk, Summary: action + " clipboard"}, nil
}

func (t *ClipboardTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	action, _ := input["action"].(string)
	switch action {
	case "read":
		text, err := clipboard.ReadAll()
		if err != nil {
			return nil, &sandbox.Error{Code: "CLIPBOARD_READ_FAILED", Message: err.Error()}
		}
		return &sandbox.Result{Output: text}, nil
	case "write":
		text, _ := input["text"].(string)
		if text == "" {
			return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "text is required for action \"write\""}
		}
		if err := clipboard.WriteAll(text); err != nil {
			return nil, &sandbox.Error{Code: "CLIPBOARD_WRITE_FAILED", Message: err.Error()}
		}
		return &sandbox.Result{Output: "clipboard updated"}, nil
	default:
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "action must be \"read\" or \"write\""}
	}
}
