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
package sandbox

import "context"

// MockTool is a configurable Tool stub for use in tests across packages
// that depend on sandbox.Tool without wanting a real filesystem/shell tool.
type MockTool struct {
	MockName        string
	MockDescription string
	MockSchema      *JSONSchema
	MockBackend     Backend
	MockResult      *Result
	MockErr         error
}

func (m *MockTool) Name() string             { return m.MockName }
func (m *MockTool) Description() string      { return m.MockDescription }
func (m *MockTool) InputSchema() *JSONSchema { return m.MockSchema }
func (m *MockTool) Backend() Backend         { return m.MockBackend }

func (m *MockTool) Execute(ctx context.Context, input map[string]interface{}) (*Result, error) {
	if m.MockErr != nil {
		return nil, m.MockErr
	}
	if m.MockResult != nil {
		return m.MockResult, nil
	}
	return &Result{Output: "mock result"}, nil
}
