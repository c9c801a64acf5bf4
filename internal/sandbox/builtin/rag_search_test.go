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

	"github.com/loomware/warp/internal/sandbox"
)

type fakeSearcher struct {
	hits []sandbox.Hit
	err  error
}

func (f *fakeSearcher) SemanticSearch(ctx context.Context, query string, topK int) ([]sandbox.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.hits) {
		return f.hits[:topK], nil
	}
	return f.hits, nil
}

func TestRAGSearchTool_ReturnsHits(t *testing.T) {
	searcher := &fakeSearcher{hits: []sandbox.Hit{{Source: "doc1", Text: "relevant passage", Score: 0.9}}}
	tool := NewRAGSearchTool(searcher)

	result, err := tool.Execute(context.Background(), map[string]interface{}{"query": "what is warp"})
	if err != nil {
		t.Fatal(err)
	}
	if count, _ := result.Metadata["hit_count"].(int); count != 1 {
		t.Errorf("expected 1 hit, got %v", count)
	}
}

func TestRAGSearchTool_NoBackendConfigured(t *testing.T) {
	tool := NewRAGSearchTool(nil)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": "x"})
	if err == nil {
		t.Fatal("expected error when no searcher is configured")
	}
}

func TestRAGSearchTool_SearchFailureSurfacesAsError(t *testing.T) {
	searcher := &fakeSearcher{err: context.DeadlineExceeded}
	tool := NewRAGSearchTool(searcher)

	_, err := tool.Execute(context.Background(), map[string]interface{}{"query": "x"})
	if err == nil {
		t.Fatal("expected search failure to surface as an error, not a panic")
	}
}
