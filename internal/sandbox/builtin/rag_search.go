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
	"fmt"
	"strings"

	"github.com/loomware/warp/internal/sandbox"
)

// DefaultTopK is how many hits RAGSearchTool asks for when the caller
// doesn't specify one.
const DefaultTopK = 5

// RAGSearchTool answers a query against an injected vector store. The
// store itself is out of scope here: Searcher is called lazily, and any
// initialization it needs to do on first use is its own concern.
type RAGSearchTool struct {
	Searcher sandbox.SemanticSearcher
}

func NewRAGSearchTool(searcher sandbox.SemanticSearcher) *RAGSearchTool {
	return &RAGSearchTool{Searcher: searcher}
}

func (t *RAGSearchTool) Name() string        { return "rag_search" }
func (t *RAGSearchTool) Description() string { return "Searches an indexed knowledge base for passages relevant to a query." }
func (t *RAGSearchTool) Backend() sandbox.Backend { return sandbox.BackendSearch }

func (t *RAGSearchTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"query": sandbox.NewStringSchema("Natural-language query to search for."),
		"top_k": sandbox.NewNumberSchema("Number of results to return (default 5)."),
	}, "query")
}

func (t *RAGSearchTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	query, _ := input["query"].(string)
	return &sandbox.Operation{OperationType: "rag_search", Target: query, Risk: sandbox.RiskLow, Summary: "search knowledge base for " + query}, nil
}

func (t *RAGSearchTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	query, ok := input["query"].(string)
	if !ok || query == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "query is required"}
	}
	if t.Searcher == nil {
		return nil, &sandbox.Error{Code: "NOT_CONFIGURED", Message: "no semantic search backend is configured"}
	}

	topK := DefaultTopK
	if k, ok := input["top_k"].(float64); ok && k > 0 {
		topK = int(k)
	}

	hits, err := t.Searcher.SemanticSearch(ctx, query, topK)
	if err != nil {
		return nil, &sandbox.Error{Code: "SEARCH_FAILED", Message: err.Error()}
	}

	var sb strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&sb, "[%d] %s (score %.3f)\n%s\n\n", i+1, h.Source, h.Score, h.Text)
	}

	results := make([]map[string]interface{}, len(hits))
	for i, h := range hits {
		results[i] = map[string]interface{}{"source": h.Source, "score": h.Score}
	}

	return &sandbox.Result{
		Output:   sb.String(),
		Metadata: map[string]interface{}{"hit_count": len(hits), "results": results},
	}, nil
}
