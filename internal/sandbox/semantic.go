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

// Hit is a single ranked result from a semantic search.
type Hit struct {
	Source string
	Text   string
	Score  float64
}

// SemanticSearcher is the boundary between the RAG-search tool and
// whatever vector store backs it. Implementations are expected to lazily
// and idempotently initialize themselves on first call rather than at
// construction, since the store may not be ready yet when the tool is
// registered.
type SemanticSearcher interface {
	SemanticSearch(ctx context.Context, query string, topK int) ([]Hit, error)
}
