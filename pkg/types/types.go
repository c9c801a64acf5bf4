// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package types contains the wire-level types shared between the LLM
// provider boundary (pkg/llm) and the orchestrator, kept separate from
// internal/message's transcript Message (which tracks kind/status/
// progress for the whole turn, not just what goes over the wire to a
// provider).
package types

import (
	"context"
	"time"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/pkg/observability"
)

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// ContentBlock is a piece of content in a multi-modal message: text or
// image.
type ContentBlock struct {
	Type  string // "text" or "image"
	Text  string
	Image *ImageContent
}

// ImageContent represents an image attached to a message.
type ImageContent struct {
	Type   string
	Source ImageSource
}

// ImageSource holds the actual image bytes or a reference to them.
type ImageSource struct {
	Type      string // "base64" or "url"
	MediaType string // e.g. "image/png"
	Data      string
	URL       string
}

// Message is the wire-level message sent to and received from an LLM
// provider. Role is one of "system", "user", "assistant", "tool".
type Message struct {
	Role          string
	Content       string
	ContentBlocks []ContentBlock
	ToolCalls     []ToolCall
	ToolUseID     string
	ToolResult    *sandbox.Result
	Timestamp     time.Time
	TokenCount    int
	CostUSD       float64
}

// Usage tracks LLM token usage and cost for a single completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// LLMResponse is a completed (non-streaming) response from an LLM provider.
type LLMResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
	Metadata   map[string]interface{}
	Thinking   string
}

// LLMProvider is the interface every LLM backend implements.
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message, tools []sandbox.Tool) (*LLMResponse, error)
	Name() string
	Model() string
}

// TokenCallback is invoked for each token/chunk received during streaming.
// Implementations must be non-blocking.
type TokenCallback func(token string)

// StreamingLLMProvider extends LLMProvider with token-by-token streaming.
// Use SupportsStreaming to check whether a provider implements it.
type StreamingLLMProvider interface {
	LLMProvider
	ChatStream(ctx context.Context, messages []Message, tools []sandbox.Tool, tokenCallback TokenCallback) (*LLMResponse, error)
}

// SupportsStreaming reports whether provider implements StreamingLLMProvider.
func SupportsStreaming(provider LLMProvider) bool {
	_, ok := provider.(StreamingLLMProvider)
	return ok
}

// Context enriches context.Context with the ambient state an agent needs
// during execution: its tracer and a way to report progress upstream.
type Context interface {
	context.Context
	Tracer() observability.Tracer
	ProgressCallback() ProgressCallback
}

// ProgressEvent reports incremental execution progress to a terminal UI.
type ProgressEvent struct {
	Stage          string
	Message        string
	ToolName       string
	Timestamp      time.Time
	PartialContent string
	IsTokenStream  bool
	TokenCount     int
}

// ProgressCallback is called as agent execution makes progress. May be nil.
type ProgressCallback func(event ProgressEvent)
