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

// Package anthropic implements the Claude LLM provider used by the
// orchestrator's default configuration.
package anthropic

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/pkg/llm"
	"github.com/loomware/warp/pkg/types"
)

const (
	// DefaultModel is used when Config.Model is unset.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxTokens is the default maximum output tokens per request.
	DefaultMaxTokens = 4096
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 1.0
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 120 * time.Second
)

// pricing holds per-million-token USD rates. Populated from Anthropic's
// published pricing; update when new models launch.
var pricing = map[string]struct{ input, output float64 }{
	"claude-sonnet-4-20250514":   {3.0, 15.0},
	"claude-opus-4-20250514":     {15.0, 75.0},
	"claude-3-5-sonnet-20241022": {3.0, 15.0},
	"claude-3-5-haiku-20241022":  {0.8, 4.0},
	"claude-3-opus-20240229":     {15.0, 75.0},
	"claude-3-haiku-20240307":    {0.25, 1.25},
}

// Client implements types.StreamingLLMProvider over Anthropic's Messages API.
type Client struct {
	sdk         anthropic.Client
	model       string
	maxTokens   int
	temperature float64
	toolNameMap map[string]string // sanitized name -> original name
	retry       backoff.BackOff
}

// Config configures a new Client.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	MaxRetries  int
}

// NewClient builds a Client. APIKey falls back to ANTHROPIC_API_KEY.
func NewClient(config Config) *Client {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if config.Model == "" {
		if envModel := os.Getenv("ANTHROPIC_DEFAULT_MODEL"); envModel != "" {
			config.Model = envModel
		} else {
			config.Model = DefaultModel
		}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(config.Timeout),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	retry := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(config.MaxRetries))

	return &Client{
		sdk:         anthropic.NewClient(opts...),
		model:       config.Model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		retry:       retry,
	}
}

func (c *Client) Name() string  { return "anthropic" }
func (c *Client) Model() string { return c.model }

// Chat sends a conversation to Claude and returns the complete response.
func (c *Client) Chat(ctx context.Context, messages []types.Message, tools []sandbox.Tool) (*types.LLMResponse, error) {
	params, err := c.buildParams(messages, tools)
	if err != nil {
		return nil, err
	}

	var resp *anthropic.Message
	op := func() error {
		r, err := c.sdk.Messages.New(ctx, *params)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.retry, ctx)); err != nil {
		return nil, fmt.Errorf("anthropic: chat completion failed: %w", err)
	}

	return c.convertResponse(resp), nil
}

// ChatStream streams tokens as they arrive, invoking tokenCallback for each
// text delta, and returns the assembled response once the stream ends.
func (c *Client) ChatStream(ctx context.Context, messages []types.Message, tools []sandbox.Tool, tokenCallback types.TokenCallback) (*types.LLMResponse, error) {
	params, err := c.buildParams(messages, tools)
	if err != nil {
		return nil, err
	}

	stream := c.sdk.Messages.NewStreaming(ctx, *params)

	var content string
	var toolCalls []types.ToolCall
	var currentToolID, currentToolName string
	var currentToolInput string
	var inputTokens, outputTokens int
	var stopReason string

	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "content_block_start":
			block := event.AsContentBlockStart().ContentBlock
			if block.Type == "tool_use" {
				toolUse := block.AsToolUse()
				currentToolID = toolUse.ID
				currentToolName = toolUse.Name
				currentToolInput = ""
			}
		case "content_block_delta":
			delta := event.AsContentBlockDelta().Delta
			switch delta.Type {
			case "text_delta":
				if delta.Text != "" {
					content += delta.Text
					if tokenCallback != nil {
						tokenCallback(delta.Text)
					}
				}
			case "input_json_delta":
				currentToolInput += delta.PartialJSON
			}
		case "content_block_stop":
			if currentToolID != "" {
				toolCalls = append(toolCalls, types.ToolCall{
					ID:    currentToolID,
					Name:  llm.ReverseToolName(c.toolNameMap, currentToolName),
					Input: decodeToolInput(currentToolInput),
				})
				currentToolID = ""
			}
		case "message_delta":
			md := event.AsMessageDelta()
			if md.Delta.StopReason != "" {
				stopReason = string(md.Delta.StopReason)
			}
			if md.Usage.OutputTokens > 0 {
				outputTokens = int(md.Usage.OutputTokens)
			}
		case "message_start":
			ms := event.AsMessageStart()
			if ms.Message.Usage.InputTokens > 0 {
				inputTokens = int(ms.Message.Usage.InputTokens)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("anthropic: stream error: %w", err)
	}

	usage := types.Usage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      c.calculateCost(inputTokens, outputTokens),
	}

	return &types.LLMResponse{
		Content:    content,
		ToolCalls:  toolCalls,
		StopReason: stopReason,
		Usage:      usage,
		Metadata: map[string]interface{}{
			"model":     c.model,
			"streaming": true,
		},
	}, nil
}

// buildParams converts messages and tools into an Anthropic request.
func (c *Client) buildParams(messages []types.Message, tools []sandbox.Tool) (*anthropic.MessageNewParams, error) {
	systemPrompt, apiMessages := c.convertMessages(messages)

	c.toolNameMap = make(map[string]string, len(tools))
	apiTools, err := c.convertTools(tools)
	if err != nil {
		return nil, fmt.Errorf("anthropic: converting tools: %w", err)
	}

	params := &anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		Messages:    apiMessages,
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(c.temperature),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if len(apiTools) > 0 {
		params.Tools = apiTools
	}
	return params, nil
}

// convertMessages converts session messages to Anthropic message params.
// System messages are extracted and combined, since the Messages API takes
// them as a separate field rather than a message with role "system".
func (c *Client) convertMessages(messages []types.Message) (string, []anthropic.MessageParam) {
	var systemPrompts []string
	var apiMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if msg.Content != "" {
				systemPrompts = append(systemPrompts, msg.Content)
			}

		case "user":
			var content []anthropic.ContentBlockParamUnion
			if len(msg.ContentBlocks) > 0 {
				for _, block := range msg.ContentBlocks {
					switch block.Type {
					case "text":
						content = append(content, anthropic.NewTextBlock(block.Text))
					case "image":
						if block.Image != nil {
							content = append(content, imageBlock(block.Image.Source))
						}
					}
				}
			} else {
				content = append(content, anthropic.NewTextBlock(msg.Content))
			}
			apiMessages = append(apiMessages, anthropic.NewUserMessage(content...))

		case "assistant":
			var content []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				content = append(content, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				content = append(content, anthropic.NewToolUseBlock(tc.ID, tc.Input, llm.SanitizeToolName(tc.Name)))
			}
			if len(content) > 0 {
				apiMessages = append(apiMessages, anthropic.NewAssistantMessage(content...))
			}

		case "tool":
			apiMessages = append(apiMessages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolUseID, msg.Content, false),
			))
		}
	}

	systemPrompt := ""
	for i, p := range systemPrompts {
		if i > 0 {
			systemPrompt += "\n\n"
		}
		systemPrompt += p
	}
	return systemPrompt, apiMessages
}

// convertTools converts sandbox tools to Anthropic tool definitions,
// sanitizing names since tool namespaces may contain characters (":")
// that provider-side validation rejects.
func (c *Client) convertTools(tools []sandbox.Tool) ([]anthropic.ToolUnionParam, error) {
	var result []anthropic.ToolUnionParam
	if c.toolNameMap == nil {
		c.toolNameMap = make(map[string]string, len(tools))
	}

	for _, tool := range tools {
		original := tool.Name()
		sanitized := llm.SanitizeToolName(original)
		c.toolNameMap[sanitized] = original

		schema := anthropic.ToolInputSchemaParam{}
		if s := tool.InputSchema(); s != nil {
			schema.Properties = c.convertSchemaProperties(s.Properties)
			schema.Required = s.Required
		}

		toolParam := anthropic.ToolUnionParamOfTool(schema, sanitized)
		toolParam.OfTool.Description = anthropic.String(tool.Description())
		result = append(result, toolParam)
	}
	return result, nil
}

func (c *Client) convertSchemaProperties(props map[string]*sandbox.JSONSchema) map[string]interface{} {
	if props == nil {
		return nil
	}
	result := make(map[string]interface{}, len(props))
	for key, schema := range props {
		m := map[string]interface{}{"type": schema.Type}
		if schema.Description != "" {
			m["description"] = schema.Description
		}
		if len(schema.Enum) > 0 {
			m["enum"] = schema.Enum
		}
		if schema.Properties != nil {
			m["properties"] = c.convertSchemaProperties(schema.Properties)
		}
		if schema.Items != nil {
			m["items"] = map[string]interface{}{"type": schema.Items.Type}
		}
		result[key] = m
	}
	return result
}

func (c *Client) convertResponse(resp *anthropic.Message) *types.LLMResponse {
	inputTokens := int(resp.Usage.InputTokens)
	outputTokens := int(resp.Usage.OutputTokens)

	llmResp := &types.LLMResponse{
		StopReason: string(resp.StopReason),
		Usage: types.Usage{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
			CostUSD:      c.calculateCost(inputTokens, outputTokens),
		},
		Metadata: map[string]interface{}{
			"model":       string(resp.Model),
			"stop_reason": string(resp.StopReason),
		},
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			llmResp.Content += block.Text
		case "tool_use":
			llmResp.ToolCalls = append(llmResp.ToolCalls, types.ToolCall{
				ID:    block.ID,
				Name:  llm.ReverseToolName(c.toolNameMap, block.Name),
				Input: decodeToolUseInput(block.Input),
			})
		}
	}
	return llmResp
}

// calculateCost estimates USD cost from published per-model pricing,
// falling back to Sonnet-tier pricing for unlisted models.
func (c *Client) calculateCost(inputTokens, outputTokens int) float64 {
	rate, ok := pricing[c.model]
	if !ok {
		rate = pricing[DefaultModel]
	}
	return float64(inputTokens)*rate.input/1_000_000 + float64(outputTokens)*rate.output/1_000_000
}

func imageBlock(src types.ImageSource) anthropic.ContentBlockParamUnion {
	if src.Type == "url" {
		return anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: src.URL})
	}
	return anthropic.NewImageBlock(anthropic.Base64ImageSourceParam{
		MediaType: anthropic.Base64ImageSourceMediaType(src.MediaType),
		Data:      src.Data,
	})
}

var _ types.LLMProvider = (*Client)(nil)
var _ types.StreamingLLMProvider = (*Client)(nil)
