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

// Package bedrock implements the LLMProvider interface over AWS Bedrock's
// InvokeModel API, for operators who want warp's agents running on
// Bedrock-hosted Claude instead of calling Anthropic directly.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/cenkalti/backoff/v4"

	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/pkg/llm"
	"github.com/loomware/warp/pkg/types"
)

// Default Bedrock configuration, overridable via environment variables the
// same way the Anthropic client falls back to ANTHROPIC_DEFAULT_MODEL.
const (
	DefaultModelID     = "us.anthropic.claude-sonnet-4-5-20250929-v1:0"
	DefaultRegion      = "us-west-2"
	DefaultMaxTokens   = 4096
	DefaultTemperature = 1.0
	anthropicVersion   = "bedrock-2023-05-31"
)

// Config configures a new Client.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Profile         string

	ModelID     string
	MaxTokens   int
	Temperature float64
	MaxRetries  int
}

// Client implements types.LLMProvider over Bedrock's InvokeModel API using
// Anthropic's Messages request/response shape, the format Bedrock expects
// for every anthropic.* model ID.
type Client struct {
	sdk         *bedrockruntime.Client
	modelID     string
	maxTokens   int
	temperature float64
	toolNameMap map[string]string
	retry       backoff.BackOff
}

// NewClient builds a Bedrock-backed Client, resolving AWS credentials in
// the same explicit-keys -> named-profile -> default-chain order the
// AWS SDK's own config loader follows.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ModelID == "" {
		if v := os.Getenv("AWS_BEDROCK_MODEL_ID"); v != "" {
			cfg.ModelID = v
		} else {
			cfg.ModelID = DefaultModelID
		}
	}
	if cfg.Region == "" {
		if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
			cfg.Region = v
		} else {
			cfg.Region = DefaultRegion
		}
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	var awsCfg aws.Config
	var err error
	switch {
	case cfg.AccessKeyID != "" && cfg.SecretAccessKey != "":
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken,
			)),
		)
	case cfg.Profile != "":
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithSharedConfigProfile(cfg.Profile),
		)
	default:
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("bedrock: loading AWS config: %w", err)
	}

	return &Client{
		sdk:         bedrockruntime.NewFromConfig(awsCfg),
		modelID:     cfg.ModelID,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		toolNameMap: make(map[string]string),
		retry:       backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cfg.MaxRetries)),
	}, nil
}

func (c *Client) Name() string  { return "bedrock" }
func (c *Client) Model() string { return c.modelID }

// Chat sends a conversation to Bedrock and returns the complete response.
// Streaming is intentionally not implemented: Bedrock's
// InvokeModelWithResponseStream has a long-standing bug where tool input
// arrives as empty input_json_delta events, so callers get a complete
// response back instead of a partial one that silently drops tool args.
func (c *Client) Chat(ctx context.Context, messages []types.Message, tools []sandbox.Tool) (*types.LLMResponse, error) {
	body, err := c.buildRequestBody(messages, tools)
	if err != nil {
		return nil, err
	}

	var output *bedrockruntime.InvokeModelOutput
	op := func() error {
		out, err := c.sdk.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(c.modelID),
			Body:        body,
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return err
		}
		output = out
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.retry, ctx)); err != nil {
		return nil, fmt.Errorf("bedrock: invoke model failed: %w", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return nil, fmt.Errorf("bedrock: unmarshal response: %w", err)
	}
	return c.convertResponse(&resp), nil
}

func (c *Client) buildRequestBody(messages []types.Message, tools []sandbox.Tool) ([]byte, error) {
	systemPrompt, apiMessages := c.convertMessages(messages)
	if len(apiMessages) == 0 {
		return nil, fmt.Errorf("bedrock: no messages to send")
	}

	request := map[string]interface{}{
		"anthropic_version": anthropicVersion,
		"max_tokens":         c.maxTokens,
		"temperature":        c.temperature,
		"messages":           apiMessages,
	}
	if systemPrompt != "" {
		request["system"] = systemPrompt
	}
	if len(tools) > 0 {
		request["tools"] = c.convertTools(tools)
	}
	return json.Marshal(request)
}

// convertMessages mirrors anthropic.Client.convertMessages, producing plain
// map[string]interface{} values instead of SDK structs since Bedrock takes
// the request body as raw JSON.
func (c *Client) convertMessages(messages []types.Message) (string, []map[string]interface{}) {
	var systemPrompts []string
	var apiMessages []map[string]interface{}

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			if msg.Content != "" {
				systemPrompts = append(systemPrompts, msg.Content)
			}

		case "user":
			var content []map[string]interface{}
			if len(msg.ContentBlocks) > 0 {
				for _, block := range msg.ContentBlocks {
					switch block.Type {
					case "text":
						if block.Text != "" {
							content = append(content, map[string]interface{}{"type": "text", "text": block.Text})
						}
					case "image":
						if block.Image != nil {
							content = append(content, imageBlock(block.Image.Source))
						}
					}
				}
			} else if msg.Content != "" {
				content = append(content, map[string]interface{}{"type": "text", "text": msg.Content})
			}
			if len(content) > 0 {
				apiMessages = append(apiMessages, map[string]interface{}{"role": "user", "content": content})
			}

		case "assistant":
			var content []map[string]interface{}
			if msg.Content != "" {
				content = append(content, map[string]interface{}{"type": "text", "text": msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				input := tc.Input
				if input == nil {
					input = map[string]interface{}{}
				}
				content = append(content, map[string]interface{}{
					"type": "tool_use", "id": tc.ID, "name": llm.SanitizeToolName(tc.Name), "input": input,
				})
			}
			if len(content) > 0 {
				apiMessages = append(apiMessages, map[string]interface{}{"role": "assistant", "content": content})
			}

		case "tool":
			apiMessages = append(apiMessages, map[string]interface{}{
				"role": "user",
				"content": []map[string]interface{}{{
					"type": "tool_result", "tool_use_id": msg.ToolUseID, "content": msg.Content,
				}},
			})
		}
	}

	return strings.Join(systemPrompts, "\n\n"), apiMessages
}

func imageBlock(src types.ImageSource) map[string]interface{} {
	source := map[string]interface{}{"type": src.Type, "media_type": src.MediaType}
	if src.Type == "url" {
		source["url"] = src.URL
	} else {
		source["data"] = src.Data
	}
	return map[string]interface{}{"type": "image", "source": source}
}

func (c *Client) convertTools(tools []sandbox.Tool) []map[string]interface{} {
	c.toolNameMap = make(map[string]string, len(tools))
	apiTools := make([]map[string]interface{}, 0, len(tools))
	for _, tool := range tools {
		original := tool.Name()
		sanitized := llm.SanitizeToolName(original)
		c.toolNameMap[sanitized] = original

		apiTool := map[string]interface{}{"name": sanitized, "description": tool.Description()}
		if schema := tool.InputSchema(); schema != nil {
			schemaType := schema.Type
			if schemaType == "" {
				schemaType = "object"
			}
			apiTool["input_schema"] = map[string]interface{}{
				"type":       schemaType,
				"properties": convertSchemaProperties(schema.Properties),
				"required":   schema.Required,
			}
		}
		apiTools = append(apiTools, apiTool)
	}
	return apiTools
}

func convertSchemaProperties(props map[string]*sandbox.JSONSchema) map[string]interface{} {
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
			m["properties"] = convertSchemaProperties(schema.Properties)
		}
		if schema.Items != nil {
			m["items"] = map[string]interface{}{"type": schema.Items.Type}
		}
		result[key] = m
	}
	return result
}

func (c *Client) convertResponse(resp *bedrockResponse) *types.LLMResponse {
	llmResp := &types.LLMResponse{
		StopReason: resp.StopReason,
		Usage: types.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
			TotalTokens:  resp.Usage.InputTokens + resp.Usage.OutputTokens,
			CostUSD:      c.calculateCost(resp.Usage.InputTokens, resp.Usage.OutputTokens),
		},
		Metadata: map[string]interface{}{"model": c.modelID, "stop_reason": resp.StopReason},
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			llmResp.Content += block.Text
		case "tool_use":
			name := block.Name
			if original, ok := c.toolNameMap[name]; ok {
				name = original
			}
			llmResp.ToolCalls = append(llmResp.ToolCalls, types.ToolCall{ID: block.ID, Name: name, Input: block.Input})
		}
	}
	return llmResp
}

// calculateCost estimates USD cost from published per-model-family pricing.
func (c *Client) calculateCost(inputTokens, outputTokens int) float64 {
	var in, out float64
	switch {
	case strings.Contains(c.modelID, "claude-opus-4"):
		in, out = 15.0, 75.0
	case strings.Contains(c.modelID, "claude-haiku-4"):
		in, out = 0.8, 4.0
	default:
		in, out = 3.0, 15.0
	}
	return float64(inputTokens)*in/1_000_000 + float64(outputTokens)*out/1_000_000
}

type bedrockResponse struct {
	StopReason string              `json:"stop_reason"`
	Content    []bedrockContentBlock `json:"content"`
	Usage      bedrockUsage        `json:"usage"`
}

type bedrockContentBlock struct {
	Type  string                 `json:"type"`
	Text  string                 `json:"text,omitempty"`
	ID    string                 `json:"id,omitempty"`
	Name  string                 `json:"name,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`
}

type bedrockUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// requestTimeout is 120 seconds. Nothing in this package applies it; a
// Chat call runs until the caller's context ends.
const requestTimeout = 120 * time.Second

var _ types.LLMProvider = (*Client)(nil)
