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
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// Config holds all of Warp's configuration.
// Priority: CLI flags > environment variables > config file > defaults.
type Config struct {
	// DataDir is computed from WARP_DATA_DIR or ~/.warp; not loaded from
	// the config file, set after Unmarshal.
	DataDir string `mapstructure:"-"`

	LLM       LLMConfig       `mapstructure:"llm"`
	Context   ContextConfig   `mapstructure:"context"`
	Approval  ApprovalConfig  `mapstructure:"approval"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	TUI       TUIConfig       `mapstructure:"tui"`
	MCP       []MCPServer     `mapstructure:"mcp_servers"`
}

// MCPServer describes one configured external tool source. cmd/warp's
// `mcp` command lists these read-only; no MCP client is started, so no
// tools from these servers are registered with the sandbox.
type MCPServer struct {
	Name    string   `mapstructure:"name"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	URL     string   `mapstructure:"url"`
}

// LLMConfig configures the model provider.
type LLMConfig struct {
	Provider        string  `mapstructure:"provider"`
	AnthropicModel  string  `mapstructure:"anthropic_model"`
	AnthropicAPIKey string  `mapstructure:"anthropic_api_key"`
	Temperature     float64 `mapstructure:"temperature"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`

	// Bedrock fields are only consulted when Provider == "bedrock", letting
	// an operator run the same agent roster against Bedrock-hosted Claude
	// instead of calling Anthropic directly.
	BedrockRegion  string `mapstructure:"bedrock_region"`
	BedrockModelID string `mapstructure:"bedrock_model_id"`
	BedrockProfile string `mapstructure:"bedrock_profile"`
}

// ContextConfig configures the progressive token manager and chat trimmer.
type ContextConfig struct {
	MaxContextTokens    int `mapstructure:"max_context_tokens"`
	EmergencyTokenLimit int `mapstructure:"emergency_token_limit"`
	MaxTokensPerChunk   int `mapstructure:"max_tokens_per_chunk"`
	KeepRecentMessages  int `mapstructure:"keep_recent_messages"`
	HeadTailWindow      int `mapstructure:"head_tail_window"`
}

// ApprovalConfig configures the approval engine.
type ApprovalConfig struct {
	Tier              string   `mapstructure:"tier"` // "basic" or "enterprise"
	TimeoutSeconds    int      `mapstructure:"timeout_seconds"`
	DefaultAnswer     string   `mapstructure:"default_answer"` // what to do when the timeout elapses
	AutoApproveRead   bool     `mapstructure:"auto_approve_read"`
	AutoApprovePlan   bool     `mapstructure:"auto_approve_plan"`
	AutoApproveGlobs  []string `mapstructure:"auto_approve_globs"`
}

// SchedulerConfig configures the agent scheduler.
type SchedulerConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	DefaultStrategy string `mapstructure:"default_strategy"`
}

// SandboxConfig configures the tool execution sandbox.
type SandboxConfig struct {
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"`
	MaxOutputBytes  int      `mapstructure:"max_output_bytes"`
	AllowedCommands []string `mapstructure:"allowed_commands"`
	WorkingDir      string   `mapstructure:"working_dir"`
}

// AuditConfig configures the append-only audit log.
type AuditConfig struct {
	MaxEntries   int    `mapstructure:"max_entries"`
	PrunePercent int    `mapstructure:"prune_percent"`
	Path         string `mapstructure:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TUIConfig configures the plan HUD.
type TUIConfig struct {
	Theme       string `mapstructure:"theme"`
	CompactMode bool   `mapstructure:"compact_mode"`
}

// Load loads configuration from multiple sources with proper priority:
//  1. Command line flags (applied by the caller to the returned Config)
//  2. Environment variables (WARP_ prefix)
//  3. Config file ($WARP_DATA_DIR/warp.yaml or ~/.warp/warp.yaml)
//  4. Defaults
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(GetDataDir())
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigFileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	v.SetEnvPrefix("WARP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("context.max_context_tokens", "WARP_MAX_CONTEXT_TOKENS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.DataDir = GetDataDir()

	// Non-fatal: the keyring may be unavailable in headless/CI environments;
	// secrets can still come from env vars or the config file.
	_ = loadSecretsFromKeyring(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.anthropic_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.temperature", 1.0)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout_seconds", 60)
	v.SetDefault("llm.bedrock_region", "us-west-2")

	v.SetDefault("context.max_context_tokens", 100_000)
	v.SetDefault("context.emergency_token_limit", 120_000)
	v.SetDefault("context.max_tokens_per_chunk", 2_500)
	v.SetDefault("context.keep_recent_messages", 4)
	v.SetDefault("context.head_tail_window", 2)

	v.SetDefault("approval.tier", "basic")
	v.SetDefault("approval.timeout_seconds", 30)
	v.SetDefault("approval.default_answer", "deny")
	v.SetDefault("approval.auto_approve_read", true)
	v.SetDefault("approval.auto_approve_plan", false)

	v.SetDefault("scheduler.concurrency", 3)
	v.SetDefault("scheduler.default_strategy", "parallel")

	v.SetDefault("sandbox.timeout_seconds", 30)
	v.SetDefault("sandbox.max_output_bytes", 1_048_576)
	v.SetDefault("sandbox.working_dir", ".")

	v.SetDefault("audit.max_entries", 50_000)
	v.SetDefault("audit.prune_percent", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("tui.theme", "auto")
	v.SetDefault("tui.compact_mode", false)
}

// Validate rejects configurations that would make the orchestrator
// misbehave in ways that aren't obvious from a single field.
func (c *Config) Validate() error {
	if c.Scheduler.Concurrency <= 0 {
		return fmt.Errorf("config: scheduler.concurrency must be positive, got %d", c.Scheduler.Concurrency)
	}
	if c.Context.EmergencyTokenLimit <= 0 {
		return fmt.Errorf("config: context.emergency_token_limit must be positive, got %d", c.Context.EmergencyTokenLimit)
	}
	if c.Approval.Tier != "basic" && c.Approval.Tier != "enterprise" {
		return fmt.Errorf("config: approval.tier must be %q or %q, got %q", "basic", "enterprise", c.Approval.Tier)
	}
	switch c.Approval.DefaultAnswer {
	case "approve", "deny":
	default:
		return fmt.Errorf("config: approval.default_answer must be %q or %q, got %q", "approve", "deny", c.Approval.DefaultAnswer)
	}
	return nil
}

// GetSecretFromKeyring retrieves a secret from the system keyring.
func GetSecretFromKeyring(key string) (string, error) {
	return keyring.Get(ServiceName, key)
}

// SaveSecretToKeyring saves a secret to the system keyring.
func SaveSecretToKeyring(key, value string) error {
	return keyring.Set(ServiceName, key, value)
}

// DeleteSecretFromKeyring removes a secret from the system keyring.
func DeleteSecretFromKeyring(key string) error {
	return keyring.Delete(ServiceName, key)
}
