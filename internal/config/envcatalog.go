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

// envcatalog.go is the frozen, table-driven catalog of every environment
// variable Warp recognizes, grounded on the teacher's viper
// AutomaticEnv()+SetEnvPrefix("LOOM") binding (cmd/looms/config.go): every
// mapstructure key gets a WARP_-prefixed variable for free, but operators
// need a single page documenting them, and this table is that page.
package config

// EnvVar documents one recognized environment variable.
type EnvVar struct {
	Name        string
	Key         string // dotted viper key it binds to, "" if secret-only
	Description string
	Secret      bool // true if also resolvable via the system keyring
}

// EnvCatalog is the complete, compile-time-frozen list of environment
// variables Warp reads. Adding a config field should add an entry here.
var EnvCatalog = []EnvVar{
	{Name: "WARP_DATA_DIR", Key: "", Description: "Root directory for checkpoints, audit log, and config file discovery."},
	{Name: "WARP_LLM_PROVIDER", Key: "llm.provider", Description: "LLM provider to use: anthropic or bedrock."},
	{Name: "WARP_LLM_ANTHROPIC_MODEL", Key: "llm.anthropic_model", Description: "Anthropic model ID."},
	{Name: "WARP_LLM_ANTHROPIC_API_KEY", Key: "llm.anthropic_api_key", Description: "Anthropic API key.", Secret: true},
	{Name: "WARP_LLM_TEMPERATURE", Key: "llm.temperature", Description: "Sampling temperature."},
	{Name: "WARP_LLM_MAX_TOKENS", Key: "llm.max_tokens", Description: "Max tokens per completion."},
	{Name: "WARP_LLM_TIMEOUT_SECONDS", Key: "llm.timeout_seconds", Description: "Per-request LLM timeout."},
	{Name: "WARP_LLM_BEDROCK_REGION", Key: "llm.bedrock_region", Description: "AWS region for the Bedrock provider."},
	{Name: "WARP_LLM_BEDROCK_MODEL_ID", Key: "llm.bedrock_model_id", Description: "Bedrock model ID, e.g. us.anthropic.claude-sonnet-4-5-20250929-v1:0."},
	{Name: "WARP_LLM_BEDROCK_PROFILE", Key: "llm.bedrock_profile", Description: "Named AWS credentials profile for the Bedrock provider."},
	{Name: "AWS_ACCESS_KEY_ID", Description: "AWS access key consulted by the Bedrock provider's default credential chain."},
	{Name: "AWS_SECRET_ACCESS_KEY", Description: "AWS secret key consulted by the Bedrock provider's default credential chain.", Secret: true},
	{Name: "AWS_SESSION_TOKEN", Description: "AWS session token consulted by the Bedrock provider's default credential chain.", Secret: true},
	{Name: "AWS_DEFAULT_REGION", Description: "Fallback AWS region read by the Bedrock client when llm.bedrock_region is unset."},
	{Name: "AWS_BEDROCK_MODEL_ID", Description: "Fallback Bedrock model ID read by the Bedrock client when llm.bedrock_model_id is unset."},
	{Name: "WARP_MAX_CONTEXT_TOKENS", Key: "context.max_context_tokens", Description: "Soft context budget the chat trimmer targets."},
	{Name: "WARP_CONTEXT_EMERGENCY_TOKEN_LIMIT", Key: "context.emergency_token_limit", Description: "Hard cap enforced by the emergency truncation backstop."},
	{Name: "WARP_CONTEXT_MAX_TOKENS_PER_CHUNK", Key: "context.max_tokens_per_chunk", Description: "Per-chunk token cap for progressive processing."},
	{Name: "WARP_CONTEXT_KEEP_RECENT_MESSAGES", Key: "context.keep_recent_messages", Description: "Messages always kept verbatim at the tail of the trim window."},
	{Name: "WARP_CONTEXT_HEAD_TAIL_WINDOW", Key: "context.head_tail_window", Description: "Messages always kept verbatim at each end of the trim window."},
	{Name: "WARP_APPROVAL_TIER", Key: "approval.tier", Description: "Approval engine tier: basic or enterprise."},
	{Name: "WARP_APPROVAL_TIMEOUT_SECONDS", Key: "approval.timeout_seconds", Description: "Approval prompt timeout in seconds. Loaded and validated, but the approval engine does not read it: a prompt waits until it is answered or its context is cancelled."},
	{Name: "WARP_APPROVAL_DEFAULT_ANSWER", Key: "approval.default_answer", Description: "Fallback decision for a timed-out prompt: approve or deny. Loaded and validated, but the approval engine does not read it."},
	{Name: "WARP_APPROVAL_AUTO_APPROVE_READ", Key: "approval.auto_approve_read", Description: "Auto-approve read-only/analysis tool calls."},
	{Name: "WARP_APPROVAL_AUTO_APPROVE_PLAN", Key: "approval.auto_approve_plan", Description: "Auto-approve type=plan requests."},
	{Name: "WARP_APPROVAL_AUTO_APPROVE_GLOBS", Key: "approval.auto_approve_globs", Description: "Glob patterns whose file writes are auto-approved."},
	{Name: "WARP_SCHEDULER_CONCURRENCY", Key: "scheduler.concurrency", Description: "Max agents running concurrently per turn."},
	{Name: "WARP_SCHEDULER_DEFAULT_STRATEGY", Key: "scheduler.default_strategy", Description: "Default fan-out strategy: parallel, debate, or teacher_student."},
	{Name: "WARP_SANDBOX_TIMEOUT_SECONDS", Key: "sandbox.timeout_seconds", Description: "Per-tool-call execution timeout."},
	{Name: "WARP_SANDBOX_MAX_OUTPUT_BYTES", Key: "sandbox.max_output_bytes", Description: "Per-tool-call output size cap."},
	{Name: "WARP_SANDBOX_ALLOWED_COMMANDS", Key: "sandbox.allowed_commands", Description: "Command allowlist for the shell execution tool."},
	{Name: "WARP_SANDBOX_WORKING_DIR", Key: "sandbox.working_dir", Description: "Working directory tool calls execute in."},
	{Name: "WARP_AUDIT_MAX_ENTRIES", Key: "audit.max_entries", Description: "Ring buffer size before the audit log prunes oldest entries."},
	{Name: "WARP_AUDIT_PRUNE_PERCENT", Key: "audit.prune_percent", Description: "Percentage of oldest entries pruned once max_entries is exceeded."},
	{Name: "WARP_AUDIT_PATH", Key: "audit.path", Description: "File the audit log is persisted to, default under the data directory."},
	{Name: "WARP_LOGGING_LEVEL", Key: "logging.level", Description: "zap log level: debug, info, warn, error."},
	{Name: "WARP_LOGGING_FORMAT", Key: "logging.format", Description: "zap encoder: text (console) or json."},
	{Name: "WARP_TUI_THEME", Key: "tui.theme", Description: "HUD color theme: auto, light, or dark."},
	{Name: "WARP_TUI_COMPACT_MODE", Key: "tui.compact_mode", Description: "Render the plan HUD in compact mode."},
}

// SecretEnvVars returns the names of every catalog entry resolvable via
// the system keyring as a fallback.
func SecretEnvVars() []string {
	var out []string
	for _, e := range EnvCatalog {
		if e.Secret {
			out = append(out, e.Name)
		}
	}
	return out
}
