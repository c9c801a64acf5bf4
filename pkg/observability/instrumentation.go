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
package observability

// Standard span names for consistency across Warp's components.
const (
	SpanLLMCompletion = "llm.completion"
	SpanLLMTokenize   = "llm.tokenize" // #nosec G101 -- not a credential, just span name

	SpanToolPreflight = "tool.preflight"
	SpanToolExecute   = "tool.execute"
	SpanToolValidate  = "tool.validate"

	SpanApprovalPrompt  = "approval.prompt"
	SpanApprovalWorkflow = "approval.workflow"

	SpanChunkProcess    = "progressive.chunk_process"
	SpanChunkCheckpoint = "progressive.checkpoint"

	SpanSchedulerFanOut   = "scheduler.fan_out"
	SpanSchedulerAggregate = "scheduler.aggregate"
)

// Standard metric names for consistency.
const (
	MetricLLMCalls        = "llm.calls.total"
	MetricLLMLatency      = "llm.latency"
	MetricLLMTokensInput  = "llm.tokens.input"  // #nosec G101 -- not a credential, just metric name
	MetricLLMTokensOutput = "llm.tokens.output" // #nosec G101 -- not a credential, just metric name
	MetricLLMCost         = "llm.cost"
	MetricLLMErrors       = "llm.errors.total"

	MetricToolExecutions = "tool.executions.total"
	MetricToolDuration   = "tool.duration"
	MetricToolErrors     = "tool.errors.total"

	MetricApprovalPrompts      = "approval.prompts.total"
	MetricApprovalAutoApproved = "approval.auto_approved.total"

	MetricAgentsRunning = "scheduler.agents.running"
)

// Standard attribute names for consistency.
const (
	AttrSessionID = "session.id"

	AttrLLMProvider  = "llm.provider"
	AttrLLMModel     = "llm.model"
	AttrLLMMaxTokens = "llm.max_tokens" // #nosec G101 -- not a credential, just attribute name

	AttrToolName = "tool.name"
	AttrToolArgs = "tool.args"
	AttrRiskLevel = "tool.risk_level"

	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"

	AttrAgentID = "agent.id"
	AttrTodoID  = "todo.id"
)
