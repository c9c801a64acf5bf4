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

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/loomware/warp/pkg/observability"
)

// Approver decides whether an operation may proceed. internal/approval.Engine
// implements this; it's an interface here to avoid sandbox depending on
// approval's prompting machinery directly.
type Approver interface {
	Evaluate(ctx context.Context, op *Operation) (bool, error)
}

// Executor is the only supported entry point for running a tool: it runs
// preflight classification, gates on approval, and traces the call. Nothing
// in the scheduler should hold a Tool reference and call Execute directly.
type Executor struct {
	registry *Registry
	approver Approver
	tracer   observability.Tracer
}

// NewExecutor builds an Executor over the given registry and approver.
func NewExecutor(registry *Registry, approver Approver, tracer observability.Tracer) *Executor {
	return &Executor{registry: registry, approver: approver, tracer: tracer}
}

// Run looks up the named tool, validates input against its schema, gates on
// approval, and executes it. A schema validation failure (Code
// "VALIDATION"), a denied approval (Code "denied") and the tool's own
// structured failure come back as *Error; an unknown tool, a preflight
// error or an approval engine error comes back as a plain error.
func (e *Executor) Run(ctx context.Context, toolName string, input map[string]interface{}) (*Result, error) {
	tool, ok := e.registry.Get(toolName)
	if !ok {
		return nil, fmt.Errorf("sandbox: unknown tool %q", toolName)
	}

	if err := validateInput(tool, input); err != nil {
		return nil, &Error{Code: "VALIDATION", Message: err.Error()}
	}

	ctx, span := e.tracer.StartSpan(ctx, observability.SpanToolPreflight)
	span.SetAttribute(observability.AttrToolName, toolName)
	var op *Operation
	if pf, ok := tool.(Preflighter); ok {
		var err error
		op, err = pf.Preflight(input)
		if err != nil {
			e.tracer.EndSpan(span)
			return nil, fmt.Errorf("preflight %s: %w", toolName, err)
		}
	} else {
		op = &Operation{OperationType: toolName, Target: toolName, Risk: RiskModerate}
	}
	span.SetAttribute(observability.AttrRiskLevel, string(op.Risk))
	e.tracer.EndSpan(span)

	if e.approver != nil {
		approved, err := e.approver.Evaluate(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("approval: %w", err)
		}
		if !approved {
			return nil, &Error{Code: "denied", Message: fmt.Sprintf("operation %s on %s was not approved", op.OperationType, op.Target)}
		}
	}

	ctx, execSpan := e.tracer.StartSpan(ctx, observability.SpanToolExecute)
	execSpan.SetAttribute(observability.AttrToolName, toolName)
	defer e.tracer.EndSpan(execSpan)

	result, err := tool.Execute(ctx, input)
	if err != nil {
		execSpan.RecordError(err)
		return nil, err
	}
	return result, nil
}

// validateInput checks input against the tool's declared JSON Schema
// before preflight/approval ever see it, so a malformed call fails fast
// with a Validation-kind error rather than tripping some downstream type
// assertion inside the handler.
func validateInput(tool Tool, input map[string]interface{}) error {
	schema := tool.InputSchema()
	if schema == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	docLoader := gojsonschema.NewGoLoader(input)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid parameters for %q: %s", tool.Name(), strings.Join(msgs, "; "))
	}
	return nil
}
