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
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/loomware/warp/internal/safety"
	"github.com/loomware/warp/internal/sandbox"
	"github.com/loomware/warp/internal/sandbox/parser"
)

const (
	DefaultShellTimeout = 300 * time.Second
	MaxShellTimeout     = 600 * time.Second
	DefaultMaxOutputBytes = 1024 * 1024

	// outputTruncatedSentinel marks output that hit the cap, so a caller
	// can tell "command produced exactly this much" from "this was cut off".
	outputTruncatedSentinel = "\n...[output truncated]...\n"

	// killGrace is how long a command gets to exit after SIGTERM before
	// ShellExecuteTool escalates to SIGKILL.
	killGrace = 5 * time.Second
)

// ShellExecuteTool runs a command through the system shell with a bounded
// timeout, a capped output buffer, and an optional retry policy for
// transient failures (network hiccups, flaky subprocess startup).
type ShellExecuteTool struct {
	WorkDir string
}

func NewShellExecuteTool(workDir string) *ShellExecuteTool { return &ShellExecuteTool{WorkDir: workDir} }

func (t *ShellExecuteTool) Name() string        { return "shell_execute" }
func (t *ShellExecuteTool) Description() string { return "Executes a shell command with a timeout and capped output, returning stdout/stderr and exit code." }
func (t *ShellExecuteTool) Backend() sandbox.Backend { return sandbox.BackendShell }

func (t *ShellExecuteTool) Metadata() sandbox.ToolMetadata {
	return sandbox.ToolMetadata{
		Category:            "execution",
		Risk:                sandbox.RiskHigh,
		Reversible:          false,
		EstimatedDurationMS: int(DefaultShellTimeout.Milliseconds()),
		Tags:                []string{"shell", "process"},
		Semver:              "1.0.0",
	}
}

func (t *ShellExecuteTool) Capabilities() []sandbox.Capability {
	return []sandbox.Capability{sandbox.CapabilityExecute, sandbox.CapabilityFetchNet}
}

func (t *ShellExecuteTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"command":         sandbox.NewStringSchema("Shell command to execute."),
		"working_dir":     sandbox.NewStringSchema("Working directory, relative to the sandbox root (default: root)."),
		"timeout_seconds": sandbox.NewNumberSchema("Max execution time in seconds (default 300, max 600)."),
		"retry":           sandbox.NewBooleanSchema("Retry up to 10 times on a non-zero exit with exponential backoff (default false)."),
	}, "command")
}

func (t *ShellExecuteTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	command, _ := input["command"].(string)
	report := safety.PreflightCommand(safety.CommandInput{Tool: t.Name(), OpType: "execute", Command: command, WorkDir: t.WorkDir})
	return &sandbox.Operation{
		OperationType: "shell_exec",
		Target:        firstToken(command),
		Risk:          mapRisk(report.RiskLevel),
		Summary:       report.Summary,
	}, nil
}

func mapRisk(r safety.RiskLevel) sandbox.RiskLevel {
	switch r {
	case safety.RiskCritical, safety.RiskHigh:
		return sandbox.RiskHigh
	case safety.RiskMedium:
		return sandbox.RiskModerate
	default:
		return sandbox.RiskLow
	}
}

func firstToken(command string) string {
	args, err := parser.ParseCommand(command)
	if err != nil || len(args) == 0 {
		return command
	}
	return args[0]
}

func (t *ShellExecuteTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	command, ok := input["command"].(string)
	if !ok || command == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "command is required"}
	}

	timeout := DefaultShellTimeout
	if ts, ok := input["timeout_seconds"].(float64); ok && ts > 0 {
		timeout = time.Duration(ts) * time.Second
		if timeout > MaxShellTimeout {
			timeout = MaxShellTimeout
		}
	}

	workDir := t.WorkDir
	if wd, ok := input["working_dir"].(string); ok && wd != "" {
		clean, err := parser.SanitizePath(t.WorkDir, wd)
		if err != nil {
			return nil, &sandbox.Error{Code: "UNSAFE_PATH", Message: err.Error()}
		}
		workDir = clean
	}

	retry, _ := input["retry"].(bool)

	var result *sandbox.Result
	run := func() error {
		r, err := runOnce(ctx, command, workDir, timeout)
		if err != nil {
			return err
		}
		result = r
		if code, _ := r.Metadata["exit_code"].(int); code != 0 {
			return fmt.Errorf("exit code %d", code)
		}
		return nil
	}

	if !retry {
		if err := run(); err != nil && result == nil {
			return nil, &sandbox.Error{Code: "EXEC_FAILED", Message: err.Error()}
		}
		return result, nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 10)
	if err := backoff.Retry(run, policy); err != nil && result == nil {
		return nil, &sandbox.Error{Code: "EXEC_FAILED", Message: err.Error()}
	}
	return result, nil
}

func runOnce(ctx context.Context, command, workDir string, timeout time.Duration) (*sandbox.Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shell, shellArg := "/bin/sh", "-c"
	if runtime.GOOS == "windows" {
		shell, shellArg = "cmd", "/C"
	}

	cmd := exec.CommandContext(runCtx, shell, shellArg, command)
	if workDir != "" {
		cmd.Dir = workDir
	}
	cmd.Env = filteredEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &cappedWriter{buf: &stdout, limit: DefaultMaxOutputBytes}
	cmd.Stderr = &cappedWriter{buf: &stderr, limit: DefaultMaxOutputBytes}

	if runtime.GOOS != "windows" {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	start := time.Now()
	err := cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-runCtx.Done():
		terminate(cmd, done)
		waitErr = runCtx.Err()
	}

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	return &sandbox.Result{
		Output: stdout.String(),
		Metadata: map[string]interface{}{
			"stderr":      stderr.String(),
			"exit_code":   exitCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"timed_out":   runCtx.Err() != nil,
		},
	}, nil
}

// terminate signals the process group, giving it killGrace to exit before
// escalating to SIGKILL.
func terminate(cmd *exec.Cmd, done <-chan error) {
	if cmd.Process == nil {
		return
	}
	if runtime.GOOS == "windows" {
		cmd.Process.Kill()
		<-done
		return
	}
	syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	select {
	case <-done:
	case <-time.After(killGrace):
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
	}
}

// cappedWriter accumulates up to limit bytes, then appends a truncation
// sentinel once and silently drops the rest.
type cappedWriter struct {
	buf       *bytes.Buffer
	limit     int
	truncated bool
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	if w.truncated {
		return len(p), nil
	}
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		w.buf.WriteString(outputTruncatedSentinel)
		w.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		w.buf.WriteString(outputTruncatedSentinel)
		w.truncated = true
		return len(p), nil
	}
	w.buf.Write(p)
	return len(p), nil
}

// filteredEnv strips credential-shaped variables from the subprocess
// environment so a shell command can't casually exfiltrate them via
// `env` or error messages.
func filteredEnv() []string {
	blocked := map[string]bool{
		"ANTHROPIC_API_KEY": true,
		"AWS_SECRET_ACCESS_KEY": true,
		"AWS_SESSION_TOKEN": true,
	}
	var out []string
	for _, kv := range os.Environ() {
		name := kv
		if idx := indexByte(kv, '='); idx >= 0 {
			name = kv[:idx]
		}
		if blocked[name] {
			continue
		}
		out = append(out, kv)
	}
	return out
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}
