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
	"io"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/loomware/warp/internal/sandbox"
)

// DefaultDockerImage is the sandbox image commands run in when a caller
// doesn't specify one, chosen for having a POSIX shell and nothing else.
const DefaultDockerImage = "alpine:3.20"

// DockerExecuteTool runs a shell command inside a disposable container
// instead of the host shell, for callers that want shell_execute's
// ergonomics with a harder isolation boundary. Every call creates a fresh
// container, runs the command to completion, and removes it: there is no
// container reuse or rotation, unlike the teacher's long-lived
// DockerExecutor pool, since a single sandboxed tool call has no session
// state worth keeping warm between invocations.
type DockerExecuteTool struct {
	cli   *client.Client
	image string
}

// NewDockerExecuteTool dials the local Docker daemon over its default
// host (respecting DOCKER_HOST). It returns an error if the daemon isn't
// reachable, since there's no point registering a tool that can never run.
func NewDockerExecuteTool(ctx context.Context, image string) (*DockerExecuteTool, error) {
	if image == "" {
		image = DefaultDockerImage
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker_execute: creating client: %w", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("docker_execute: daemon unreachable: %w", err)
	}
	return &DockerExecuteTool{cli: cli, image: image}, nil
}

func (t *DockerExecuteTool) Name() string        { return "docker_execute" }
func (t *DockerExecuteTool) Description() string {
	return "Executes a shell command inside a disposable container, for commands that need stronger isolation than shell_execute."
}
func (t *DockerExecuteTool) Backend() sandbox.Backend { return sandbox.BackendShell }

func (t *DockerExecuteTool) Metadata() sandbox.ToolMetadata {
	return sandbox.ToolMetadata{
		Category:            "execution",
		Risk:                sandbox.RiskHigh,
		Reversible:          false,
		EstimatedDurationMS: int(DefaultShellTimeout.Milliseconds()),
		Tags:                []string{"shell", "container", "docker"},
		Semver:              "1.0.0",
	}
}

func (t *DockerExecuteTool) Capabilities() []sandbox.Capability {
	return []sandbox.Capability{sandbox.CapabilityExecute, sandbox.CapabilityFetchNet}
}

func (t *DockerExecuteTool) InputSchema() *sandbox.JSONSchema {
	return sandbox.NewObjectSchema(map[string]*sandbox.JSONSchema{
		"command": sandbox.NewStringSchema("Shell command to execute inside the container."),
		"image":   sandbox.NewStringSchema("Container image to run the command in (default: alpine:3.20)."),
	}, "command")
}

func (t *DockerExecuteTool) Preflight(input map[string]interface{}) (*sandbox.Operation, error) {
	command, _ := input["command"].(string)
	return &sandbox.Operation{
		OperationType: "docker_exec",
		Target:        t.image,
		Risk:          sandbox.RiskHigh,
		Summary:       "run in container: " + command,
	}, nil
}

func (t *DockerExecuteTool) Execute(ctx context.Context, input map[string]interface{}) (*sandbox.Result, error) {
	command, ok := input["command"].(string)
	if !ok || command == "" {
		return nil, &sandbox.Error{Code: "INVALID_PARAMS", Message: "command is required"}
	}
	image := t.image
	if img, ok := input["image"].(string); ok && img != "" {
		image = img
	}

	runCtx, cancel := context.WithTimeout(ctx, DefaultShellTimeout)
	defer cancel()

	resp, err := t.cli.ContainerCreate(runCtx, &container.Config{
		Image:      image,
		Cmd:        []string{"/bin/sh", "-c", command},
		Tty:        false,
		WorkingDir: "/",
	}, &container.HostConfig{AutoRemove: false}, nil, nil, "")
	if err != nil {
		return nil, &sandbox.Error{Code: "EXEC_FAILED", Message: fmt.Sprintf("creating container: %v", err)}
	}
	defer t.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})

	if err := t.cli.ContainerStart(runCtx, resp.ID, container.StartOptions{}); err != nil {
		return nil, &sandbox.Error{Code: "EXEC_FAILED", Message: fmt.Sprintf("starting container: %v", err)}
	}

	start := time.Now()
	waitCh, errCh := t.cli.ContainerWait(runCtx, resp.ID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case err := <-errCh:
		if err != nil {
			return nil, &sandbox.Error{Code: "EXEC_FAILED", Message: fmt.Sprintf("waiting on container: %v", err)}
		}
	case res := <-waitCh:
		exitCode = res.StatusCode
	}

	logs, err := t.cli.ContainerLogs(context.Background(), resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return nil, &sandbox.Error{Code: "EXEC_FAILED", Message: fmt.Sprintf("reading logs: %v", err)}
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, io.LimitReader(logs, DefaultMaxOutputBytes)); err != nil && err != io.EOF {
		return nil, &sandbox.Error{Code: "EXEC_FAILED", Message: fmt.Sprintf("demuxing logs: %v", err)}
	}

	return &sandbox.Result{
		Output: stdout.String(),
		Metadata: map[string]interface{}{
			"stderr":      stderr.String(),
			"exit_code":   int(exitCode),
			"duration_ms": time.Since(start).Milliseconds(),
			"image":       image,
		},
	}, nil
}
