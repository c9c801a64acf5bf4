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
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	chatMessage string
	chatTimeout time.Duration
)

// chatCmd is the non-interactive counterpart to the REPL: it wires one
// Runtime, submits a single message, waits for the turn (and anything it
// queued, e.g. an approval reply piped in ahead of time) to finish, and
// exits -- grounded on the teacher's cmd/loom/chat.go "flag > args >
// stdin" message resolution, minus its gRPC client since warp has no
// server to dial.
var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message and print the result, without the interactive REPL",
	RunE:  runChatCommand,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "message to send (else read from args or stdin)")
	chatCmd.Flags().DurationVar(&chatTimeout, "timeout", 5*time.Minute, "timeout for the turn")
}

func runChatCommand(cmd *cobra.Command, args []string) error {
	message, err := resolveChatMessage(args)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogger(cfg); err != nil {
		return err
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return fmt.Errorf("initializing runtime: %w", err)
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
	defer cancel()

	if err := rt.orch.Submit(ctx, message, "cli"); err != nil {
		return err
	}
	return rt.orch.DrainQueue(ctx)
}

func resolveChatMessage(args []string) (string, error) {
	var message string
	switch {
	case chatMessage != "":
		message = chatMessage
	case len(args) > 0:
		message = strings.Join(args, " ")
	default:
		scanner := bufio.NewScanner(os.Stdin)
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		message = strings.Join(lines, "\n")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("no message given: pass it as an argument, --message, or on stdin")
	}
	return message, nil
}
