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
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// mcpCmd lists the MCP servers warp is configured to know about. Adapted
// from the teacher's "mcp list" (cmd/loom/mcp.go), which dials a running
// server and calls ListMCPServers over gRPC; warp has no server process to
// dial, so this reads the same information straight out of its own
// config.MCP instead. There is no "test"/"tools" subcommand here because
// warp does not yet speak the MCP wire protocol itself -- configured
// entries are informational until a client is wired in, per
// SPEC_FULL.md's read-only status note.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "List configured MCP servers",
	RunE:  runMCPListCommand,
}

func runMCPListCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if len(cfg.MCP) == 0 {
		fmt.Println("No MCP servers configured.")
		fmt.Println("Add entries under mcp_servers in the config file to register one.")
		return nil
	}

	fmt.Printf("%-20s %-10s %-s\n", "NAME", "TRANSPORT", "TARGET")
	fmt.Println(strings.Repeat("-", 70))
	for _, s := range cfg.MCP {
		transport := "stdio"
		target := s.Command
		if len(s.Args) > 0 {
			target += " " + strings.Join(s.Args, " ")
		}
		if s.URL != "" {
			transport = "http"
			target = s.URL
		}
		fmt.Printf("%-20s %-10s %-s\n", s.Name, transport, target)
	}
	return nil
}
