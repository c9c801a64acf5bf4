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

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd prints the fully resolved configuration (flags, file, env,
// defaults all merged) with secrets redacted, so a user can see what
// warp actually loaded without risking an API key ending up in a
// terminal scrollback or bug report.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	RunE:  runConfigCommand,
}

func runConfigCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	redacted := *cfg
	redacted.LLM.AnthropicAPIKey = redactSecret(cfg.LLM.AnthropicAPIKey)

	out, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func redactSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
