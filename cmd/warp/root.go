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
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/loomware/warp/internal/config"
	"github.com/loomware/warp/internal/log"
)

// errInterrupted is the error main maps to exit code 130. Nothing in this
// package returns it: "/exit", "/quit" and end of input end the
// interactive loop with a nil error, and SIGINT is not trapped, so it ends
// the process through Go's default signal handling.
var errInterrupted = errors.New("warp: interrupted")

var (
	cfgFile  string
	provider string
	apiKey   string
	model    string
	yoloMode bool
)

var rootCmd = &cobra.Command{
	Use:     "warp",
	Short:   "Warp - an interactive agent orchestrator",
	Version: "0.1.0",
	Long: heredoc.Doc(`
		Warp turns natural-language input into streams of work executed by
		LLM agents and a sandboxed tool layer: a bounded input queue, a concurrent
		agent scheduler, token-budgeted context management, and a risk-scored
		approval engine, all driven from one terminal session.`),
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $WARP_DATA_DIR/warp.yaml)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider override (anthropic, bedrock)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "LLM API key override")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "LLM model override")
	rootCmd.PersistentFlags().BoolVar(&yoloMode, "yolo", false, "auto-approve everything below high risk (basic tier only)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(chatCmd)
}

// loadConfig loads configuration and applies the CLI-flag overrides on
// top, so flags win over environment variables, the config file and
// defaults (cmd/looms/config.go does the same override dance on its own
// Config).
func loadConfig() (*config.Config, *viper.Viper, error) {
	v := viper.New()
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cfg)
	return cfg, v, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if provider != "" {
		cfg.LLM.Provider = provider
	}
	if apiKey != "" {
		cfg.LLM.AnthropicAPIKey = apiKey
	}
	if model != "" {
		cfg.LLM.AnthropicModel = model
	}
	if yoloMode {
		cfg.Approval.AutoApproveRead = true
	}
}

func setupLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Logging.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zcfg.Level = level

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	log.SetLogger(logger)
	return logger, nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, v, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rt, err := newRuntime(cfg)
	if err != nil {
		return fmt.Errorf("initializing runtime: %w", err)
	}
	defer rt.Close()

	watcher, err := config.WatchConfig(v, func(reloaded *config.Config, err error) {
		if err != nil {
			log.Warn("config reload failed, keeping previous settings", zap.Error(err))
			return
		}
		applyFlagOverrides(reloaded)
		log.Info("config file changed on disk; restart warp to pick up the new settings")
	})
	if err != nil {
		log.Warn("config hot-reload disabled", zap.Error(err))
	} else if watcher != nil {
		defer watcher.Close()
	}

	return rt.REPL(os.Stdin, os.Stdout, os.Stderr)
}
