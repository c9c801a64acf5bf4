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

// Package config loads Warp's configuration the way the teacher's looms
// server loads its own (cmd/looms/config.go): CLI flags override
// environment variables, which override a config file, which overrides
// defaults, with secrets backfilled from the system keyring as a final pass.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirEnvVar overrides the data directory, mirroring the teacher's
	// LOOM_DATA_DIR.
	DataDirEnvVar = "WARP_DATA_DIR"
	// DefaultConfigFileName is the base name viper searches for (warp.yaml).
	DefaultConfigFileName = "warp"
	// ServiceName is the keyring service name under which secrets are stored.
	ServiceName = "warp"
)

// GetDataDir returns Warp's data directory.
//
// Priority:
//  1. WARP_DATA_DIR environment variable
//  2. ~/.warp
//
// This reads directly from os.Getenv, not viper, since it's needed to
// locate the config file before viper itself is configured.
func GetDataDir() string {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return expandPath(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".warp"
	}
	return filepath.Join(home, ".warp")
}

// GetSubDir returns a subdirectory within the data directory, e.g.
// GetSubDir("checkpoints") -> ~/.warp/checkpoints.
func GetSubDir(sub string) string {
	return filepath.Join(GetDataDir(), sub)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
