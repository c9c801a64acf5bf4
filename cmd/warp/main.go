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

// Command warp is the interactive terminal orchestrator: it wires the
// token estimator, safety analyzer, tool sandbox, approval engine,
// progressive token manager, input queue, agent scheduler, and
// orchestrator state machine into one process, grounded on the teacher's
// cmd/loom-standalone (an all-in-one server+TUI binary) collapsed into a
// single binary with no gRPC split, per SPEC_FULL.md §9.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a top-level error to the CLI's documented exit codes:
// 0 normal, 1 unhandled error, 130 SIGINT.
func exitCode(err error) int {
	if err == errInterrupted {
		return 130
	}
	return 1
}
