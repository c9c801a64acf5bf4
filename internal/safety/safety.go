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

// Package safety classifies proposed tool invocations by risk before they
// run, so the approval engine has something concrete to gate on instead of
// trusting each tool's self-reported risk level.
package safety

import "strings"

// RiskLevel orders from safest to most dangerous; comparisons use the
// ordinal, never the string.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskCritical:
		return "critical"
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	default:
		return "low"
	}
}

// escalate raises r to at least floor, never lowering it.
func escalate(r, floor RiskLevel) RiskLevel {
	if floor > r {
		return floor
	}
	return r
}

// Cognitive is advisory-only metadata about a proposed operation. It is
// never consulted by the approval engine's decision algorithm: the source
// material's intent/confidence annotations are populated inconsistently,
// so they're surfaced to a human reviewer and nothing else.
type Cognitive struct {
	Intent      string
	Confidence  float64
	Risks       []string
	Suggestions []string
}

// PreflightReport is the result of analyzing a proposed tool invocation
// before it runs.
type PreflightReport struct {
	RiskLevel     RiskLevel
	OperationType string
	Reasons       []string
	AffectedPaths []string
	Summary       string
	Cognitive     *Cognitive
}

// CommandInput is the input to PreflightCommand.
type CommandInput struct {
	Tool    string
	OpType  string
	Command string
	WorkDir string
}

var criticalPatterns = []string{"rm -rf", "fdisk", "mkfs", "dd if=", "format", "shutdown", "reboot"}
var highPatterns = []string{"sudo", "chmod 777", "chown", "del"}
var mediumPatterns = []string{"npm install", "yarn add", "docker run", "curl", "wget"}

// PreflightCommand classifies a shell command by risk. Rules are applied
// in precedence order: critical, then high, then medium; a match only
// escalates the running risk level, it never de-escalates one set by an
// earlier rule.
func PreflightCommand(in CommandInput) PreflightReport {
	cmd := strings.ToLower(in.Command)
	risk := RiskLow
	var reasons []string

	for _, p := range criticalPatterns {
		if strings.Contains(cmd, p) {
			risk = escalate(risk, RiskCritical)
			reasons = append(reasons, "Critical destructive pattern detected")
			break
		}
	}
	for _, p := range highPatterns {
		if strings.Contains(cmd, p) {
			risk = escalate(risk, RiskHigh)
			reasons = append(reasons, "High-privilege command pattern detected")
			break
		}
	}
	for _, p := range mediumPatterns {
		if strings.Contains(cmd, p) {
			risk = escalate(risk, RiskMedium)
			reasons = append(reasons, "Package install / network / container execution detected")
			break
		}
	}
	if risk == RiskLow && strings.Contains(in.Command, "..") {
		risk = escalate(risk, RiskMedium)
		reasons = append(reasons, "Path traversal sequence present")
	}

	return PreflightReport{
		RiskLevel:     risk,
		OperationType: in.OpType,
		Reasons:       reasons,
		Summary:       summarize(in.Tool, in.OpType, risk),
	}
}

// FilesInput is the input to PreflightFiles.
type FilesInput struct {
	Tool   string
	OpType string
	Paths  []string
}

// PreflightFiles classifies a file operation by risk based on the paths
// it touches: any .git/ path escalates to high, any dotenv file to at
// least medium, and any batch of more than 20 paths to at least medium.
func PreflightFiles(in FilesInput) PreflightReport {
	risk := RiskLow
	var reasons []string

	for _, p := range in.Paths {
		if strings.Contains(p, ".git/") || strings.HasSuffix(p, ".git") {
			risk = escalate(risk, RiskHigh)
			reasons = append(reasons, "Operation touches .git/ internals")
			break
		}
	}
	for _, p := range in.Paths {
		base := p
		if idx := strings.LastIndex(p, "/"); idx >= 0 {
			base = p[idx+1:]
		}
		if strings.HasPrefix(base, ".env") {
			risk = escalate(risk, RiskMedium)
			reasons = append(reasons, "Operation touches an environment file")
			break
		}
	}
	if len(in.Paths) > 20 {
		risk = escalate(risk, RiskMedium)
		reasons = append(reasons, "Batch of more than 20 paths")
	}

	return PreflightReport{
		RiskLevel:     risk,
		OperationType: in.OpType,
		Reasons:       reasons,
		AffectedPaths: in.Paths,
		Summary:       summarize(in.Tool, in.OpType, risk),
	}
}

func summarize(tool, opType string, risk RiskLevel) string {
	return tool + " " + opType + " classified " + risk.String()
}
