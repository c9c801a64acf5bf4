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
	"golang.org/x/mod/semver"

	"github.com/loomware/warp/internal/slice"
)

// Capability is one of the coarse-grained powers a session can grant a
// tool. A tool's union of capabilities is checked against what the
// session actually granted before it's offered to an agent.
type Capability string

const (
	CapabilityExecute    Capability = "execute"
	CapabilityReadFile   Capability = "read-file"
	CapabilityWriteFile  Capability = "write-file"
	CapabilityDeleteFile Capability = "delete-file"
	CapabilityFetchNet   Capability = "fetch-network"
)

// CapabilityDeclarer is implemented by tools that need something other
// than the backend-derived default capability set, e.g. shell_execute
// wanting both execute and fetch-network because commands like curl can
// reach the network.
type CapabilityDeclarer interface {
	Capabilities() []Capability
}

// defaultCapabilities infers a tool's capability set from its backend when
// it doesn't implement CapabilityDeclarer. This covers the common case
// without forcing every builtin tool to redeclare the obvious.
func defaultCapabilities(t Tool) []Capability {
	if cd, ok := t.(CapabilityDeclarer); ok {
		return cd.Capabilities()
	}
	switch t.Backend() {
	case BackendShell:
		return []Capability{CapabilityExecute}
	case BackendNetwork:
		return []Capability{CapabilityFetchNet}
	case BackendGit:
		return []Capability{CapabilityReadFile, CapabilityWriteFile, CapabilityExecute}
	case BackendFilesystem:
		switch t.Name() {
		case "file_write", "file_edit", "json_patch":
			return []Capability{CapabilityReadFile, CapabilityWriteFile}
		default:
			return []Capability{CapabilityReadFile}
		}
	case BackendSearch:
		return []Capability{CapabilityReadFile}
	default:
		return nil
	}
}

// ValidationResult is the outcome of checking a tool's required
// capabilities against what a session actually granted it.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validate checks that name is registered and that every capability it
// needs is present in granted. High-risk or irreversible tools earn a
// warning even when they validate cleanly, since an operator scanning a
// session's tool list should notice them without having to dig further.
func (r *Registry) Validate(name string, granted []Capability) *ValidationResult {
	result := &ValidationResult{Valid: true}

	tool, ok := r.Get(name)
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, "tool \""+name+"\" is not registered")
		return result
	}

	for _, need := range defaultCapabilities(tool) {
		if !slice.Contains(granted, need) {
			result.Valid = false
			result.Errors = append(result.Errors, "missing capability \""+string(need)+"\" required by \""+name+"\"")
		}
	}

	if mp, ok := tool.(MetadataProvider); ok {
		meta := mp.Metadata()
		if meta.Risk == RiskHigh {
			result.Warnings = append(result.Warnings, "\""+name+"\" is high-risk")
		}
		if !meta.Reversible {
			result.Warnings = append(result.Warnings, "\""+name+"\" is not reversible")
		}
		if meta.Semver != "" && !semver.IsValid(canonicalSemver(meta.Semver)) {
			result.Warnings = append(result.Warnings, "\""+name+"\" declares a malformed semver "+meta.Semver)
		}
	}

	return result
}

// canonicalSemver prefixes a bare "1.0.0" with "v" since
// golang.org/x/mod/semver only recognizes the "vMAJOR.MINOR.PATCH" form,
// while tool metadata (mirroring npm/package.json convention) omits it.
func canonicalSemver(v string) string {
	if v == "" || v[0] == 'v' {
		return v
	}
	return "v" + v
}
