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

// secrets.go mirrors the teacher's GetSecretMappings/loadSecretsFromKeyring
// pair (cmd/looms/config.go): a table of (keyring key, setter, already-set
// check) so adding a new secret-backed field is one entry, not a new
// code path.
package config

// SecretMapping binds one keyring key to a Config field.
type SecretMapping struct {
	KeyringKey string
	Setter     func(*Config, string)
	IsSet      func(*Config) bool
}

// GetSecretMappings returns every secret Warp may resolve from the system
// keyring when it's absent from the environment and config file.
func GetSecretMappings() []SecretMapping {
	return []SecretMapping{
		{
			KeyringKey: "anthropic_api_key",
			Setter:     func(c *Config, v string) { c.LLM.AnthropicAPIKey = v },
			IsSet:      func(c *Config) bool { return c.LLM.AnthropicAPIKey != "" },
		},
	}
}

// loadSecretsFromKeyring fills in any secret-backed field not already set
// via CLI, env, or config file. Failures are non-fatal: the keyring may
// not be available in headless/CI environments.
func loadSecretsFromKeyring(cfg *Config) error {
	for _, m := range GetSecretMappings() {
		if m.IsSet(cfg) {
			continue
		}
		value, err := GetSecretFromKeyring(m.KeyringKey)
		if err == nil && value != "" {
			m.Setter(cfg, value)
		}
	}
	return nil
}

// ListAvailableSecretKeys returns every keyring key Warp knows how to
// resolve, for a future `warp config secrets list` command.
func ListAvailableSecretKeys() []string {
	mappings := GetSecretMappings()
	keys := make([]string, len(mappings))
	for i, m := range mappings {
		keys[i] = m.KeyringKey
	}
	return keys
}
