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
package tokens

// ModelLimits describes a model family's context window and the output
// budget Warp reserves from it by default.
type ModelLimits struct {
	MaxContextTokens    int
	ReservedOutputTokens int
}

// Pricing is per-million-token USD rates for a model family.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
	DisplayName string
}

var modelLimits = map[string]ModelLimits{
	"claude-sonnet-4-20250514":   {MaxContextTokens: 200_000, ReservedOutputTokens: 8_192},
	"claude-opus-4-20250514":     {MaxContextTokens: 200_000, ReservedOutputTokens: 8_192},
	"claude-3-5-sonnet-20241022": {MaxContextTokens: 200_000, ReservedOutputTokens: 8_192},
	"claude-3-5-haiku-20241022":  {MaxContextTokens: 200_000, ReservedOutputTokens: 4_096},
	"claude-3-opus-20240229":     {MaxContextTokens: 200_000, ReservedOutputTokens: 4_096},
	"claude-3-haiku-20240307":    {MaxContextTokens: 200_000, ReservedOutputTokens: 4_096},
	"gpt-4-turbo":                {MaxContextTokens: 128_000, ReservedOutputTokens: 4_096},
	"llama3.1":                   {MaxContextTokens: 128_000, ReservedOutputTokens: 4_096},
	"llama3":                     {MaxContextTokens: 8_192, ReservedOutputTokens: 2_048},
	"mistral":                    {MaxContextTokens: 32_768, ReservedOutputTokens: 4_096},
	"qwen2.5":                    {MaxContextTokens: 32_768, ReservedOutputTokens: 4_096},
	"deepseek":                   {MaxContextTokens: 64_000, ReservedOutputTokens: 4_096},
	"gemma2":                     {MaxContextTokens: 8_192, ReservedOutputTokens: 2_048},
	"phi3":                       {MaxContextTokens: 128_000, ReservedOutputTokens: 4_096},
	"default":                    {MaxContextTokens: 32_768, ReservedOutputTokens: 4_096},
}

var modelPricing = map[string]Pricing{
	"claude-sonnet-4-20250514":   {3.0, 15.0, "Claude Sonnet 4"},
	"claude-opus-4-20250514":     {15.0, 75.0, "Claude Opus 4"},
	"claude-3-5-sonnet-20241022": {3.0, 15.0, "Claude 3.5 Sonnet"},
	"claude-3-5-haiku-20241022":  {0.8, 4.0, "Claude 3.5 Haiku"},
	"claude-3-opus-20240229":     {15.0, 75.0, "Claude 3 Opus"},
	"claude-3-haiku-20240307":    {0.25, 1.25, "Claude 3 Haiku"},
	"default":                    {3.0, 15.0, "Unknown model"},
}

// LimitsFor returns the context/output limits for a model family,
// falling back to a conservative default for unrecognized models.
func LimitsFor(model string) ModelLimits {
	if l, ok := modelLimits[model]; ok {
		return l
	}
	return modelLimits["default"]
}

// PricingFor returns (inputPer1M, outputPer1M, displayName) for a model.
func PricingFor(model string) (float64, float64, string) {
	p, ok := modelPricing[model]
	if !ok {
		p = modelPricing["default"]
	}
	return p.InputPer1M, p.OutputPer1M, p.DisplayName
}
