package llm

import (
	"regexp"
	"strings"
)

// ModelCost holds per-million-token pricing for a model in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// modelCosts prices the models the friendly names in anthropicModels,
// openaiModels and geminiModels resolve to, plus the OpenRouter default.
// Source: models.dev, 2026-02-15.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5-20251001": {1, 5},
	"claude-sonnet-4-20250514":  {3, 15},
	"gpt-4o":                    {2.5, 10},
	"gpt-4o-mini":               {0.15, 0.6},
	"gemini-2.0-flash":          {0.1, 0.4},
}

// versionSuffix matches the dated or numbered suffixes providers append to
// the model that served a request: "-2024-07-18", "-001", "-exp".
var versionSuffix = regexp.MustCompile(`-(\d{4}-\d{2}-\d{2}|\d{3}|exp)$`)

// LookupCost returns the pricing for a model ID as recorded on LLM events,
// or nil if the model is not priced. OpenRouter vendor prefixes, Gemini's
// "models/" prefix and version suffixes are ignored.
func LookupCost(modelID string) *ModelCost {
	id := strings.TrimPrefix(modelID, "models/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	for {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
		trimmed := versionSuffix.ReplaceAllString(id, "")
		if trimmed == id {
			return nil
		}
		id = trimmed
	}
}
