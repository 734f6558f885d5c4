package config

import "strings"

type Model string

const (
	ModelClaudeHaiku35  Model = "claude-3-5-haiku-20241022"
	ModelClaudeSonnet37 Model = "claude-3-7-sonnet-20250219"
	ModelClaudeSonnet4  Model = "claude-sonnet-4-20250514"
	ModelClaudeOpus4    Model = "claude-opus-4-20250514"
)

// DefaultModel is the cheapest model that supports prompt caching.
const DefaultModel = ModelClaudeHaiku35

func SupportedModels() []Model {
	return []Model{
		ModelClaudeHaiku35,
		ModelClaudeSonnet37,
		ModelClaudeSonnet4,
		ModelClaudeOpus4,
	}
}

const (
	minCacheableTokens      = 1024
	minCacheableTokensHaiku = 2048
)

// MinCacheableTokens is the shortest prompt prefix the model will cache.
// Shorter prefixes are processed normally and never produce a cache hit.
func MinCacheableTokens(model string) int {
	if strings.Contains(strings.ToLower(model), "haiku") {
		return minCacheableTokensHaiku
	}
	return minCacheableTokens
}
