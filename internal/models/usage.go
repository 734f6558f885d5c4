package models

// UsageRecord holds the token counters reported for a single completion call.
type UsageRecord struct {
	InputTokens         int `json:"input_tokens"`
	CacheReadTokens     int `json:"cache_read_input_tokens,omitempty"`
	CacheCreationTokens int `json:"cache_creation_input_tokens,omitempty"`
	OutputTokens        int `json:"output_tokens"`
}

// TotalInput is the prompt size as if nothing had been cached.
func (u UsageRecord) TotalInput() int {
	return u.InputTokens + u.CacheReadTokens
}

// CacheStatus tells whether the cacheable prompt segment was served from cache.
type CacheStatus string

const (
	CacheHit  CacheStatus = "hit"
	CacheMiss CacheStatus = "miss"
)
