package chat

import (
	"sync"

	"github.com/abbiehooper/PolicyChatbot/pkg/anthropic"
)

// UsageMetrics aggregates provider token counters across all sessions.
// Purely observational; nothing reads these for control flow.
type UsageMetrics struct {
	mu sync.RWMutex

	requests                 int64
	inputTokens              int64
	outputTokens             int64
	cacheCreationInputTokens int64
	cacheReadInputTokens     int64
}

type UsageStats struct {
	Requests                 int64 `json:"requests"`
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

func NewUsageMetrics() *UsageMetrics {
	return &UsageMetrics{}
}

func (m *UsageMetrics) Record(usage anthropic.Usage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.inputTokens += int64(usage.InputTokens)
	m.outputTokens += int64(usage.OutputTokens)
	m.cacheCreationInputTokens += int64(usage.CacheCreationInputTokens)
	m.cacheReadInputTokens += int64(usage.CacheReadInputTokens)
}

func (m *UsageMetrics) Stats() UsageStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return UsageStats{
		Requests:                 m.requests,
		InputTokens:              m.inputTokens,
		OutputTokens:             m.outputTokens,
		CacheCreationInputTokens: m.cacheCreationInputTokens,
		CacheReadInputTokens:     m.cacheReadInputTokens,
	}
}
