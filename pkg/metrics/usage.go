package metrics

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// TokenUsage captures token counts attributed to one chat turn.
type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.InputTokens == 0 && u.OutputTokens == 0
}

// TokenCounter estimates token counts for history records.
type TokenCounter struct {
	once     sync.Once
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter constructs a counter. The tiktoken encoding is loaded
// lazily on first use.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{}
}

// Count returns the token count for text, falling back to a rune-based
// estimate when the encoding cannot be loaded.
func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.encoding = enc
		}
	})
	if c.encoding != nil {
		return len(c.encoding.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// Usage counts both sides of a chat turn.
func (c *TokenCounter) Usage(question, answer string) TokenUsage {
	return TokenUsage{
		InputTokens:  c.Count(question),
		OutputTokens: c.Count(answer),
	}
}

// estimateTokens over-estimates at roughly one token per two runes and never
// below the word count.
func estimateTokens(text string) int {
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}
