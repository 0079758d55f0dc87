package chat

import (
	"math"

	"github.com/oyado/faqbot/internal/domain/faq"
)

// Matcher scores a query vector against candidate entries by cosine
// similarity. Scores are clamped to [0,1]; a result is confident when the
// best score reaches the threshold.
type Matcher struct {
	threshold float64
}

// NewMatcher constructs a matcher with the given confidence threshold.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured confidence threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the best-scoring candidate. Ties go to the earliest
// candidate; an empty candidate set yields a result with no entry.
func (m *Matcher) Match(query []float32, candidates []faq.Entry) MatchResult {
	best := MatchResult{Score: -1}
	for i := range candidates {
		score := CosineSimilarity(query, candidates[i].Embedding)
		if score > best.Score {
			best = MatchResult{Entry: &candidates[i], Score: score}
		}
	}
	if best.Entry == nil {
		return MatchResult{}
	}
	best.Confident = best.Score >= m.threshold
	return best
}

// CosineSimilarity computes cosine similarity clamped to [0,1]. Mismatched
// or zero-magnitude vectors score zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
