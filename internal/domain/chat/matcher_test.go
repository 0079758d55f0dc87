package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oyado/faqbot/internal/domain/faq"
)

func TestMatcherVerbatimScoresOne(t *testing.T) {
	matcher := NewMatcher(0.6)
	vec := []float32{0.3, 0.5, 0.8}

	result := matcher.Match(vec, []faq.Entry{
		{ID: "a", Embedding: []float32{0.1, 0.9, 0.2}},
		{ID: "b", Embedding: vec},
	})
	require.NotNil(t, result.Entry)
	require.Equal(t, "b", result.Entry.ID)
	require.InDelta(t, 1.0, result.Score, 1e-6)
	require.True(t, result.Confident)
}

func TestMatcherEmptyCandidates(t *testing.T) {
	matcher := NewMatcher(0.6)

	result := matcher.Match([]float32{1, 0}, nil)
	require.Nil(t, result.Entry)
	require.False(t, result.Confident)
	require.Zero(t, result.Score)
}

func TestMatcherTieBreaksEarliest(t *testing.T) {
	matcher := NewMatcher(0.6)
	vec := []float32{1, 0, 0}

	result := matcher.Match(vec, []faq.Entry{
		{ID: "first", Embedding: []float32{2, 0, 0}},
		{ID: "second", Embedding: []float32{3, 0, 0}},
	})
	require.NotNil(t, result.Entry)
	require.Equal(t, "first", result.Entry.ID)
}

func TestMatcherBelowThresholdNotConfident(t *testing.T) {
	matcher := NewMatcher(0.9)

	result := matcher.Match([]float32{1, 0}, []faq.Entry{
		{ID: "a", Embedding: []float32{1, 1}},
	})
	require.NotNil(t, result.Entry)
	require.False(t, result.Confident)
	require.Less(t, result.Score, 0.9)
}

func TestCosineSimilarityClampsNegative(t *testing.T) {
	score := CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	require.Zero(t, score)
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	require.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1}))
	require.Zero(t, CosineSimilarity(nil, nil))
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	require.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	require.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}
