package embedding

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/oyado/faqbot/pkg/errors"
)

type stubProvider struct {
	embedFunc      func(ctx context.Context, text string) ([]float32, error)
	embedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls          int
}

func (s *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.embedFunc(ctx, text)
}

func (s *stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	return s.embedBatchFunc(ctx, texts)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFallbackProviderSuccessNoRetry(t *testing.T) {
	stub := &stubProvider{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 2, 3}, nil
		},
	}
	provider := NewFallbackProvider(stub, NewHashEmbedder(3), 3, time.Millisecond, newTestLogger())

	vec, err := provider.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, vec)
	require.Equal(t, 1, stub.calls)
}

func TestFallbackProviderRetriesThenSucceeds(t *testing.T) {
	stub := &stubProvider{}
	stub.embedFunc = func(ctx context.Context, text string) ([]float32, error) {
		if stub.calls < 3 {
			return nil, apperrors.Wrap(CodeUnavailable, "upstream down", nil)
		}
		return []float32{9}, nil
	}
	provider := NewFallbackProvider(stub, NewHashEmbedder(1), 3, time.Millisecond, newTestLogger())

	vec, err := provider.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, []float32{9}, vec)
	require.Equal(t, 3, stub.calls)
}

func TestFallbackProviderDegradesAfterBudget(t *testing.T) {
	stub := &stubProvider{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, apperrors.Wrap(CodeUnavailable, "upstream down", nil)
		},
	}
	degraded := NewHashEmbedder(16)
	provider := NewFallbackProvider(stub, degraded, 3, time.Millisecond, newTestLogger())

	vec, err := provider.Embed(context.Background(), "hello")
	require.NoError(t, err)
	// Initial attempt plus three retries.
	require.Equal(t, 4, stub.calls)

	expected, err := degraded.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, expected, vec)
}

func TestFallbackProviderFatalNotRetried(t *testing.T) {
	stub := &stubProvider{
		embedFunc: func(ctx context.Context, text string) ([]float32, error) {
			return nil, apperrors.Wrap(CodeAuth, "bad key", nil)
		},
	}
	provider := NewFallbackProvider(stub, NewHashEmbedder(16), 3, time.Millisecond, newTestLogger())

	_, err := provider.Embed(context.Background(), "hello")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeAuth))
	require.Equal(t, 1, stub.calls)
}

func TestFallbackProviderBatchDegrades(t *testing.T) {
	stub := &stubProvider{
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, apperrors.Wrap(CodeRateLimited, "slow down", nil)
		},
	}
	degraded := NewHashEmbedder(8)
	provider := NewFallbackProvider(stub, degraded, 1, time.Millisecond, newTestLogger())

	vectors, err := provider.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	require.Equal(t, 2, stub.calls)
}
