package embedding

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// FallbackProvider wraps a live provider with a fixed-delay retry budget.
// Transient failures are retried up to maxRetries times; once the budget is
// spent the call degrades to the deterministic hash vector instead of
// surfacing the error. Fatal provider errors are returned untouched.
type FallbackProvider struct {
	live       Provider
	degraded   *HashEmbedder
	maxRetries int
	delay      time.Duration
	logger     *slog.Logger
}

// NewFallbackProvider constructs the decorator.
func NewFallbackProvider(live Provider, degraded *HashEmbedder, maxRetries int, delay time.Duration, logger *slog.Logger) *FallbackProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &FallbackProvider{
		live:       live,
		degraded:   degraded,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     logger.With("component", "embedding.fallback"),
	}
}

// Embed requests one embedding with the retry/degrade policy applied.
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := p.retry(ctx, func() error {
		v, embedErr := p.live.Embed(ctx, text)
		if embedErr != nil {
			return embedErr
		}
		vector = v
		return nil
	})
	if err == nil {
		return vector, nil
	}
	if IsFatal(err) {
		return nil, err
	}
	p.logger.Warn("embedding degraded to deterministic vector", "error", err, "retries", p.maxRetries)
	return p.degraded.Embed(ctx, text)
}

// EmbedBatch requests a batch of embeddings with the same policy.
func (p *FallbackProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := p.retry(ctx, func() error {
		v, embedErr := p.live.EmbedBatch(ctx, texts)
		if embedErr != nil {
			return embedErr
		}
		vectors = v
		return nil
	})
	if err == nil {
		return vectors, nil
	}
	if IsFatal(err) {
		return nil, err
	}
	p.logger.Warn("batch embedding degraded to deterministic vectors", "error", err, "count", len(texts))
	return p.degraded.EmbedBatch(ctx, texts)
}

func (p *FallbackProvider) retry(ctx context.Context, operation func() error) error {
	wrapped := func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if IsFatal(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.delay), uint64(p.maxRetries)),
		ctx,
	)
	return backoff.Retry(wrapped, policy)
}

var _ Provider = (*FallbackProvider)(nil)
