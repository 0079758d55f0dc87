package embedding

import (
	"context"

	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// Error codes reported by providers. Rate limiting and upstream outages are
// transient; auth failures are configuration problems and must reach the
// operator instead of being papered over.
const (
	CodeRateLimited = "provider_rate_limited"
	CodeUnavailable = "provider_unavailable"
	CodeAuth        = "provider_auth"
)

// Provider converts free text into fixed-length vectors.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IsTransient reports whether the failure is worth retrying.
func IsTransient(err error) bool {
	return apperrors.IsCode(err, CodeRateLimited) || apperrors.IsCode(err, CodeUnavailable)
}

// IsFatal reports a non-retryable provider failure.
func IsFatal(err error) bool {
	return apperrors.IsCode(err, CodeAuth)
}
