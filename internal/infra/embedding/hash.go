package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// HashEmbedder derives a deterministic pseudo-vector from a hash of the
// input text. Same text yields the same vector; no semantic relationship is
// implied between similar texts. Used in test mode and as the degradation
// target when the remote provider is unavailable.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder constructs the embedder.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 1024
	}
	return &HashEmbedder{dim: dim}
}

// Embed converts text into a normalized pseudo-random vector.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()

	vector := make([]float32, e.dim)
	for i := 0; i < e.dim; i++ {
		seed = seed*1099511628211 + 1469598103934665603
		vector[i] = float32(seed%997) / 997.0
	}
	normalize(vector)
	return vector, nil
}

// EmbedBatch applies Embed to each text.
func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func normalize(v []float32) {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / magnitude)
	}
}

var _ Provider = (*HashEmbedder)(nil)
