package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/oyado/faqbot/pkg/errors"
)

const defaultVoyageBaseURL = "https://api.voyageai.com/v1"

// VoyageClient performs HTTP requests to the VoyageAI embeddings API.
type VoyageClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type voyageEmbeddingRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type,omitempty"`
}

type voyageEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewVoyageClient constructs the embeddings client.
func NewVoyageClient(apiKey, baseURL, model string, timeout time.Duration) (*VoyageClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("voyage api key cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("voyage model cannot be empty")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultVoyageBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VoyageClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Embed requests a single embedding.
func (c *VoyageClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, apperrors.Wrap(CodeUnavailable, "embedding response empty", nil)
	}
	return vectors[0], nil
}

// EmbedBatch requests embeddings for the given texts in one call.
func (c *VoyageClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(voyageEmbeddingRequest{
		Input:     texts,
		Model:     c.model,
		InputType: "document",
	})
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}
	endpoint := c.baseURL + "/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(CodeUnavailable, "embedding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, classifyStatus(resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(CodeUnavailable, "read embedding response", err)
	}
	var decoded voyageEmbeddingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apperrors.Wrap(CodeUnavailable, "decode embedding response", err)
	}
	if len(decoded.Data) != len(texts) {
		return nil, apperrors.Wrap(CodeUnavailable,
			fmt.Sprintf("embedding count mismatch: expected %d got %d", len(texts), len(decoded.Data)), nil)
	}
	vectors := make([][]float32, len(decoded.Data))
	for _, item := range decoded.Data {
		vec := make([]float32, len(item.Embedding))
		copy(vec, item.Embedding)
		if item.Index >= 0 && item.Index < len(vectors) {
			vectors[item.Index] = vec
		}
	}
	return vectors, nil
}

func classifyStatus(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Wrap(CodeAuth,
			fmt.Sprintf("embedding auth failed: status=%d body=%s", status, body), nil)
	case status == http.StatusTooManyRequests:
		return apperrors.Wrap(CodeRateLimited,
			fmt.Sprintf("embedding rate limited: status=%d", status), nil)
	default:
		return apperrors.Wrap(CodeUnavailable,
			fmt.Sprintf("embedding request failed: status=%d body=%s", status, body), nil)
	}
}

var _ Provider = (*VoyageClient)(nil)
