package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/oyado/faqbot/pkg/errors"
)

func TestVoyageClientEmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req voyageEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "voyage-3", req.Model)
		require.Len(t, req.Input, 2)

		resp := map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.0, 1.0}, "index": 1},
				{"embedding": []float32{1.0, 0.0}, "index": 0},
			},
			"usage": map[string]int{"total_tokens": 7},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client, err := NewVoyageClient("test-key", server.URL, "voyage-3", time.Second)
	require.NoError(t, err)

	vectors, err := client.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	// Results come back in input order even when the API reorders them.
	require.Equal(t, []float32{1.0, 0.0}, vectors[0])
	require.Equal(t, []float32{0.0, 1.0}, vectors[1])
}

func TestVoyageClientAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewVoyageClient("bad-key", server.URL, "voyage-3", time.Second)
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "hello")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeAuth))
	require.True(t, IsFatal(err))
}

func TestVoyageClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewVoyageClient("test-key", server.URL, "voyage-3", time.Second)
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "hello")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeRateLimited))
	require.True(t, IsTransient(err))
}

func TestVoyageClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewVoyageClient("test-key", server.URL, "voyage-3", time.Second)
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "hello")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeUnavailable))
	require.True(t, IsTransient(err))
}

func TestVoyageClientCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"data": []map[string]any{}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client, err := NewVoyageClient("test-key", server.URL, "voyage-3", time.Second)
	require.NoError(t, err)

	_, err = client.EmbedBatch(context.Background(), []string{"one"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeUnavailable))
}

func TestVoyageClientRequiresKey(t *testing.T) {
	_, err := NewVoyageClient("  ", "", "voyage-3", time.Second)
	require.Error(t, err)
}
