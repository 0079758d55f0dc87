package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLineNotifierSendsForm(t *testing.T) {
	var gotAuth, gotMessage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		gotAuth = r.Header.Get("Authorization")
		gotMessage = r.PostFormValue("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewLineNotifier(server.URL, time.Second, newTestLogger())
	err := notifier.NotifyLowConfidence(context.Background(), "company-token", "hotel-aoi", "Do you allow pets?", 0.42)
	require.NoError(t, err)
	require.Equal(t, "Bearer company-token", gotAuth)
	require.Contains(t, gotMessage, "hotel-aoi")
	require.Contains(t, gotMessage, "Do you allow pets?")
	require.Contains(t, gotMessage, "0.42")
}

func TestLineNotifierRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":401}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	notifier := NewLineNotifier(server.URL, time.Second, newTestLogger())
	err := notifier.NotifyLowConfidence(context.Background(), "bad-token", "hotel-aoi", "q", 0.1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
