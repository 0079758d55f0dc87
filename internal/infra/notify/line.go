package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oyado/faqbot/internal/domain/chat"
)

const defaultLineEndpoint = "https://notify-api.line.me/api/notify"

// LineNotifier posts low-confidence questions to LINE Notify so staff can
// follow up with the guest manually.
type LineNotifier struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLineNotifier constructs the notifier.
func NewLineNotifier(endpoint string, timeout time.Duration, logger *slog.Logger) *LineNotifier {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultLineEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LineNotifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "notify.line"),
	}
}

// NotifyLowConfidence sends one message using the company's token.
func (n *LineNotifier) NotifyLowConfidence(ctx context.Context, token, companyID, question string, score float64) error {
	message := fmt.Sprintf("[%s] Unanswered question (score %.2f): %s", companyID, score, question)
	form := url.Values{"message": {message}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("notify rejected: status=%d body=%s", resp.StatusCode, string(body))
	}
	n.logger.Debug("notification sent", "company_id", companyID)
	return nil
}

var _ chat.Notifier = (*LineNotifier)(nil)
