package chat

import (
	"time"

	"github.com/oyado/faqbot/internal/domain/faq"
	"github.com/oyado/faqbot/pkg/metrics"
)

// Error codes for chat operations.
const (
	CodeInvalid = "chat_invalid"
)

// Request is one end-user question.
type Request struct {
	CompanyID string `json:"-"`
	Question  string `json:"question"`
	UserID    string `json:"user_id,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

// Response is what the bot sends back.
type Response struct {
	Answer          string             `json:"answer"`
	Matched         bool               `json:"matched"`
	Score           float64            `json:"score"`
	MatchedQuestion string             `json:"matched_question,omitempty"`
	Topic           string             `json:"topic,omitempty"`
	Usage           metrics.TokenUsage `json:"usage"`
}

// MatchResult is the outcome of comparing a query vector against a
// candidate set. Entry is nil when there were no candidates.
type MatchResult struct {
	Entry     *faq.Entry
	Score     float64
	Confident bool
}

// HistoryRecord is one stored conversation turn.
type HistoryRecord struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	UserID       string    `json:"user_id,omitempty"`
	UserName     string    `json:"user_name,omitempty"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Matched      bool      `json:"matched"`
	Score        float64   `json:"score"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CreatedAt    time.Time `json:"created_at"`
}

// TrendingQuestion is a question and how often it was asked.
type TrendingQuestion struct {
	Question string `json:"question"`
	Count    int64  `json:"count"`
}
