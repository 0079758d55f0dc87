package chat

import "context"

// HistoryRepository persists conversation turns.
type HistoryRepository interface {
	Insert(ctx context.Context, record HistoryRecord) error
	// ListByCompany returns the most recent records, newest first.
	ListByCompany(ctx context.Context, companyID string, limit int) ([]HistoryRecord, error)
}

// TrendingStore tracks question frequency per company.
type TrendingStore interface {
	RecordQuestion(ctx context.Context, companyID, question string) error
	TopQuestions(ctx context.Context, companyID string, limit int) ([]TrendingQuestion, error)
}

// Notifier alerts operators about questions the bot could not answer.
type Notifier interface {
	NotifyLowConfidence(ctx context.Context, token, companyID, question string, score float64) error
}
