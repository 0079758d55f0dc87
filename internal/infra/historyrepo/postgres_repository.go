package historyrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oyado/faqbot/internal/domain/chat"
)

// PostgresRepository implements chat.HistoryRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores one conversation turn.
func (r *PostgresRepository) Insert(ctx context.Context, record chat.HistoryRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_history
			(id, company_id, user_id, user_name, question, answer, matched, score, input_tokens, output_tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, record.ID, record.CompanyID, nullable(record.UserID), nullable(record.UserName),
		record.Question, record.Answer, record.Matched, record.Score,
		record.InputTokens, record.OutputTokens, record.CreatedAt)
	return err
}

// ListByCompany returns the most recent records, newest first.
func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]chat.HistoryRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, user_id, user_name, question, answer, matched, score, input_tokens, output_tokens, created_at
		FROM chat_history
		WHERE company_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []chat.HistoryRecord
	for rows.Next() {
		var (
			record   chat.HistoryRecord
			userID   sql.NullString
			userName sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.CompanyID, &userID, &userName,
			&record.Question, &record.Answer, &record.Matched, &record.Score,
			&record.InputTokens, &record.OutputTokens, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.UserID = userID.String
		record.UserName = userName.String
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ chat.HistoryRepository = (*PostgresRepository)(nil)
