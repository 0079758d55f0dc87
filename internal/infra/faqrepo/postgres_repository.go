package faqrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/oyado/faqbot/internal/domain/faq"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// PostgresRepository implements faq.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListByCompany fetches all entries for a company in creation order.
func (r *PostgresRepository) ListByCompany(ctx context.Context, companyID string) ([]faq.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, question, answer, topic, embedding, created_at, updated_at
		FROM faq_entries
		WHERE company_id = $1
		ORDER BY created_at, id
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []faq.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get fetches one entry scoped to the company.
func (r *PostgresRepository) Get(ctx context.Context, companyID, id string) (faq.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, question, answer, topic, embedding, created_at, updated_at
		FROM faq_entries
		WHERE company_id = $1 AND id = $2
		LIMIT 1
	`, companyID, id)
	if err != nil {
		return faq.Entry{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return faq.Entry{}, err
		}
		return faq.Entry{}, apperrors.Wrap(faq.CodeNotFound, "faq entry not found", nil)
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return faq.Entry{}, err
	}
	return entry, rows.Err()
}

// Insert stores a new entry.
func (r *PostgresRepository) Insert(ctx context.Context, entry faq.Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO faq_entries (id, company_id, question, answer, topic, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.CompanyID, entry.Question, entry.Answer, nullableTopic(entry.Topic),
		pgvector.NewVector(entry.Embedding), entry.CreatedAt, entry.UpdatedAt)
	return err
}

// Update rewrites an existing entry.
func (r *PostgresRepository) Update(ctx context.Context, entry faq.Entry) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE faq_entries
		SET question = $3, answer = $4, topic = $5, embedding = $6, updated_at = $7
		WHERE company_id = $1 AND id = $2
	`, entry.CompanyID, entry.ID, entry.Question, entry.Answer, nullableTopic(entry.Topic),
		pgvector.NewVector(entry.Embedding), entry.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(faq.CodeNotFound, "faq entry not found", nil)
	}
	return nil
}

// Delete removes one entry.
func (r *PostgresRepository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM faq_entries
		WHERE company_id = $1 AND id = $2
	`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(faq.CodeNotFound, "faq entry not found", nil)
	}
	return nil
}

// ReplaceAll swaps the company's entry set in one transaction.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, companyID string, entries []faq.Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM faq_entries WHERE company_id = $1`, companyID); err != nil {
		return err
	}
	for _, entry := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO faq_entries (id, company_id, question, answer, topic, embedding, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, entry.ID, entry.CompanyID, entry.Question, entry.Answer, nullableTopic(entry.Topic),
			pgvector.NewVector(entry.Embedding), entry.CreatedAt, entry.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (faq.Entry, error) {
	var (
		entry faq.Entry
		topic sql.NullString
		vec   pgvector.Vector
	)
	if err := row.Scan(&entry.ID, &entry.CompanyID, &entry.Question, &entry.Answer,
		&topic, &vec, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return faq.Entry{}, err
	}
	if topic.Valid {
		entry.Topic = topic.String
	}
	entry.Embedding = vec.Slice()
	return entry, nil
}

func nullableTopic(topic string) any {
	if topic == "" {
		return nil
	}
	return topic
}

var _ faq.Repository = (*PostgresRepository)(nil)
