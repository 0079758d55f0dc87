package tenantrepo

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oyado/faqbot/internal/domain/tenant"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// PostgresRepository implements tenant.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List fetches all companies ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]tenant.Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, fallback_answer, topic_filter_enabled, line_token, created_at, updated_at
		FROM companies
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []tenant.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// Get fetches one company.
func (r *PostgresRepository) Get(ctx context.Context, id string) (tenant.Company, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, fallback_answer, topic_filter_enabled, line_token, created_at, updated_at
		FROM companies
		WHERE id = $1
		LIMIT 1
	`, id)
	if err != nil {
		return tenant.Company{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return tenant.Company{}, err
		}
		return tenant.Company{}, apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	}
	company, err := scanCompany(rows)
	if err != nil {
		return tenant.Company{}, err
	}
	return company, rows.Err()
}

// Insert stores a new company.
func (r *PostgresRepository) Insert(ctx context.Context, company tenant.Company) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO companies (id, name, fallback_answer, topic_filter_enabled, line_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, company.ID, company.Name, company.Settings.FallbackAnswer, company.Settings.TopicFilterEnabled,
		company.Settings.LineToken, company.CreatedAt, company.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(tenant.CodeExists, "company already exists", nil)
	}
	return nil
}

// Update rewrites an existing company.
func (r *PostgresRepository) Update(ctx context.Context, company tenant.Company) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET name = $2, fallback_answer = $3, topic_filter_enabled = $4, line_token = $5, updated_at = $6
		WHERE id = $1
	`, company.ID, company.Name, company.Settings.FallbackAnswer, company.Settings.TopicFilterEnabled,
		company.Settings.LineToken, company.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	}
	return nil
}

// Delete removes a company. FAQ entries and history cascade in the schema.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (tenant.Company, error) {
	var (
		company   tenant.Company
		fallback  sql.NullString
		lineToken sql.NullString
	)
	if err := row.Scan(&company.ID, &company.Name, &fallback, &company.Settings.TopicFilterEnabled,
		&lineToken, &company.CreatedAt, &company.UpdatedAt); err != nil {
		return tenant.Company{}, err
	}
	if fallback.Valid {
		company.Settings.FallbackAnswer = fallback.String
	}
	if lineToken.Valid {
		company.Settings.LineToken = lineToken.String
	}
	return company, nil
}

var _ tenant.Repository = (*PostgresRepository)(nil)
