package adminrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oyado/faqbot/internal/domain/auth"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// PostgresRepository implements auth.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByEmail fetches an admin by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.Admin, error) {
	return r.getOne(ctx, `
		SELECT id, company_id, email, password_hash, created_at, updated_at
		FROM admins
		WHERE email = $1
		LIMIT 1
	`, email)
}

// GetByID fetches an admin by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (auth.Admin, error) {
	return r.getOne(ctx, `
		SELECT id, company_id, email, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1
		LIMIT 1
	`, id)
}

// Insert stores a new admin.
func (r *PostgresRepository) Insert(ctx context.Context, admin auth.Admin) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO admins (id, company_id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`, admin.ID, admin.CompanyID, admin.Email, admin.PasswordHash, admin.CreatedAt, admin.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(auth.CodeAdminExists, "admin already exists", nil)
	}
	return nil
}

// Delete removes an admin.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrap(auth.CodeAdminNotFound, "admin not found", nil)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (auth.Admin, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return auth.Admin{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return auth.Admin{}, err
		}
		return auth.Admin{}, apperrors.Wrap(auth.CodeAdminNotFound, "admin not found", nil)
	}
	var admin auth.Admin
	if err := rows.Scan(&admin.ID, &admin.CompanyID, &admin.Email, &admin.PasswordHash,
		&admin.CreatedAt, &admin.UpdatedAt); err != nil {
		return auth.Admin{}, err
	}
	return admin, rows.Err()
}

var _ auth.Repository = (*PostgresRepository)(nil)
