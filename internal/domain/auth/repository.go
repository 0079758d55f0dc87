package auth

import "context"

// Error codes for auth operations.
const (
	CodeInvalidCredentials = "auth_invalid_credentials"
	CodeInvalidToken       = "auth_invalid_token"
	CodeAdminExists        = "auth_admin_exists"
	CodeAdminNotFound      = "auth_admin_not_found"
	CodeWeakPassword       = "auth_weak_password"
)

// Repository persists admin accounts. Emails are unique across companies.
type Repository interface {
	// GetByEmail returns the admin or an error with CodeAdminNotFound.
	GetByEmail(ctx context.Context, email string) (Admin, error)
	GetByID(ctx context.Context, id string) (Admin, error)
	// Insert stores a new admin or returns CodeAdminExists.
	Insert(ctx context.Context, admin Admin) error
	Delete(ctx context.Context, id string) error
}
