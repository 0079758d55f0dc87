package tenant

import "context"

// Error codes for tenant operations.
const (
	CodeNotFound = "company_not_found"
	CodeInvalid  = "company_invalid"
	CodeExists   = "company_exists"
)

// Repository persists companies.
type Repository interface {
	List(ctx context.Context) ([]Company, error)
	// Get returns one company or an error with CodeNotFound.
	Get(ctx context.Context, id string) (Company, error)
	// Insert stores a new company or returns CodeExists.
	Insert(ctx context.Context, company Company) error
	Update(ctx context.Context, company Company) error
	Delete(ctx context.Context, id string) error
}
