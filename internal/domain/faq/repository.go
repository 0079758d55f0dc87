package faq

import "context"

// Error codes for FAQ operations.
const (
	CodeNotFound = "faq_not_found"
	CodeInvalid  = "faq_invalid"
)

// Repository persists FAQ entries scoped to a company.
type Repository interface {
	// ListByCompany returns the company's entries ordered by creation time.
	ListByCompany(ctx context.Context, companyID string) ([]Entry, error)
	// Get returns one entry or an error with CodeNotFound.
	Get(ctx context.Context, companyID, id string) (Entry, error)
	Insert(ctx context.Context, entry Entry) error
	Update(ctx context.Context, entry Entry) error
	// Delete removes one entry or returns CodeNotFound.
	Delete(ctx context.Context, companyID, id string) error
	// ReplaceAll atomically swaps the company's entry set.
	ReplaceAll(ctx context.Context, companyID string, entries []Entry) error
}
