package faq

import "time"

// Entry is one question/answer pair owned by a company. The embedding is
// computed from the question text and kept in sync with it.
type Entry struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Topic     string    `json:"topic,omitempty"`
	Embedding []float32 `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput carries the fields an admin supplies when adding an entry.
type CreateInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Topic    string `json:"topic,omitempty"`
}

// UpdateInput carries partial updates. Nil fields are left untouched.
type UpdateInput struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
	Topic    *string `json:"topic,omitempty"`
}

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int  `json:"imported"`
	Replaced bool `json:"replaced"`
}
