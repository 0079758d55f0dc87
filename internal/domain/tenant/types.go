package tenant

import "time"

// Company is one tenant of the chatbot. The ID doubles as the URL slug.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings holds the per-company chat behavior knobs.
type Settings struct {
	// FallbackAnswer overrides the global fallback when non-empty.
	FallbackAnswer string `json:"fallback_answer,omitempty"`
	// TopicFilterEnabled narrows matching to the classified topic's entries.
	TopicFilterEnabled bool `json:"topic_filter_enabled"`
	// LineToken enables low-confidence notifications when set.
	LineToken string `json:"line_token,omitempty"`
}

// CreateInput carries the fields needed to register a company.
type CreateInput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

// UpdateInput carries partial updates. Nil fields are left untouched.
type UpdateInput struct {
	Name     *string   `json:"name,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
}
