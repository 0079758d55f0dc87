package faq

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/oyado/faqbot/internal/infra/embedding"
	apperrors "github.com/oyado/faqbot/pkg/errors"
	"github.com/oyado/faqbot/pkg/util"
)

// Service manages a company's FAQ entries and keeps question embeddings
// current.
type Service interface {
	List(ctx context.Context, companyID string) ([]Entry, error)
	Get(ctx context.Context, companyID, id string) (Entry, error)
	Create(ctx context.Context, companyID string, input CreateInput) (Entry, error)
	Update(ctx context.Context, companyID, id string, input UpdateInput) (Entry, error)
	Delete(ctx context.Context, companyID, id string) error
	// Reembed recomputes every embedding for the company, e.g. after an
	// embedding model change. Returns the number of entries refreshed.
	Reembed(ctx context.Context, companyID string) (int, error)
	// ImportCSV loads entries from CSV. With replace set, the company's
	// existing entries are swapped out atomically.
	ImportCSV(ctx context.Context, companyID string, r io.Reader, replace bool) (ImportResult, error)
	// ExportCSV writes the company's entries as CSV.
	ExportCSV(ctx context.Context, companyID string, w io.Writer) error
}

type service struct {
	repo     Repository
	embedder embedding.Provider
	logger   *slog.Logger
}

// NewService constructs the FAQ service.
func NewService(repo Repository, embedder embedding.Provider, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		embedder: embedder,
		logger:   logger.With("component", "faq.service"),
	}
}

func (s *service) List(ctx context.Context, companyID string) ([]Entry, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *service) Get(ctx context.Context, companyID, id string) (Entry, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *service) Create(ctx context.Context, companyID string, input CreateInput) (Entry, error) {
	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	if question == "" || answer == "" {
		return Entry{}, apperrors.Wrap(CodeInvalid, "question and answer cannot be empty", nil)
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return Entry{}, err
	}

	now := util.NowUTC()
	entry := Entry{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		Question:  question,
		Answer:    answer,
		Topic:     strings.TrimSpace(input.Topic),
		Embedding: vector,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return Entry{}, err
	}
	s.logger.Info("faq entry created", "company_id", companyID, "entry_id", entry.ID)
	return entry, nil
}

func (s *service) Update(ctx context.Context, companyID, id string, input UpdateInput) (Entry, error) {
	entry, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Entry{}, err
	}

	questionChanged := false
	if input.Question != nil {
		question := strings.TrimSpace(*input.Question)
		if question == "" {
			return Entry{}, apperrors.Wrap(CodeInvalid, "question cannot be empty", nil)
		}
		if question != entry.Question {
			entry.Question = question
			questionChanged = true
		}
	}
	if input.Answer != nil {
		answer := strings.TrimSpace(*input.Answer)
		if answer == "" {
			return Entry{}, apperrors.Wrap(CodeInvalid, "answer cannot be empty", nil)
		}
		entry.Answer = answer
	}
	if input.Topic != nil {
		entry.Topic = strings.TrimSpace(*input.Topic)
	}

	if questionChanged {
		vector, err := s.embedder.Embed(ctx, entry.Question)
		if err != nil {
			return Entry{}, err
		}
		entry.Embedding = vector
	}
	entry.UpdatedAt = util.NowUTC()

	if err := s.repo.Update(ctx, entry); err != nil {
		return Entry{}, err
	}
	s.logger.Info("faq entry updated",
		"company_id", companyID, "entry_id", id, "reembedded", questionChanged)
	return entry, nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	if err := s.repo.Delete(ctx, companyID, id); err != nil {
		return err
	}
	s.logger.Info("faq entry deleted", "company_id", companyID, "entry_id", id)
	return nil
}

func (s *service) Reembed(ctx context.Context, companyID string) (int, error) {
	entries, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	questions := make([]string, len(entries))
	for i, entry := range entries {
		questions[i] = entry.Question
	}
	vectors, err := s.embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(entries) {
		return 0, apperrors.Wrap(embedding.CodeUnavailable, "embedding batch size mismatch", nil)
	}

	now := util.NowUTC()
	for i := range entries {
		entries[i].Embedding = vectors[i]
		entries[i].UpdatedAt = now
		if err := s.repo.Update(ctx, entries[i]); err != nil {
			return i, err
		}
	}
	s.logger.Info("faq entries reembedded", "company_id", companyID, "count", len(entries))
	return len(entries), nil
}

func (s *service) ImportCSV(ctx context.Context, companyID string, r io.Reader, replace bool) (ImportResult, error) {
	records, err := parseCSV(r)
	if err != nil {
		return ImportResult{}, err
	}
	if len(records) == 0 {
		return ImportResult{}, apperrors.Wrap(CodeInvalid, "csv contains no entries", nil)
	}

	questions := make([]string, len(records))
	for i, record := range records {
		questions[i] = record.Question
	}
	vectors, err := s.embedder.EmbedBatch(ctx, questions)
	if err != nil {
		return ImportResult{}, err
	}
	if len(vectors) != len(records) {
		return ImportResult{}, apperrors.Wrap(embedding.CodeUnavailable, "embedding batch size mismatch", nil)
	}

	now := util.NowUTC()
	entries := make([]Entry, len(records))
	for i, record := range records {
		entries[i] = Entry{
			ID:        uuid.NewString(),
			CompanyID: companyID,
			Question:  record.Question,
			Answer:    record.Answer,
			Topic:     record.Topic,
			Embedding: vectors[i],
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	if replace {
		if err := s.repo.ReplaceAll(ctx, companyID, entries); err != nil {
			return ImportResult{}, err
		}
	} else {
		for _, entry := range entries {
			if err := s.repo.Insert(ctx, entry); err != nil {
				return ImportResult{}, err
			}
		}
	}
	s.logger.Info("faq entries imported",
		"company_id", companyID, "count", len(entries), "replace", replace)
	return ImportResult{Imported: len(entries), Replaced: replace}, nil
}

func (s *service) ExportCSV(ctx context.Context, companyID string, w io.Writer) error {
	entries, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	return writeCSV(w, entries)
}

var _ Service = (*service)(nil)
