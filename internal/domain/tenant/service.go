package tenant

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	apperrors "github.com/oyado/faqbot/pkg/errors"
	"github.com/oyado/faqbot/pkg/util"
)

// Company IDs appear in URLs and database keys, so the charset is strict.
var companyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,50}$`)

// Service manages tenant registration and settings.
type Service interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id string) (Company, error)
	Create(ctx context.Context, input CreateInput) (Company, error)
	Update(ctx context.Context, id string, input UpdateInput) (Company, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs the tenant service.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "tenant.service"),
	}
}

func (s *service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id string) (Company, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (Company, error) {
	id := strings.TrimSpace(input.ID)
	if !companyIDPattern.MatchString(id) {
		return Company{}, apperrors.Wrap(CodeInvalid,
			"company id must be 1-50 characters of letters, digits, underscore or hyphen", nil)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Company{}, apperrors.Wrap(CodeInvalid, "company name cannot be empty", nil)
	}

	now := util.NowUTC()
	company := Company{
		ID:        id,
		Name:      name,
		Settings:  input.Settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, company); err != nil {
		return Company{}, err
	}
	s.logger.Info("company registered", "company_id", id)
	return company, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (Company, error) {
	company, err := s.repo.Get(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Company{}, apperrors.Wrap(CodeInvalid, "company name cannot be empty", nil)
		}
		company.Name = name
	}
	if input.Settings != nil {
		company.Settings = *input.Settings
	}
	company.UpdatedAt = util.NowUTC()

	if err := s.repo.Update(ctx, company); err != nil {
		return Company{}, err
	}
	s.logger.Info("company updated", "company_id", id)
	return company, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("company deleted", "company_id", id)
	return nil
}

var _ Service = (*service)(nil)
