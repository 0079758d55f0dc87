package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/oyado/faqbot/pkg/errors"
	"github.com/oyado/faqbot/pkg/util"
)

const minPasswordLength = 8

// Service handles admin registration and token issuance.
type Service interface {
	Register(ctx context.Context, companyID, email, password string) (Admin, error)
	Login(ctx context.Context, email, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	// Verify validates an access token and returns its claims.
	Verify(ctx context.Context, accessToken string) (*Claims, error)
}

type service struct {
	repo       Repository
	secret     []byte
	tokenTTL   time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewService constructs the auth service.
func NewService(repo Repository, secret string, tokenTTL, refreshTTL time.Duration, logger *slog.Logger) Service {
	return &service{
		repo:       repo,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
		logger:     logger.With("component", "auth.service"),
	}
}

func (s *service) Register(ctx context.Context, companyID, email, password string) (Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Admin{}, apperrors.Wrap(CodeInvalidCredentials, "invalid email address", nil)
	}
	if len(password) < minPasswordLength {
		return Admin{}, apperrors.Wrap(CodeWeakPassword, "password must be at least 8 characters", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Admin{}, apperrors.Wrap(CodeInvalidCredentials, "hash password", err)
	}

	now := util.NowUTC()
	admin := Admin{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, admin); err != nil {
		return Admin{}, err
	}
	s.logger.Info("admin registered", "company_id", companyID, "admin_id", admin.ID)
	return admin, nil
}

func (s *service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	admin, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsCode(err, CodeAdminNotFound) {
			// Same response as a bad password so emails can't be probed.
			return TokenPair{}, apperrors.Wrap(CodeInvalidCredentials, "invalid email or password", nil)
		}
		return TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, apperrors.Wrap(CodeInvalidCredentials, "invalid email or password", nil)
	}

	pair, err := s.issuePair(admin)
	if err != nil {
		return TokenPair{}, err
	}
	s.logger.Info("admin logged in", "company_id", admin.CompanyID, "admin_id", admin.ID)
	return pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return TokenPair{}, apperrors.Wrap(CodeInvalidToken, "not a refresh token", nil)
	}
	admin, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperrors.IsCode(err, CodeAdminNotFound) {
			return TokenPair{}, apperrors.Wrap(CodeInvalidToken, "admin no longer exists", nil)
		}
		return TokenPair{}, err
	}
	return s.issuePair(admin)
}

func (s *service) Verify(_ context.Context, accessToken string) (*Claims, error) {
	claims, err := s.parse(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, apperrors.Wrap(CodeInvalidToken, "not an access token", nil)
	}
	return claims, nil
}

func (s *service) issuePair(admin Admin) (TokenPair, error) {
	access, err := s.sign(admin, tokenTypeAccess, s.tokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(admin, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokenTTL.Seconds()),
	}, nil
}

func (s *service) sign(admin Admin, tokenType string, ttl time.Duration) (string, error) {
	now := util.NowUTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		CompanyID: admin.CompanyID,
		TokenType: tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.Wrap(CodeInvalidToken, "sign token", err)
	}
	return signed, nil
}

func (s *service) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Wrap(CodeInvalidToken, "unexpected signing method", nil)
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Wrap(CodeInvalidToken, "invalid or expired token", err)
	}
	return claims, nil
}

var _ Service = (*service)(nil)
