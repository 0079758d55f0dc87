package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin is a back-office user scoped to one company.
type Admin struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Claims embed the company scope into every token.
type Claims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	TokenType string `json:"token_type"`
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)
