package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyado/faqbot/internal/domain/auth"
	"github.com/oyado/faqbot/internal/domain/tenant"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// AuthHandler serves admin login and token refresh.
type AuthHandler struct {
	authSvc   auth.Service
	tenantSvc tenant.Service
	logger    *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authSvc auth.Service, tenantSvc tenant.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc:   authSvc,
		tenantSvc: tenantSvc,
		logger:    logger.With("component", "http.auth"),
	}
}

type registerRequest struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Register creates an admin account for an existing company.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if _, err := h.tenantSvc.Get(c.Request.Context(), req.CompanyID); err != nil {
		abortWithError(c, authError(err))
		return
	}
	admin, err := h.authSvc.Register(c.Request.Context(), req.CompanyID, req.Email, req.Password)
	if err != nil {
		abortWithError(c, authError(err))
		return
	}
	c.JSON(http.StatusCreated, admin)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	pair, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, authError(err))
		return
	}
	c.JSON(http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a fresh pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	pair, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, authError(err))
		return
	}
	c.JSON(http.StatusOK, pair)
}

func authError(err error) *HTTPError {
	switch {
	case apperrors.IsCode(err, auth.CodeInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, auth.CodeInvalidCredentials, errMessage(err), err)
	case apperrors.IsCode(err, auth.CodeInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, auth.CodeInvalidToken, errMessage(err), err)
	case apperrors.IsCode(err, auth.CodeWeakPassword):
		return NewHTTPError(http.StatusBadRequest, auth.CodeWeakPassword, errMessage(err), err)
	case apperrors.IsCode(err, auth.CodeAdminExists):
		return NewHTTPError(http.StatusConflict, auth.CodeAdminExists, errMessage(err), err)
	case apperrors.IsCode(err, tenant.CodeNotFound):
		return NewHTTPError(http.StatusNotFound, tenant.CodeNotFound, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(err), err)
	}
}
