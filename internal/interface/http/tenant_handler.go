package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyado/faqbot/internal/domain/tenant"
)

// TenantHandler serves company signup and removal.
type TenantHandler struct {
	tenantSvc tenant.Service
	logger    *slog.Logger
}

// NewTenantHandler constructs the handler.
func NewTenantHandler(tenantSvc tenant.Service, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{
		tenantSvc: tenantSvc,
		logger:    logger.With("component", "http.tenant"),
	}
}

// CreateCompany registers a new tenant.
func (h *TenantHandler) CreateCompany(c *gin.Context) {
	var input tenant.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	company, err := h.tenantSvc.Create(c.Request.Context(), input)
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusCreated, company)
}

// DeleteCompany removes the company and its data.
func (h *TenantHandler) DeleteCompany(c *gin.Context) {
	if err := h.tenantSvc.Delete(c.Request.Context(), c.Param("companyID")); err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
