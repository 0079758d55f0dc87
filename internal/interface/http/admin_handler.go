package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oyado/faqbot/internal/domain/chat"
	"github.com/oyado/faqbot/internal/domain/faq"
	"github.com/oyado/faqbot/internal/domain/tenant"
	"github.com/oyado/faqbot/internal/infra/backup"
	"github.com/oyado/faqbot/internal/infra/embedding"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

const importBodyLimit = 5 << 20 // 5 MiB

// AdminHandler serves the authenticated back-office API.
type AdminHandler struct {
	faqSvc    faq.Service
	chatSvc   chat.Service
	tenantSvc tenant.Service
	archiver  backup.Archiver
	logger    *slog.Logger
}

// NewAdminHandler constructs the handler. The archiver may be nil; imports
// are then not archived.
func NewAdminHandler(faqSvc faq.Service, chatSvc chat.Service, tenantSvc tenant.Service, archiver backup.Archiver, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		faqSvc:    faqSvc,
		chatSvc:   chatSvc,
		tenantSvc: tenantSvc,
		archiver:  archiver,
		logger:    logger.With("component", "http.admin"),
	}
}

// ListFAQs returns all entries for the company.
func (h *AdminHandler) ListFAQs(c *gin.Context) {
	entries, err := h.faqSvc.List(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// CreateFAQ adds one entry.
func (h *AdminHandler) CreateFAQ(c *gin.Context) {
	var input faq.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	entry, err := h.faqSvc.Create(c.Request.Context(), c.Param("companyID"), input)
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetFAQ returns one entry.
func (h *AdminHandler) GetFAQ(c *gin.Context) {
	entry, err := h.faqSvc.Get(c.Request.Context(), c.Param("companyID"), c.Param("entryID"))
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateFAQ applies a partial update to one entry.
func (h *AdminHandler) UpdateFAQ(c *gin.Context) {
	var input faq.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	entry, err := h.faqSvc.Update(c.Request.Context(), c.Param("companyID"), c.Param("entryID"), input)
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteFAQ removes one entry.
func (h *AdminHandler) DeleteFAQ(c *gin.Context) {
	if err := h.faqSvc.Delete(c.Request.Context(), c.Param("companyID"), c.Param("entryID")); err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportFAQs loads entries from an uploaded CSV. ?replace=true swaps the
// existing set; the default appends.
func (h *AdminHandler) ImportFAQs(c *gin.Context) {
	companyID := c.Param("companyID")
	replace, _ := strconv.ParseBool(c.Query("replace"))

	data, err := readImportBody(c)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	if h.archiver != nil {
		if _, archiveErr := h.archiver.ArchiveImport(c.Request.Context(), companyID, data); archiveErr != nil {
			h.logger.Warn("import archive failed", "company_id", companyID, "error", archiveErr)
		}
	}

	result, err := h.faqSvc.ImportCSV(c.Request.Context(), companyID, bytes.NewReader(data), replace)
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportFAQs streams the company's entries as CSV.
func (h *AdminHandler) ExportFAQs(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="faq.csv"`)
	if err := h.faqSvc.ExportCSV(c.Request.Context(), c.Param("companyID"), c.Writer); err != nil {
		abortWithError(c, adminError(err))
	}
}

// Reembed recomputes all embeddings for the company.
func (h *AdminHandler) Reembed(c *gin.Context) {
	count, err := h.faqSvc.Reembed(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reembedded": count})
}

// History returns recent conversation turns.
func (h *AdminHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := h.chatSvc.History(c.Request.Context(), c.Param("companyID"), limit)
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// Trending returns the most asked questions.
func (h *AdminHandler) Trending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	questions, err := h.chatSvc.Trending(c.Request.Context(), c.Param("companyID"), limit)
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// GetSettings returns the company profile and chat settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	company, err := h.tenantSvc.Get(c.Request.Context(), c.Param("companyID"))
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, company)
}

// UpdateSettings applies a partial update to the company.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var input tenant.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	company, err := h.tenantSvc.Update(c.Request.Context(), c.Param("companyID"), input)
	if err != nil {
		abortWithError(c, adminError(err))
		return
	}
	c.JSON(http.StatusOK, company)
}

func readImportBody(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		opened, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer opened.Close()
		return io.ReadAll(io.LimitReader(opened, importBodyLimit))
	}
	defer c.Request.Body.Close()
	return io.ReadAll(io.LimitReader(c.Request.Body, importBodyLimit))
}

func adminError(err error) *HTTPError {
	switch {
	case apperrors.IsCode(err, faq.CodeNotFound), apperrors.IsCode(err, tenant.CodeNotFound):
		return NewHTTPError(http.StatusNotFound, apperrors.CodeOf(err), errMessage(err), err)
	case apperrors.IsCode(err, faq.CodeInvalid), apperrors.IsCode(err, tenant.CodeInvalid):
		return NewHTTPError(http.StatusBadRequest, apperrors.CodeOf(err), errMessage(err), err)
	case apperrors.IsCode(err, tenant.CodeExists):
		return NewHTTPError(http.StatusConflict, tenant.CodeExists, errMessage(err), err)
	case apperrors.IsCode(err, embedding.CodeAuth):
		return NewHTTPError(http.StatusBadGateway, "embedding_failed", "embedding provider rejected credentials", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "admin_failed", errMessage(err), err)
	}
}
