package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oyado/faqbot/internal/domain/chat"
	"github.com/oyado/faqbot/internal/domain/tenant"
	"github.com/oyado/faqbot/internal/infra/embedding"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// ChatHandler serves the public chat endpoint.
type ChatHandler struct {
	chatSvc chat.Service
	logger  *slog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(chatSvc chat.Service, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatSvc: chatSvc,
		logger:  logger.With("component", "http.chat"),
	}
}

// Ask answers one end-user question for the company in the path.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.CompanyID = c.Param("companyID")

	resp, err := h.chatSvc.Ask(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, chatError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func chatError(err error) *HTTPError {
	switch {
	case apperrors.IsCode(err, chat.CodeInvalid):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.IsCode(err, tenant.CodeNotFound):
		return NewHTTPError(http.StatusNotFound, tenant.CodeNotFound, errMessage(err), err)
	case apperrors.IsCode(err, embedding.CodeAuth):
		return NewHTTPError(http.StatusBadGateway, "embedding_failed", "embedding provider rejected credentials", err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "chat_failed", errMessage(err), err)
	}
}
