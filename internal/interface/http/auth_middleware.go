package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oyado/faqbot/internal/domain/auth"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

func authMiddleware(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		token := strings.TrimSpace(parts[1])
		claims, err := svc.Verify(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			code := "invalid_token"
			if !apperrors.IsCode(err, auth.CodeInvalidToken) {
				status = http.StatusInternalServerError
				code = "auth_failed"
			}
			abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// companyScopeMiddleware rejects tokens issued for a different company than
// the one named in the path.
func companyScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := getClaims(c)
		if !ok || claims.CompanyID != c.Param("companyID") {
			abortWithError(c, NewHTTPError(http.StatusForbidden, "forbidden", "token not valid for this company", nil))
			return
		}
		c.Next()
	}
}
