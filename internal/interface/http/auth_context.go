package http

import (
	"github.com/gin-gonic/gin"

	"github.com/oyado/faqbot/internal/domain/auth"
)

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (*auth.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}
