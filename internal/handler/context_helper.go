package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-api/internal/middleware"
	"github.com/classdesk/classdesk-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.SessionClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// userIDFromContext resolves the document owner for the request. Falls
// back to the deployment default when the route is not session-protected.
func userIDFromContext(c *gin.Context, fallback string) string {
	if claims := claimsFromContext(c); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return fallback
}
