package middleware

import (
	"net/http"
	"strings"

	"live-poll/internal/services"
	"live-poll/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

const ClientTokenHeader = "X-Client-Token"

// ClientIdentityMiddleware resolves the participant identity from the client
// token and stores it on the request context.
func ClientIdentityMiddleware(identity *services.ClientIdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(ClientTokenHeader)
		if token == "" {
			token = extractBearer(c)
		}
		clientID, err := identity.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := services.WithClientContext(c.Request.Context(), clientID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
