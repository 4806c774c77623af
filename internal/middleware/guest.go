package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expenso/internal/models"
)

// GuestTokenKey is the Gin context key holding the resolved guest token.
const GuestTokenKey = "guestToken"

// GuestTokenLookup resolves an opaque share-link secret to its token row.
// Unknown or expired secrets must return an error.
type GuestTokenLookup func(secret string) (*models.GuestToken, error)

// GuestAuth validates the opaque share-link secret carried in the
// X-Share-Token header (or ?token= query parameter) and sets the resolved
// token in the context. Expiry is re-checked by the lookup on every request;
// tokens are never cached across requests.
func GuestAuth(lookup GuestTokenLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.GetHeader("X-Share-Token")
		if secret == "" {
			secret = c.Query("token")
		}
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": gin.H{"code": "UNAUTHORIZED", "message": "Share token is required"}})
			return
		}

		tok, err := lookup(secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				gin.H{"error": gin.H{"code": "INVALID_SHARE_TOKEN", "message": "Invalid or expired share link"}})
			return
		}

		c.Set(GuestTokenKey, tok)
		c.Next()
	}
}
