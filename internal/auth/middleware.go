package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "auth_identity"

// RequireBearer rejects requests without a valid bearer token. With
// adminOnly set the token must also carry admin rights.
func RequireBearer(v Verifier, adminOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "Missing or malformed Authorization header")
			return
		}
		id, err := v.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(c, err.Error())
			return
		}
		if adminOnly && !id.Admin {
			unauthorized(c, "Admin token required")
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": msg})
}

// IdentityFrom returns the identity stored by RequireBearer.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
