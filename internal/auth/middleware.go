package auth

import (
	"net/http"
	"strings"

	"salons/backend/internal/config"
	"salons/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// tokenFromRequest reads the session token from the Authorization header,
// falling back to the session cookie.
func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(config.AppConfig.SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session and sets "userID".
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentification requise."})
			return
		}

		userID, err := jwt.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session invalide ou expirée."})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID, or 0 for anonymous requests.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
