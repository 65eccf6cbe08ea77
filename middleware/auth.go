package middleware

import (
	"net/http"
	"strings"

	"practicetests/services"

	"github.com/gin-gonic/gin"
)

const claimsKey = "practicetests.claims"

// AuthMiddleware rejects requests without a valid bearer token and attaches
// the decoded identity to the context for CurrentUser.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, jwtSecret, extractBearerToken(c.GetHeader("Authorization")))
	}
}

// WebSocketAuth reads the token from the "token" query parameter, since
// browsers cannot set headers on a websocket upgrade.
func WebSocketAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, jwtSecret, c.Query("token"))
	}
}

// RequireRole must run after AuthMiddleware or WebSocketAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Unauthorized - No token provided")
			return
		}
		if claims.Role != role {
			abort(c, http.StatusForbidden, "Forbidden - "+capitalize(role)+" access required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity attached by the auth middleware.
func CurrentUser(c *gin.Context) (*services.Claims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*services.Claims)
	return claims, ok
}

func authenticate(c *gin.Context, jwtSecret, token string) {
	if token == "" {
		abort(c, http.StatusUnauthorized, "Unauthorized - No token provided")
		return
	}

	claims, err := services.ParseToken(jwtSecret, token)
	if err != nil {
		abort(c, http.StatusUnauthorized, "Unauthorized - Invalid token")
		return
	}

	c.Set(claimsKey, claims)
	c.Next()
}

func extractBearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
