// internal/middleware/auth_middleware.go
package middleware

import (
	"strings"

	"attendance-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the verified caller identity the boundary extracts for the
// engine. Issuing these tokens (OTP login) happens in a separate service.
type Claims struct {
	IdentityID string `json:"identity_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret)}
}

// Auth validates the bearer token and stores the verified identity in the
// request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !parsed.Valid {
			response.Unauthorized(c, "invalid or expired token")
			return
		}

		identity := claims.IdentityID
		if identity == "" {
			identity = claims.Subject
		}
		if identity == "" {
			response.Unauthorized(c, "token carries no identity")
			return
		}

		c.Set("identity_id", identity)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireAdmin gates the operator endpoints. MUST be used after Auth().
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != "admin" && role != "super_admin" {
			response.Forbidden(c, "admin role required")
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	// Websocket clients cannot set headers from the browser; allow a query
	// parameter fallback for the alert feed.
	return c.Query("token")
}
