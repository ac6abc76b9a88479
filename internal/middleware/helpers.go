// internal/middleware/helpers.go
package middleware

import (
	"attendance-service/internal/pkg/fingerprint"

	"github.com/gin-gonic/gin"
)

// GetIdentityID returns the verified caller identity from the context.
func GetIdentityID(c *gin.Context) (string, bool) {
	id := c.GetString("identity_id")
	return id, id != ""
}

// MustGetIdentityID gets the identity or panics; recovery middleware turns
// the panic into a 500. Only for routes behind Auth().
func MustGetIdentityID(c *gin.Context) string {
	id, ok := GetIdentityID(c)
	if !ok {
		panic("identity_id not found in context")
	}
	return id
}

// IsAdmin checks the verified caller role.
func IsAdmin(c *gin.Context) bool {
	role := c.GetString("role")
	return role == "admin" || role == "super_admin"
}

// DeviceInputs collects the client-declared metadata headers a scan's
// device fingerprint is derived from.
func DeviceInputs(c *gin.Context) fingerprint.Inputs {
	return fingerprint.Inputs{
		UserAgent:        c.GetHeader("User-Agent"),
		Platform:         c.GetHeader("X-Platform"),
		ScreenResolution: c.GetHeader("X-Screen-Resolution"),
		Timezone:         c.GetHeader("X-Timezone"),
	}
}
