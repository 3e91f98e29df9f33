package middleware

import "github.com/gin-gonic/gin"

const (
	// StaffIDHeader carries the authenticated staff identity. Authn and
	// role checks happen upstream; the engine trusts this header.
	StaffIDHeader = "X-Staff-ID"

	// ContextKeyStaffID is the gin context key for the staff identity
	ContextKeyStaffID = "staff_id"
)

// StaffIdentity extracts the acting staff member from the request headers
func StaffIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if staffID := c.GetHeader(StaffIDHeader); staffID != "" {
			c.Set(ContextKeyStaffID, staffID)
		}
		c.Next()
	}
}

// GetStaffID returns the staff identity stored by StaffIdentity, or an
// empty string for unattributed (guest self-service) requests.
func GetStaffID(c *gin.Context) string {
	return c.GetString(ContextKeyStaffID)
}
