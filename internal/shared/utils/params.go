package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/filemart-io/filemart/internal/shared/errors"
	"github.com/filemart-io/filemart/internal/shared/id"
)

// ParseSIDParam parses and validates a prefixed short ID from a URL path
// parameter. entityName is used in error messages.
func ParseSIDParam(c *gin.Context, paramName, prefix, entityName string) (string, error) {
	sid := c.Param(paramName)
	if sid == "" {
		return "", errors.NewValidationError(entityName + " ID is required")
	}

	if err := id.ValidatePrefix(sid, prefix); err != nil {
		return "", errors.NewValidationError(
			fmt.Sprintf("invalid %s ID format, expected %s_xxxxx", entityName, prefix),
		)
	}

	return sid, nil
}

// UserIDFromContext extracts the authenticated user id set by the auth
// middleware. The second return is false when the request is unauthenticated.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
