package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"giveaway-entry-backend/internal/common/errors"
)

// RequireAdmin lets through only users for which isAdmin holds.
func RequireAdmin(isAdmin func(userID int64) bool, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			AbortWithError(c, errors.NewUnauthorizedError("Telegram init data required"), logger)
			return
		}
		if !isAdmin(userID) {
			AbortWithError(c, errors.NewForbiddenError("admin access required").WithUserID(userID), logger)
			return
		}
		c.Next()
	}
}
