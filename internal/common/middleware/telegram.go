package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"giveaway-entry-backend/internal/common/errors"
)

const userKey = "user"

// TelegramInitData authenticates a request by the signed init data in the
// init_data header. On success the Telegram user and its id are stored in the
// context. A zero ttl disables the expiry check.
func TelegramInitData(botToken string, ttl time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("init_data")
		if raw == "" {
			AbortWithError(c, errors.NewUnauthorizedError("Telegram init data required"), logger)
			return
		}

		if botToken == "" {
			logger.Error().Msg("BOT_TOKEN is not configured")
			AbortWithError(c, errors.New(errors.ErrCodeInternal, "Server configuration error"), logger)
			return
		}

		if err := initdata.Validate(raw, botToken, ttl); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			AbortWithError(c, errors.NewUnauthorizedError("invalid init data"), logger)
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil || parsed.User.ID == 0 {
			AbortWithError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "Failed to parse init data"), logger)
			return
		}

		SetUser(c, parsed.User)
		c.Next()
	}
}

// SetUser stores an authenticated Telegram user in the context.
func SetUser(c *gin.Context, user initdata.User) {
	c.Set(userKey, user)
	c.Set(userIDKey, user.ID)
}

// UserID returns the authenticated user id, or 0 when the request is anonymous.
func UserID(c *gin.Context) int64 {
	return getUserID(c)
}
