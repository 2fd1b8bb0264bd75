package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/utils"
)

// WebSocketAuthMiddleware reads the token from the query string since
// browsers cannot set headers on a websocket handshake.
func WebSocketAuthMiddleware(tokens *utils.TokenManager, blacklist utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			raw = bearerToken(c)
		}
		if raw == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("token missing"))
			return
		}
		authenticate(c, tokens, blacklist, raw)
	}
}
