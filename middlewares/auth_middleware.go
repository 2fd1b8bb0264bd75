package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/utils"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID      = "userID"
	CtxRole        = "role"
	CtxTokenID     = "tokenID"
	CtxTokenExpiry = "tokenExpiry"
)

// TokenCookie is the cookie browsers may send instead of a bearer header.
const TokenCookie = "session"

// AuthMiddleware accepts a bearer token or the session cookie.
func AuthMiddleware(tokens *utils.TokenManager, blacklist utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			return
		}
		authenticate(c, tokens, blacklist, raw)
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return ""
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

func authenticate(c *gin.Context, tokens *utils.TokenManager, blacklist utils.TokenBlacklist, raw string) {
	claims, err := tokens.ParseToken(raw)
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
		return
	}

	if blacklist != nil {
		revoked, err := blacklist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			utils.ErrorLogger.Errorf("Token blacklist lookup failed: %v", err)
			utils.AbortWithError(c, http.StatusServiceUnavailable, errors.New("Unable to verify session"))
			return
		}
		if revoked {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Session has been logged out"))
			return
		}
	}

	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(CtxTokenExpiry, claims.ExpiresAt.Time)
	}
	c.Next()
}

// UserID returns the authenticated user id, or 0.
func UserID(c *gin.Context) uint {
	return c.GetUint(CtxUserID)
}

// Role returns the authenticated role, or "".
func Role(c *gin.Context) string {
	return c.GetString(CtxRole)
}
