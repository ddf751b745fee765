package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/http/handlers"
)

// Gin context keys set by AuthMiddleware
const (
	KeyPrincipalID = "principal_id"
	KeyUserRole    = "user_role"
	KeySessionID   = "session_id"
)

const msgTokenNotValid = "Given token not valid for any token type"

// AuthMiddleware creates authentication middleware. It accepts a Bearer
// access token whose session is still live and attaches the caller's
// identity to both the gin context and the request context.
func AuthMiddleware(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": handlers.MsgCredentialsNotProvided})
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": handlers.MsgCredentialsNotProvided})
			return
		}

		claims, err := tokenSvc.ValidateAccessToken(tokenParts[1])
		if err != nil {
			abortTokenNotValid(c)
			return
		}

		// Sessions are revoked on logout, so a valid signature is not enough.
		if claims.SessionID == "" {
			abortTokenNotValid(c)
			return
		}
		session, err := sessionRepo.FindByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrSessionExpired) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Serviço temporariamente indisponível."})
				return
			}
			abortTokenNotValid(c)
			return
		}
		if session.UserID != claims.UserID {
			abortTokenNotValid(c)
			return
		}

		c.Set(KeyPrincipalID, claims.UserID)
		c.Set(KeyUserRole, claims.Role)
		c.Set(KeySessionID, claims.SessionID)
		c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), domain.Identity{
			PrincipalID: claims.UserID,
			Role:        claims.Role,
			SessionID:   claims.SessionID,
		}))

		c.Next()
	})
}

func abortTokenNotValid(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": msgTokenNotValid, "code": handlers.CodeTokenNotValid})
}
