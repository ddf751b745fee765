package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/http/handlers"
)

// CasbinMW authorizes requests by the caller's role claim
type CasbinMW struct {
	policies domain.PolicyService
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService) *CasbinMW {
	return &CasbinMW{policies: policies}
}

// Enforce returns the casbin authorization middleware. It must run after
// AuthMiddleware.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		identity, ok := domain.IdentityFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": handlers.MsgCredentialsNotProvided})
			return
		}

		path := c.Request.URL.Path
		method := c.Request.Method

		allowed, err := mw.policies.CheckPermission(string(identity.Role), path, method)
		if err != nil {
			log.Printf("EVENT: authorization_check_failed user_id=%d role=%s path=%s method=%s err=%v",
				identity.PrincipalID, identity.Role, path, method, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Falha ao verificar permissões."})
			return
		}
		if !allowed {
			log.Printf("EVENT: access_denied user_id=%d role=%s path=%s method=%s",
				identity.PrincipalID, identity.Role, path, method)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Você não tem permissão para executar essa ação."})
			return
		}

		c.Next()
	})
}
