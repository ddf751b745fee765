package httpx

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/internal/http/handlers"
	"github.com/xbpneus/authgate/internal/http/middleware"
)

// Routes groups everything BuildRouter mounts
type Routes struct {
	Tokens   *handlers.TokenHandlers
	Accounts *handlers.AccountHandlers
	Admin    *handlers.AdminHandlers
	Policies *handlers.PolicyHandlers
	JWT      *middleware.AuthMW
	Casbin   *middleware.CasbinMW
	// Throttle guards the anonymous endpoints; nil disables it
	Throttle gin.HandlerFunc
	// Metrics wraps every request; nil disables it
	Metrics gin.HandlerFunc
	// TrustedProxies may set X-Forwarded-For; empty trusts none
	TrustedProxies []string
}

// BuildRouter mounts every route. c.ClientIP(), which keys lockout and
// throttling, only honours forwarding headers from rt.TrustedProxies.
func BuildRouter(rt Routes) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(rt.TrustedProxies); err != nil {
		log.Printf("EVENT: trusted_proxies_rejected err=%v", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	if rt.Metrics != nil {
		r.Use(rt.Metrics)
	}
	throttle := rt.Throttle
	if throttle == nil {
		throttle = func(c *gin.Context) { c.Next() }
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	r.POST("/token", throttle, rt.Tokens.Obtain)
	r.POST("/token/refresh", throttle, rt.Tokens.Refresh)
	r.POST("/token/verify", throttle, rt.Tokens.Verify)
	r.POST("/register", throttle, rt.Accounts.Register)

	v := r.Group("/").Use(rt.JWT.WithJWT(), rt.Casbin.Enforce())
	v.GET("/me", rt.Accounts.Me)
	v.POST("/auth/logout", rt.Accounts.Logout)

	adm := r.Group("/admin").Use(rt.JWT.WithJWT(), rt.Casbin.Enforce())
	adm.GET("/approvals", rt.Admin.ListPending)
	adm.POST("/approvals/:id/approve", rt.Admin.Approve)
	adm.GET("/metrics", rt.Admin.Metrics)
	adm.GET("/policies", rt.Policies.List)
	adm.POST("/policies", rt.Policies.Add)
	adm.DELETE("/policies", rt.Policies.Remove)

	return r
}
