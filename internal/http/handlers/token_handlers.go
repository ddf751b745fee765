package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/domain"
)

// Client-facing messages of the token endpoints
const (
	MsgNoActiveAccount        = "No active account found with the given credentials"
	MsgPendingApproval        = "Sua conta ainda não foi aprovada. Por favor, aguarde a aprovação de um administrador."
	MsgAccountLocked          = "Conta bloqueada temporariamente por excesso de tentativas. Tente novamente mais tarde."
	MsgTokenNotValid          = "Token is invalid or expired"
	MsgCredentialsNotProvided = "As credenciais de autenticação não foram fornecidas."
	CodeTokenNotValid         = "token_not_valid"
)

// TokenHandlers serves the token obtain, refresh and verify endpoints
type TokenHandlers struct {
	authSvc domain.AuthService
}

// NewTokenHandlers creates new token handlers
func NewTokenHandlers(authSvc domain.AuthService) *TokenHandlers {
	return &TokenHandlers{authSvc: authSvc}
}

// TokenObtainRequest represents a login request
type TokenObtainRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenRefreshRequest represents a token refresh request
type TokenRefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenVerifyRequest represents a token verification request
type TokenVerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

// Obtain exchanges credentials for an access/refresh token pair
func (h *TokenHandlers) Obtain(c *gin.Context) {
	var req TokenObtainRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.ObtainTokenPair(c.Request.Context(), domain.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountLocked):
			detail(c, http.StatusForbidden, MsgAccountLocked)
		case errors.Is(err, domain.ErrPendingApproval):
			c.JSON(http.StatusBadRequest, gin.H{"non_field_errors": []string{MsgPendingApproval}})
		case errors.Is(err, domain.ErrInvalidCredentials):
			detail(c, http.StatusUnauthorized, MsgNoActiveAccount)
		default:
			log.Printf("EVENT: token_obtain_failed ip=%s err=%v", c.ClientIP(), err)
			detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"refresh": result.RefreshToken,
		"access":  result.AccessToken,
	})
}

// Refresh issues a new access token from a refresh token
func (h *TokenHandlers) Refresh(c *gin.Context) {
	var req TokenRefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			tokenNotValid(c)
			return
		}
		log.Printf("EVENT: token_refresh_failed err=%v", err)
		detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": result.AccessToken})
}

// Verify reports whether a token is valid
func (h *TokenHandlers) Verify(c *gin.Context) {
	var req TokenVerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.authSvc.VerifyToken(c.Request.Context(), req.Token); err != nil {
		tokenNotValid(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func tokenNotValid(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"detail": MsgTokenNotValid, "code": CodeTokenNotValid})
}
