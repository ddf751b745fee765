package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/domain"
)

// AccountHandlers serves self-registration and the authenticated account endpoints
type AccountHandlers struct {
	authSvc      domain.AuthService
	registration domain.RegistrationService
}

// NewAccountHandlers creates new account handlers
func NewAccountHandlers(authSvc domain.AuthService, registration domain.RegistrationService) *AccountHandlers {
	return &AccountHandlers{
		authSvc:      authSvc,
		registration: registration,
	}
}

// RegisterRequest represents a self-registration request
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Kind        string `json:"kind" binding:"required,oneof=transportador motorista motorista_externo borracharia revenda recapagem"`
	CompanyName string `json:"company_name" binding:"max=255"`
	TaxID       string `json:"tax_id" binding:"max=32"`
	Phone       string `json:"phone" binding:"max=32"`
}

// Register creates a PENDING account awaiting administrator approval
func (h *AccountHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	principal, profile, err := h.registration.Register(c.Request.Context(), domain.RegistrationRequest{
		Email:       req.Email,
		Password:    req.Password,
		Kind:        domain.ProfileKind(req.Kind),
		CompanyName: req.CompanyName,
		TaxID:       req.TaxID,
		Phone:       req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPrincipalAlreadyExists):
			fieldError(c, "email", "Já existe um usuário com este email.")
		case errors.Is(err, domain.ErrInvalidProfileKind):
			fieldError(c, "kind", msgInvalid)
		default:
			log.Printf("EVENT: registration_failed email=%s err=%v", domain.NormalizeEmail(req.Email), err)
			detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     principal.ID,
		"email":  principal.Email,
		"kind":   profile.Kind,
		"status": profile.State(),
		"detail": "Cadastro recebido. Aguarde a aprovação de um administrador.",
	})
}

// Me returns the authenticated principal. The role is the token's claim.
func (h *AccountHandlers) Me(c *gin.Context) {
	identity, ok := domain.IdentityFrom(c.Request.Context())
	if !ok {
		detail(c, http.StatusUnauthorized, MsgCredentialsNotProvided)
		return
	}

	principal, err := h.authSvc.CurrentPrincipal(c.Request.Context(), identity.PrincipalID)
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			detail(c, http.StatusNotFound, "Não encontrado.")
			return
		}
		log.Printf("EVENT: me_lookup_failed user_id=%d err=%v", identity.PrincipalID, err)
		detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    principal.ID,
		"email": principal.Email,
		"role":  identity.Role,
	})
}

// Logout deletes the session backing the caller's tokens
func (h *AccountHandlers) Logout(c *gin.Context) {
	identity, ok := domain.IdentityFrom(c.Request.Context())
	if !ok || identity.SessionID == "" {
		detail(c, http.StatusUnauthorized, MsgCredentialsNotProvided)
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), identity.SessionID); err != nil {
		log.Printf("EVENT: logout_failed user_id=%d session_id=%s err=%v", identity.PrincipalID, identity.SessionID, err)
		detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Sessão encerrada."})
}
