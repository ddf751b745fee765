package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/infrastructure/metrics"
)

// MetricsReader exposes the current metric values
type MetricsReader interface {
	Snapshot(ctx context.Context) (*metrics.Snapshot, error)
}

// AdminHandlers serves the approval queue and the metrics snapshot
type AdminHandlers struct {
	registration domain.RegistrationService
	metrics      MetricsReader
}

// NewAdminHandlers creates new admin handlers. reader may be nil.
func NewAdminHandlers(registration domain.RegistrationService, reader MetricsReader) *AdminHandlers {
	return &AdminHandlers{registration: registration, metrics: reader}
}

type pendingAccountResponse struct {
	PrincipalID uint                 `json:"principal_id"`
	Email       string               `json:"email"`
	Kind        domain.ProfileKind   `json:"kind"`
	CompanyName string               `json:"company_name,omitempty"`
	TaxID       string               `json:"tax_id,omitempty"`
	Phone       string               `json:"phone,omitempty"`
	Status      domain.ApprovalState `json:"status"`
	CreatedAt   string               `json:"created_at"`
}

// ListPending returns every profile awaiting approval, oldest first
func (h *AdminHandlers) ListPending(c *gin.Context) {
	pending, err := h.registration.ListPending(c.Request.Context())
	if err != nil {
		log.Printf("EVENT: list_pending_failed err=%v", err)
		detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	out := make([]pendingAccountResponse, 0, len(pending))
	for _, p := range pending {
		out = append(out, pendingAccountResponse{
			PrincipalID: p.Profile.PrincipalID,
			Email:       p.Email,
			Kind:        p.Profile.Kind,
			CompanyName: p.Profile.CompanyName,
			TaxID:       p.Profile.TaxID,
			Phone:       p.Profile.Phone,
			Status:      p.Profile.State(),
			CreatedAt:   p.Profile.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	c.JSON(http.StatusOK, out)
}

// Approve moves a principal's account from PENDING to APPROVED
func (h *AdminHandlers) Approve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		detail(c, http.StatusNotFound, "Não encontrado.")
		return
	}

	var approverID uint
	if identity, ok := domain.IdentityFrom(c.Request.Context()); ok {
		approverID = identity.PrincipalID
	}

	profile, err := h.registration.Approve(c.Request.Context(), uint(id), approverID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPrincipalNotFound), errors.Is(err, domain.ErrProfileNotFound):
			detail(c, http.StatusNotFound, "Não encontrado.")
		case errors.Is(err, domain.ErrAlreadyApproved):
			detail(c, http.StatusConflict, "Esta conta já foi aprovada.")
		default:
			log.Printf("EVENT: approval_failed user_id=%d approver_id=%d err=%v", id, approverID, err)
			detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		}
		return
	}

	log.Printf("EVENT: principal_approved user_id=%d kind=%s approver_id=%d", id, profile.Kind, approverID)
	c.JSON(http.StatusOK, gin.H{
		"principal_id": profile.PrincipalID,
		"kind":         profile.Kind,
		"status":       profile.State(),
	})
}

// Metrics returns the counters and histograms recorded so far
func (h *AdminHandlers) Metrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, metrics.Snapshot{Counters: map[string]int64{}, Histograms: map[string]metrics.Histogram{}})
		return
	}

	snap, err := h.metrics.Snapshot(c.Request.Context())
	if err != nil {
		log.Printf("EVENT: metrics_snapshot_failed err=%v", err)
		detail(c, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}
	c.JSON(http.StatusOK, snap)
}
