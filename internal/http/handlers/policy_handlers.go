package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xbpneus/authgate/domain"
)

// PolicyHandlers manages route policies by role
type PolicyHandlers struct {
	policies domain.PolicyService
}

// NewPolicyHandlers creates new policy handlers
func NewPolicyHandlers(policies domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{policies: policies}
}

type policyRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

// List returns every stored policy rule
func (h *PolicyHandlers) List(c *gin.Context) {
	policies := h.policies.GetPolicies()
	if policies == nil {
		policies = [][]string{}
	}
	c.JSON(http.StatusOK, gin.H{"policies": policies})
}

// Add stores a policy rule for a role
func (h *PolicyHandlers) Add(c *gin.Context) {
	var r policyRequest
	if !bindJSON(c, &r) {
		return
	}
	if err := h.policies.AddPolicy(r.Role, r.Resource, r.Action); err != nil {
		policyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove deletes a policy rule for a role
func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r policyRequest
	if !bindJSON(c, &r) {
		return
	}
	if err := h.policies.RemovePolicy(r.Role, r.Resource, r.Action); err != nil {
		policyError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func policyError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrUnknownRole) {
		fieldError(c, "role", msgInvalid)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
