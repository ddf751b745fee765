package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbpneus/authgate/domain"
	"github.com/xbpneus/authgate/internal/infrastructure/metrics"
	"github.com/xbpneus/authgate/internal/mocks"
)

type fakeMetricsReader struct {
	snap *metrics.Snapshot
	err  error
}

func (f fakeMetricsReader) Snapshot(context.Context) (*metrics.Snapshot, error) {
	return f.snap, f.err
}

func adminRouter(h *AdminHandlers) *gin.Engine {
	r := gin.New()
	adm := r.Group("/admin", withIdentity(domain.Identity{PrincipalID: 1, Role: domain.RoleAdmin, SessionID: "s"}))
	adm.GET("/approvals", h.ListPending)
	adm.POST("/approvals/:id/approve", h.Approve)
	adm.GET("/metrics", h.Metrics)
	return r
}

func TestAdminHandlers_ListPending(t *testing.T) {
	registration := mocks.NewMockRegistrationService()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	registration.ListPendingFunc = func(context.Context) ([]domain.PendingAccount, error) {
		return []domain.PendingAccount{
			{
				Profile: domain.RoleProfile{PrincipalID: 2, Kind: domain.KindTransporter, CompanyName: "Trans Ltda", CreatedAt: created},
				Email:   "naoaprovado.transportador@teste.com",
			},
		}, nil
	}

	w := performRequest(adminRouter(NewAdminHandlers(registration, nil)), http.MethodGet, "/admin/approvals", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{
		"principal_id": 2,
		"email": "naoaprovado.transportador@teste.com",
		"kind": "transportador",
		"company_name": "Trans Ltda",
		"status": "PENDING",
		"created_at": "2026-03-01T12:00:00Z"
	}]`, w.Body.String())
}

func TestAdminHandlers_ListPending_Empty(t *testing.T) {
	w := performRequest(adminRouter(NewAdminHandlers(mocks.NewMockRegistrationService(), nil)), http.MethodGet, "/admin/approvals", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdminHandlers_Approve(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		serviceErr error
		wantStatus int
		wantCalled bool
	}{
		{name: "approved", path: "/admin/approvals/2/approve", wantStatus: http.StatusOK, wantCalled: true},
		{name: "unknown principal", path: "/admin/approvals/2/approve", serviceErr: domain.ErrPrincipalNotFound, wantStatus: http.StatusNotFound, wantCalled: true},
		{name: "principal without profile", path: "/admin/approvals/2/approve", serviceErr: domain.ErrProfileNotFound, wantStatus: http.StatusNotFound, wantCalled: true},
		{name: "already approved", path: "/admin/approvals/2/approve", serviceErr: domain.ErrAlreadyApproved, wantStatus: http.StatusConflict, wantCalled: true},
		{name: "storage failure", path: "/admin/approvals/2/approve", serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantCalled: true},
		{name: "non-numeric id", path: "/admin/approvals/abc/approve", wantStatus: http.StatusNotFound},
		{name: "zero id", path: "/admin/approvals/0/approve", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registration := mocks.NewMockRegistrationService()
			called := false
			registration.ApproveFunc = func(ctx context.Context, principalID, approverID uint) (*domain.RoleProfile, error) {
				called = true
				assert.Equal(t, uint(2), principalID)
				assert.Equal(t, uint(1), approverID)
				if tt.serviceErr != nil {
					return nil, fmt.Errorf("failed to approve principal %d: %w", principalID, tt.serviceErr)
				}
				return &domain.RoleProfile{PrincipalID: 2, Kind: domain.KindTransporter, Aprovado: true}, nil
			}

			w := performRequest(adminRouter(NewAdminHandlers(registration, nil)), http.MethodPost, tt.path, nil)

			assert.Equal(t, tt.wantStatus, w.Code, "body: %s", w.Body.String())
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, map[string]interface{}{
					"principal_id": float64(2),
					"kind":         "transportador",
					"status":       "APPROVED",
				}, decodeBody(t, w))
			}
		})
	}
}

func TestAdminHandlers_Metrics(t *testing.T) {
	t.Run("snapshot", func(t *testing.T) {
		reader := fakeMetricsReader{snap: &metrics.Snapshot{
			Counters:   map[string]int64{"auth.login.success": 3},
			Histograms: map[string]metrics.Histogram{"auth.login.duration_ms": {Count: 3, Sum: 30, Max: 12}},
		}}
		w := performRequest(adminRouter(NewAdminHandlers(mocks.NewMockRegistrationService(), reader)), http.MethodGet, "/admin/metrics", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"counters": {"auth.login.success": 3},
			"histograms": {"auth.login.duration_ms": {"count": 3, "sum": 30, "max": 12}}
		}`, w.Body.String())
	})

	t.Run("reader failure", func(t *testing.T) {
		reader := fakeMetricsReader{err: errors.New("redis down")}
		w := performRequest(adminRouter(NewAdminHandlers(mocks.NewMockRegistrationService(), reader)), http.MethodGet, "/admin/metrics", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no reader", func(t *testing.T) {
		w := performRequest(adminRouter(NewAdminHandlers(mocks.NewMockRegistrationService(), nil)), http.MethodGet, "/admin/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"counters": {}, "histograms": {}}`, w.Body.String())
	})
}
