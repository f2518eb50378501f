package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/authz"
	"github.com/empanadas-abdonur/api/internal/middleware"
	"github.com/empanadas-abdonur/api/internal/store"
)

// AdminBranchStore defines the database methods needed by the admin branch
// endpoints. Satisfied by *store.Queries.
type AdminBranchStore interface {
	ListBranches(ctx context.Context) ([]store.Branch, error)
}

// AdminBranchHandler serves the branch directory of the staff panel.
// Only global admins may use it; branch admins already know their branch.
type AdminBranchHandler struct {
	store AdminBranchStore
	gate  authz.Authorizer
}

// NewAdminBranchHandler creates a new AdminBranchHandler.
func NewAdminBranchHandler(store AdminBranchStore, gate authz.Authorizer) *AdminBranchHandler {
	return &AdminBranchHandler{store: store, gate: gate}
}

// RegisterRoutes registers admin branch endpoints on the given Chi router.
func (h *AdminBranchHandler) RegisterRoutes(r chi.Router) {
	r.Get("/branches", h.List)
}

type adminBranchResponse struct {
	ID             string `json:"id"`
	Slug           string `json:"slug"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	WhatsappNumber string `json:"whatsapp_number"`
	OpeningHours   string `json:"opening_hours"`
	IsActive       bool   `json:"is_active"`
}

// List handles GET /admin/branches. Includes inactive branches, unlike the
// public listing.
func (h *AdminBranchHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	ident, err := h.gate.Resolve(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, authz.ErrNotAdmin) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin access required"})
			return
		}
		zap.L().Error("admin resolve failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !ident.IsGlobal() {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		return
	}

	branches, err := h.store.ListBranches(r.Context())
	if err != nil {
		zap.L().Error("list branches failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminBranchResponse, len(branches))
	for i, b := range branches {
		resp[i] = adminBranchResponse{
			ID:             b.ID.String(),
			Slug:           b.Slug,
			Name:           b.Name,
			Address:        b.Address,
			WhatsappNumber: b.WhatsappNumber,
			OpeningHours:   b.OpeningHours,
			IsActive:       b.IsActive,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"branches": resp})
}
