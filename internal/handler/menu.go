package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/store"
)

// MenuStore defines the database methods needed by the menu endpoint.
// Satisfied by *store.Queries; narrow interface for testability.
type MenuStore interface {
	GetBranchForOrder(ctx context.Context, id uuid.UUID) (store.Branch, error)
	ListActiveProducts(ctx context.Context) ([]store.Product, error)
}

// MenuHandler serves the per-branch menu page data.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers the menu endpoint.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{id}/menu
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
}

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
}

func toProductResponse(p store.Product) productResponse {
	resp := productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    numericToString(p.Price),
		Category: p.Category,
	}
	if p.Description.Valid {
		resp.Description = &p.Description.String
	}
	return resp
}

// Get handles GET /branches/{id}/menu. Products are shared across branches;
// the branch lookup only confirms the storefront exists and is active.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	branchID, err := uuid.Parse(chi.URLParam(r, "branch"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid branch ID"})
		return
	}

	branch, err := h.store.GetBranchForOrder(r.Context(), branchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch not found"})
			return
		}
		zap.L().Error("get branch for menu failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	products, err := h.store.ListActiveProducts(r.Context())
	if err != nil {
		zap.L().Error("list products failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"branch": map[string]interface{}{
			"id":   branch.ID,
			"slug": branch.Slug,
			"name": branch.Name,
		},
		"products": resp,
	})
}
