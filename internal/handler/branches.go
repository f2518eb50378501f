package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/store"
)

// BranchStore defines the database methods needed by public branch endpoints.
// Satisfied by *store.Queries; narrow interface for testability.
type BranchStore interface {
	ListActiveBranches(ctx context.Context) ([]store.Branch, error)
	GetBranchBySlug(ctx context.Context, slug string) (store.Branch, error)
}

// Openness supplies the periodically recomputed open/closed signal.
// Satisfied by *availability.Monitor.
type Openness interface {
	IsBranchOpen(id uuid.UUID) bool
}

// BranchHandler handles the public storefront branch endpoints.
type BranchHandler struct {
	store    BranchStore
	openness Openness
}

// NewBranchHandler creates a new BranchHandler.
func NewBranchHandler(store BranchStore, openness Openness) *BranchHandler {
	return &BranchHandler{store: store, openness: openness}
}

// RegisterRoutes registers the branch endpoints on the given Chi router.
// The {branch} segment carries the slug for the detail endpoint and the
// branch ID for the nested menu and order routes.
func (h *BranchHandler) RegisterRoutes(r chi.Router, nested func(chi.Router)) {
	r.Get("/", h.List)
	r.Route("/{branch}", func(r chi.Router) {
		r.Get("/", h.Get)
		nested(r)
	})
}

type branchResponse struct {
	ID             uuid.UUID `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	WhatsappNumber string    `json:"whatsapp_number"`
	OpeningHours   string    `json:"opening_hours"`
	IsOpen         bool      `json:"is_open"`
	CreatedAt      time.Time `json:"created_at"`
}

func (h *BranchHandler) toBranchResponse(b store.Branch) branchResponse {
	return branchResponse{
		ID:             b.ID,
		Slug:           b.Slug,
		Name:           b.Name,
		Address:        b.Address,
		WhatsappNumber: b.WhatsappNumber,
		OpeningHours:   b.OpeningHours,
		IsOpen:         h.openness.IsBranchOpen(b.ID),
		CreatedAt:      b.CreatedAt,
	}
}

// List handles GET /branches.
func (h *BranchHandler) List(w http.ResponseWriter, r *http.Request) {
	branches, err := h.store.ListActiveBranches(r.Context())
	if err != nil {
		zap.L().Error("list branches failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]branchResponse, len(branches))
	for i, b := range branches {
		resp[i] = h.toBranchResponse(b)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"branches": resp})
}

// Get handles GET /branches/{slug}.
func (h *BranchHandler) Get(w http.ResponseWriter, r *http.Request) {
	branch, err := h.store.GetBranchBySlug(r.Context(), chi.URLParam(r, "branch"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "branch not found"})
			return
		}
		zap.L().Error("get branch failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toBranchResponse(branch))
}
