package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/authz"
	"github.com/empanadas-abdonur/api/internal/enum"
	"github.com/empanadas-abdonur/api/internal/metrics"
	"github.com/empanadas-abdonur/api/internal/middleware"
	"github.com/empanadas-abdonur/api/internal/service"
	"github.com/empanadas-abdonur/api/internal/store"
)

// AdminOrderStore defines the database methods needed by the admin panel
// order endpoints. Satisfied by *store.Queries.
type AdminOrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrders(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]store.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg store.UpdateOrderStatusParams) (store.Order, error)
}

// ListCache caches rendered order listings. Satisfied by *cache.OrderListCache.
type ListCache interface {
	GetOrderList(ctx context.Context, branchID *uuid.UUID, status string) ([]byte, bool)
	SetOrderList(ctx context.Context, branchID *uuid.UUID, status string, payload []byte)
	InvalidateOrders(ctx context.Context, branchID uuid.UUID)
}

// AdminOrderHandler handles the staff panel order endpoints. Every request
// resolves the caller through the authorization gate; cross-branch access
// and nonexistent orders are indistinguishable in the responses.
type AdminOrderHandler struct {
	store AdminOrderStore
	gate  authz.Authorizer
	cache ListCache
}

// NewAdminOrderHandler creates a new AdminOrderHandler. cache may be nil.
func NewAdminOrderHandler(store AdminOrderStore, gate authz.Authorizer, cache ListCache) *AdminOrderHandler {
	return &AdminOrderHandler{store: store, gate: gate, cache: cache}
}

// RegisterRoutes registers admin order endpoints on the given Chi router.
// Expected to be mounted inside the authenticated /admin subrouter.
func (h *AdminOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Patch("/orders/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type orderDetailResponse struct {
	orderResponse
}

// --- Handlers ---

// List handles GET /admin/orders?status=&branch_id=.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.resolveIdentity(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !enum.IsValidOrderStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	var requested *uuid.UUID
	if s := r.URL.Query().Get("branch_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid branch ID"})
			return
		}
		requested = &id
	}

	// Branch admins are pinned to their own branch no matter what filter
	// they request; only a global identity may browse other branches.
	branchID := ident.BranchFilter(requested)

	if h.cache != nil {
		if payload, hit := h.cache.GetOrderList(r.Context(), branchID, status); hit {
			metrics.AdminCacheHitsTotal.WithLabelValues("hit").Inc()
			writeRawJSON(w, http.StatusOK, payload)
			return
		}
		metrics.AdminCacheHitsTotal.WithLabelValues("miss").Inc()
	}

	params := store.ListOrdersParams{}
	if branchID != nil {
		params.BranchID = pgtype.UUID{Bytes: *branchID, Valid: true}
	}
	if status != "" {
		params.Status = pgtype.Text{String: status, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		zap.L().Error("list orders failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := orderListResponse{Orders: make([]orderResponse, len(orders))}
	for i, o := range orders {
		resp.Orders[i] = dbOrderToResponse(o)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		zap.L().Error("encode order list failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.cache != nil {
		h.cache.SetOrderList(r.Context(), branchID, status, payload)
	}

	writeRawJSON(w, http.StatusOK, payload)
}

// Get handles GET /admin/orders/{id}.
func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.resolveIdentity(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, ok := h.fetchScopedOrder(w, r, ident, orderID)
	if !ok {
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		zap.L().Error("list order items failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := dbOrderToResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, item := range items {
		resp.Items[i] = orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: numericToString(item.UnitPrice),
		}
	}

	writeJSON(w, http.StatusOK, orderDetailResponse{orderResponse: resp})
}

// UpdateStatus handles PATCH /admin/orders/{id}/status.
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.resolveIdentity(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	if !enum.IsValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, ok := h.fetchScopedOrder(w, r, ident, orderID)
	if !ok {
		return
	}

	if err := service.ValidateStatusTransition(current.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	// Conditional update: the row must still hold the status we just read,
	// so two admins racing on the same order cannot double-apply.
	updated, err := h.store.UpdateOrderStatus(r.Context(), store.UpdateOrderStatusParams{
		ID:             orderID,
		Status:         req.Status,
		ExpectedStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order status changed, please retry"})
			return
		}
		zap.L().Error("update order status failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	metrics.OrderStatusTransitionsTotal.WithLabelValues(current.Status, updated.Status).Inc()

	if h.cache != nil {
		h.cache.InvalidateOrders(r.Context(), updated.BranchID)
	}

	writeJSON(w, http.StatusOK, dbOrderToResponse(updated))
}

// --- Helpers ---

func (h *AdminOrderHandler) resolveIdentity(w http.ResponseWriter, r *http.Request) (authz.Identity, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return authz.Identity{}, false
	}

	ident, err := h.gate.Resolve(r.Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, authz.ErrNotAdmin) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin access required"})
			return authz.Identity{}, false
		}
		zap.L().Error("admin resolve failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return authz.Identity{}, false
	}

	return ident, true
}

// fetchScopedOrder loads an order and applies branch scoping. An order in
// another admin's branch produces exactly the not-found response, so the
// panel cannot be probed for other branches' order IDs.
func (h *AdminOrderHandler) fetchScopedOrder(w http.ResponseWriter, r *http.Request, ident authz.Identity, orderID uuid.UUID) (store.Order, bool) {
	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return store.Order{}, false
		}
		zap.L().Error("get order failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return store.Order{}, false
	}

	if !ident.CanManageBranch(order.BranchID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return store.Order{}, false
	}

	return order, true
}

func dbOrderToResponse(o store.Order) orderResponse {
	resp := orderResponse{
		ID:             o.ID,
		BranchID:       o.BranchID,
		CustomerName:   o.CustomerName,
		DeliveryMethod: o.DeliveryMethod,
		PaymentMethod:  o.PaymentMethod,
		TotalPrice:     numericToString(o.TotalPrice),
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	if o.Address.Valid {
		resp.Address = &o.Address.String
	}
	resp.Items = []orderItemResponse{}
	return resp
}
