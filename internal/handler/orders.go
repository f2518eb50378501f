package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/service"
	"github.com/empanadas-abdonur/api/internal/whatsapp"
)

// OrderServicer defines the service methods needed by the checkout handler.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderHandler handles the public checkout endpoint.
type OrderHandler struct {
	svc             OrderServicer
	whatsAppBaseURL string
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, whatsAppBaseURL string) *OrderHandler {
	return &OrderHandler{svc: svc, whatsAppBaseURL: whatsAppBaseURL}
}

// RegisterRoutes registers the checkout endpoint.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{id}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.Create)
}

// --- Request / Response types ---

type createOrderRequest struct {
	CustomerName   string                   `json:"customer_name"`
	Notes          string                   `json:"notes"`
	DeliveryMethod string                   `json:"delivery_method"`
	Address        string                   `json:"address"`
	PaymentMethod  string                   `json:"payment_method"`
	Items          []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	BranchID       uuid.UUID           `json:"branch_id"`
	CustomerName   string              `json:"customer_name"`
	Notes          *string             `json:"notes"`
	DeliveryMethod string              `json:"delivery_method"`
	Address        *string             `json:"address"`
	PaymentMethod  string              `json:"payment_method"`
	TotalPrice     string              `json:"total_price"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
}

// createOrderResponse extends orderResponse with the outbound deep link the
// storefront opens after checkout.
type createOrderResponse struct {
	orderResponse
	WhatsAppURL string `json:"whatsapp_url"`
}

// --- Handlers ---

// Create handles POST /branches/{id}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, err := uuid.Parse(chi.URLParam(r, "branch"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid branch ID"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CreateOrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		BranchID:       branchID,
		CustomerName:   req.CustomerName,
		Notes:          req.Notes,
		DeliveryMethod: req.DeliveryMethod,
		Address:        req.Address,
		PaymentMethod:  req.PaymentMethod,
		Items:          items,
	})
	if err != nil {
		if service.IsValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		zap.L().Error("create order failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create the order, please try again"})
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{
		orderResponse: toCreatedOrderResponse(result),
		WhatsAppURL:   h.buildWhatsAppURL(result),
	})
}

// --- Helpers ---

func toCreatedOrderResponse(result *service.CreateOrderResult) orderResponse {
	o := result.Order
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

	resp.Items = make([]orderItemResponse, len(result.Lines))
	for i, line := range result.Lines {
		resp.Items[i] = orderItemResponse{
			ID:        line.Item.ID,
			ProductID: line.Item.ProductID,
			Quantity:  line.Item.Quantity,
			UnitPrice: numericToString(line.Item.UnitPrice),
		}
	}

	return resp
}

func (h *OrderHandler) buildWhatsAppURL(result *service.CreateOrderResult) string {
	o := result.Order

	summary := whatsapp.Summary{
		BranchName:     result.Branch.Name,
		OrderID:        o.ID,
		CustomerName:   o.CustomerName,
		Total:          numericToDecimal(o.TotalPrice),
		DeliveryMethod: o.DeliveryMethod,
		PaymentMethod:  o.PaymentMethod,
	}
	if o.Address.Valid {
		summary.Address = o.Address.String
	}
	if o.Notes.Valid {
		summary.Notes = o.Notes.String
	}

	for _, line := range result.Lines {
		qty := decimal.NewFromInt32(line.Item.Quantity)
		summary.Lines = append(summary.Lines, whatsapp.Line{
			Quantity: line.Item.Quantity,
			Name:     line.ProductName,
			Amount:   numericToDecimal(line.Item.UnitPrice).Mul(qty),
		})
	}

	return whatsapp.Link(h.whatsAppBaseURL, result.Branch.WhatsappNumber, whatsapp.BuildMessage(summary))
}
