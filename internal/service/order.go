package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/cart"
	"github.com/empanadas-abdonur/api/internal/enum"
	"github.com/empanadas-abdonur/api/internal/metrics"
	"github.com/empanadas-abdonur/api/internal/store"
)

// Errors returned by the order service.
var (
	ErrMissingCustomerName   = errors.New("customer name is required")
	ErrMissingAddress        = errors.New("address is required for delivery orders")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrBelowMinimum          = errors.New("order is below the minimum item count")
	ErrInvalidQuantity       = errors.New("quantity must be > 0")
	ErrInvalidProductID      = errors.New("invalid product_id")
	ErrProductNotFound       = errors.New("product not found")
	ErrBranchNotFound        = errors.New("branch not found")
	ErrInvalidDeliveryMethod = errors.New("invalid delivery_method")
	ErrInvalidPaymentMethod  = errors.New("invalid payment_method")
)

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *store.Queries; narrow interface for testability.
type OrderStore interface {
	GetBranchForOrder(ctx context.Context, id uuid.UUID) (store.Branch, error)
	GetProductForOrder(ctx context.Context, id uuid.UUID) (store.Product, error)
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	CreateOrderItem(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// OrderCache invalidates cached admin order listings after a write.
type OrderCache interface {
	InvalidateOrders(ctx context.Context, branchID uuid.UUID)
}

// CreateOrderRequest is the checkout submission.
type CreateOrderRequest struct {
	BranchID       uuid.UUID
	CustomerName   string
	Notes          string
	DeliveryMethod string
	Address        string
	PaymentMethod  string
	Items          []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single cart line. Only product identity and
// quantity are trusted from the client; prices are read server-side.
type CreateOrderItemRequest struct {
	ProductID string
	Quantity  int32
}

// OrderLine pairs a persisted item with its product name for rendering the
// WhatsApp summary.
type OrderLine struct {
	Item        store.OrderItem
	ProductName string
}

// CreateOrderResult is the created order with its branch and lines.
type CreateOrderResult struct {
	Order  store.Order
	Branch store.Branch
	Lines  []OrderLine
}

// OrderService validates checkout submissions and persists orders.
type OrderService struct {
	store    OrderStore
	cache    OrderCache
	minItems int
}

// NewOrderService creates an OrderService. cache may be nil in tests.
func NewOrderService(store OrderStore, cache OrderCache, minItems int) *OrderService {
	if minItems <= 0 {
		minItems = cart.DefaultMinItems
	}
	return &OrderService{store: store, cache: cache, minItems: minItems}
}

// preparedItem holds a validated line awaiting insert.
type preparedItem struct {
	productID   uuid.UUID
	productName string
	quantity    int32
	unitPrice   decimal.Decimal
}

// CreateOrder validates the submission, snapshots prices, and persists the
// order followed by its items. The item inserts are not wrapped in a
// transaction; a failed item insert triggers a compensating delete of the
// order row, so a zero-item order can exist only inside that window.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	// --- Validate the customer form, first failing check wins ---
	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return nil, s.reject(ErrMissingCustomerName)
	}

	address := strings.TrimSpace(req.Address)
	if req.DeliveryMethod == enum.DeliveryMethodDelivery && address == "" {
		return nil, s.reject(ErrMissingAddress)
	}

	if len(req.Items) == 0 {
		return nil, s.reject(ErrEmptyCart)
	}

	// The cart enforces the minimum client-side; re-check here so a crafted
	// request cannot sidestep it.
	totalUnits := int32(0)
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, s.reject(fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity))
		}
		totalUnits += item.Quantity
	}
	if int(totalUnits) < s.minItems {
		return nil, s.reject(ErrBelowMinimum)
	}

	if !enum.IsValidDeliveryMethod(req.DeliveryMethod) {
		return nil, s.reject(ErrInvalidDeliveryMethod)
	}
	if !enum.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, s.reject(ErrInvalidPaymentMethod)
	}

	// --- Resolve the branch ---
	branch, err := s.store.GetBranchForOrder(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.reject(ErrBranchNotFound)
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}

	// --- Resolve products and snapshot prices ---
	totalPrice := decimal.Zero
	prepared := make([]preparedItem, 0, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, s.reject(fmt.Errorf("items[%d]: %w", i, ErrInvalidProductID))
		}

		product, err := s.store.GetProductForOrder(ctx, productID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, s.reject(fmt.Errorf("items[%d]: %w", i, ErrProductNotFound))
			}
			return nil, fmt.Errorf("items[%d]: get product: %w", i, err)
		}

		unitPrice := numericToDecimal(product.Price)
		totalPrice = totalPrice.Add(unitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
		prepared = append(prepared, preparedItem{
			productID:   productID,
			productName: product.Name,
			quantity:    item.Quantity,
			unitPrice:   unitPrice,
		})
	}

	// --- Insert order, then items, with manual rollback ---
	start := time.Now()

	notes := pgtype.Text{}
	if trimmed := strings.TrimSpace(req.Notes); trimmed != "" {
		notes = pgtype.Text{String: trimmed, Valid: true}
	}

	orderAddress := pgtype.Text{}
	if req.DeliveryMethod == enum.DeliveryMethodDelivery {
		orderAddress = pgtype.Text{String: address, Valid: true}
	}

	order, err := s.store.CreateOrder(ctx, store.CreateOrderParams{
		BranchID:       branch.ID,
		CustomerName:   customerName,
		Notes:          notes,
		DeliveryMethod: req.DeliveryMethod,
		Address:        orderAddress,
		PaymentMethod:  req.PaymentMethod,
		TotalPrice:     decimalToNumeric(totalPrice),
		Status:         enum.OrderStatusNew,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	lines := make([]OrderLine, 0, len(prepared))
	for _, p := range prepared {
		item, err := s.store.CreateOrderItem(ctx, store.CreateOrderItemParams{
			OrderID:   order.ID,
			ProductID: p.productID,
			Quantity:  p.quantity,
			UnitPrice: decimalToNumeric(p.unitPrice),
		})
		if err != nil {
			s.rollback(ctx, order.ID)
			return nil, fmt.Errorf("create order items: %w", err)
		}
		lines = append(lines, OrderLine{Item: item, ProductName: p.productName})
	}

	metrics.OrderCreateLatency.Observe(time.Since(start).Seconds())
	metrics.OrdersCreatedTotal.Inc()

	if s.cache != nil {
		s.cache.InvalidateOrders(ctx, branch.ID)
	}

	return &CreateOrderResult{Order: order, Branch: branch, Lines: lines}, nil
}

// rollback deletes the order created before an item insert failed. Its own
// failure is logged but never masks the original error; the orphan row has
// no items and the cascade delete can be retried by hand.
func (s *OrderService) rollback(ctx context.Context, orderID uuid.UUID) {
	metrics.OrderRollbacksTotal.Inc()
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		zap.L().Error("compensating order delete failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
	}
}

func (s *OrderService) reject(err error) error {
	metrics.OrdersRejectedTotal.WithLabelValues(rejectionReason(err)).Inc()
	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCustomerName):
		return "missing_customer_name"
	case errors.Is(err, ErrMissingAddress):
		return "missing_address"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrInvalidProductID), errors.Is(err, ErrProductNotFound):
		return "bad_product"
	case errors.Is(err, ErrBranchNotFound):
		return "bad_branch"
	default:
		return "other"
	}
}

// IsValidationError reports whether the error is a checkout validation
// failure that should surface as a 400 rather than a 500.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingCustomerName) ||
		errors.Is(err, ErrMissingAddress) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrBelowMinimum) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidProductID) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrBranchNotFound) ||
		errors.Is(err, ErrInvalidDeliveryMethod) ||
		errors.Is(err, ErrInvalidPaymentMethod)
}
