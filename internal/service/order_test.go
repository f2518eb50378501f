package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/empanadas-abdonur/api/internal/enum"
	"github.com/empanadas-abdonur/api/internal/service"
	"github.com/empanadas-abdonur/api/internal/store"
)

// --- Mock OrderStore ---

type mockOrderStore struct {
	getBranchFn       func(ctx context.Context, id uuid.UUID) (store.Branch, error)
	getProductFn      func(ctx context.Context, id uuid.UUID) (store.Product, error)
	createOrderFn     func(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	createOrderItemFn func(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error)
	deleteOrderFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockOrderStore) GetBranchForOrder(ctx context.Context, id uuid.UUID) (store.Branch, error) {
	if m.getBranchFn != nil {
		return m.getBranchFn(ctx, id)
	}
	return store.Branch{}, pgx.ErrNoRows
}

func (m *mockOrderStore) GetProductForOrder(ctx context.Context, id uuid.UUID) (store.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(ctx, id)
	}
	return store.Product{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, arg)
	}
	return store.Order{}, errors.New("unexpected CreateOrder call")
}

func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error) {
	if m.createOrderItemFn != nil {
		return m.createOrderItemFn(ctx, arg)
	}
	return store.OrderItem{}, errors.New("unexpected CreateOrderItem call")
}

func (m *mockOrderStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if m.deleteOrderFn != nil {
		return m.deleteOrderFn(ctx, id)
	}
	return nil
}

// --- Mock OrderCache ---

type mockOrderCache struct {
	invalidated []uuid.UUID
}

func (m *mockOrderCache) InvalidateOrders(ctx context.Context, branchID uuid.UUID) {
	m.invalidated = append(m.invalidated, branchID)
}

// --- Test helpers ---

func testNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

type catalog map[uuid.UUID]store.Product

func (c catalog) get(ctx context.Context, id uuid.UUID) (store.Product, error) {
	p, ok := c[id]
	if !ok {
		return store.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func testBranch(id uuid.UUID) store.Branch {
	return store.Branch{
		ID:             id,
		Slug:           "centro",
		Name:           "Abdonur Centro",
		WhatsappNumber: "5491155550001",
		IsActive:       true,
	}
}

// validRequest builds a submission that passes every check: 8 units of one
// product, pickup, cash.
func validRequest(branchID uuid.UUID, productID uuid.UUID) service.CreateOrderRequest {
	return service.CreateOrderRequest{
		BranchID:       branchID,
		CustomerName:   "Lucía",
		DeliveryMethod: enum.DeliveryMethodPickup,
		PaymentMethod:  enum.PaymentMethodCash,
		Items: []service.CreateOrderItemRequest{
			{ProductID: productID.String(), Quantity: 8},
		},
	}
}

func happyStore(t *testing.T, branchID uuid.UUID, products catalog) *mockOrderStore {
	t.Helper()
	orderID := uuid.New()
	return &mockOrderStore{
		getBranchFn: func(ctx context.Context, id uuid.UUID) (store.Branch, error) {
			if id != branchID {
				return store.Branch{}, pgx.ErrNoRows
			}
			return testBranch(branchID), nil
		},
		getProductFn: products.get,
		createOrderFn: func(ctx context.Context, arg store.CreateOrderParams) (store.Order, error) {
			return store.Order{
				ID:             orderID,
				BranchID:       arg.BranchID,
				CustomerName:   arg.CustomerName,
				DeliveryMethod: arg.DeliveryMethod,
				PaymentMethod:  arg.PaymentMethod,
				TotalPrice:     arg.TotalPrice,
				Status:         arg.Status,
			}, nil
		},
		createOrderItemFn: func(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error) {
			return store.OrderItem{
				ID:        uuid.New(),
				OrderID:   arg.OrderID,
				ProductID: arg.ProductID,
				Quantity:  arg.Quantity,
				UnitPrice: arg.UnitPrice,
			}, nil
		},
	}
}

func numericString(t *testing.T, n pgtype.Numeric) string {
	t.Helper()
	v, err := n.Value()
	if err != nil {
		t.Fatalf("numeric value: %v", err)
	}
	s, ok := v.(string)
	if !ok {
		t.Fatalf("numeric value is %T, want string", v)
	}
	return s
}

// --- Tests ---

func TestCreateOrder_HappyPath(t *testing.T) {
	branchID := uuid.New()
	carne := uuid.New()
	pollo := uuid.New()
	products := catalog{
		carne: {ID: carne, Name: "Empanada de Carne", Price: testNumeric(t, "1500.00"), IsActive: true},
		pollo: {ID: pollo, Name: "Empanada de Pollo", Price: testNumeric(t, "1400.00"), IsActive: true},
	}

	st := happyStore(t, branchID, products)
	cache := &mockOrderCache{}
	svc := service.NewOrderService(st, cache, 8)

	req := service.CreateOrderRequest{
		BranchID:       branchID,
		CustomerName:   "  Lucía  ",
		Notes:          "timbre roto",
		DeliveryMethod: enum.DeliveryMethodDelivery,
		Address:        "Av. San Martín 1250",
		PaymentMethod:  enum.PaymentMethodTransfer,
		Items: []service.CreateOrderItemRequest{
			{ProductID: carne.String(), Quantity: 6},
			{ProductID: pollo.String(), Quantity: 2},
		},
	}

	result, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if result.Order.CustomerName != "Lucía" {
		t.Errorf("customer name not trimmed: got %q", result.Order.CustomerName)
	}
	if result.Order.Status != enum.OrderStatusNew {
		t.Errorf("status: got %q, want %q", result.Order.Status, enum.OrderStatusNew)
	}
	// 6 * 1500 + 2 * 1400
	if got := numericString(t, result.Order.TotalPrice); got != "11800" && got != "11800.00" {
		t.Errorf("total price: got %s, want 11800", got)
	}
	if len(result.Lines) != 2 {
		t.Fatalf("lines: got %d, want 2", len(result.Lines))
	}
	if result.Lines[0].ProductName != "Empanada de Carne" {
		t.Errorf("line 0 name: got %q", result.Lines[0].ProductName)
	}
	if result.Branch.ID != branchID {
		t.Errorf("branch: got %s, want %s", result.Branch.ID, branchID)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != branchID {
		t.Errorf("cache invalidations: got %v, want [%s]", cache.invalidated, branchID)
	}
}

func TestCreateOrder_ValidationOrder(t *testing.T) {
	branchID := uuid.New()
	productID := uuid.New()

	// An otherwise broken submission must fail on the first check in order:
	// name, then address, then empty cart.
	base := service.CreateOrderRequest{
		BranchID:       branchID,
		CustomerName:   "   ",
		DeliveryMethod: enum.DeliveryMethodDelivery,
		Address:        "",
		Items:          nil,
	}

	svc := service.NewOrderService(&mockOrderStore{}, nil, 8)

	_, err := svc.CreateOrder(context.Background(), base)
	if !errors.Is(err, service.ErrMissingCustomerName) {
		t.Errorf("step 1: got %v, want ErrMissingCustomerName", err)
	}

	base.CustomerName = "Lucía"
	_, err = svc.CreateOrder(context.Background(), base)
	if !errors.Is(err, service.ErrMissingAddress) {
		t.Errorf("step 2: got %v, want ErrMissingAddress", err)
	}

	base.Address = "Av. San Martín 1250"
	_, err = svc.CreateOrder(context.Background(), base)
	if !errors.Is(err, service.ErrEmptyCart) {
		t.Errorf("step 3: got %v, want ErrEmptyCart", err)
	}

	base.Items = []service.CreateOrderItemRequest{{ProductID: productID.String(), Quantity: 3}}
	_, err = svc.CreateOrder(context.Background(), base)
	if !errors.Is(err, service.ErrBelowMinimum) {
		t.Errorf("step 4: got %v, want ErrBelowMinimum", err)
	}
}

func TestCreateOrder_PickupDoesNotRequireAddress(t *testing.T) {
	branchID := uuid.New()
	productID := uuid.New()
	products := catalog{
		productID: {ID: productID, Name: "Empanada de Carne", Price: testNumeric(t, "1500.00")},
	}

	svc := service.NewOrderService(happyStore(t, branchID, products), nil, 8)

	req := validRequest(branchID, productID)
	req.Address = ""

	if _, err := svc.CreateOrder(context.Background(), req); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
}

func TestCreateOrder_RejectsNonPositiveQuantity(t *testing.T) {
	branchID := uuid.New()
	svc := service.NewOrderService(&mockOrderStore{}, nil, 8)

	req := validRequest(branchID, uuid.New())
	req.Items[0].Quantity = 0

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, service.ErrInvalidQuantity) {
		t.Errorf("got %v, want ErrInvalidQuantity", err)
	}
}

func TestCreateOrder_MinimumCountsUnitsAcrossLines(t *testing.T) {
	branchID := uuid.New()
	carne := uuid.New()
	pollo := uuid.New()
	products := catalog{
		carne: {ID: carne, Name: "Empanada de Carne", Price: testNumeric(t, "1500.00")},
		pollo: {ID: pollo, Name: "Empanada de Pollo", Price: testNumeric(t, "1400.00")},
	}

	svc := service.NewOrderService(happyStore(t, branchID, products), nil, 8)

	req := validRequest(branchID, carne)
	req.Items = []service.CreateOrderItemRequest{
		{ProductID: carne.String(), Quantity: 5},
		{ProductID: pollo.String(), Quantity: 3},
	}

	if _, err := svc.CreateOrder(context.Background(), req); err != nil {
		t.Fatalf("8 units across two lines rejected: %v", err)
	}
}

func TestCreateOrder_InvalidMethods(t *testing.T) {
	branchID := uuid.New()
	svc := service.NewOrderService(&mockOrderStore{}, nil, 8)

	req := validRequest(branchID, uuid.New())
	req.DeliveryMethod = "drone"
	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, service.ErrInvalidDeliveryMethod) {
		t.Errorf("delivery: got %v, want ErrInvalidDeliveryMethod", err)
	}

	req = validRequest(branchID, uuid.New())
	req.PaymentMethod = "crypto"
	_, err = svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, service.ErrInvalidPaymentMethod) {
		t.Errorf("payment: got %v, want ErrInvalidPaymentMethod", err)
	}
}

func TestCreateOrder_BranchNotFound(t *testing.T) {
	svc := service.NewOrderService(&mockOrderStore{}, nil, 8)

	_, err := svc.CreateOrder(context.Background(), validRequest(uuid.New(), uuid.New()))
	if !errors.Is(err, service.ErrBranchNotFound) {
		t.Errorf("got %v, want ErrBranchNotFound", err)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	branchID := uuid.New()
	svc := service.NewOrderService(happyStore(t, branchID, catalog{}), nil, 8)

	_, err := svc.CreateOrder(context.Background(), validRequest(branchID, uuid.New()))
	if !errors.Is(err, service.ErrProductNotFound) {
		t.Errorf("got %v, want ErrProductNotFound", err)
	}
}

func TestCreateOrder_MalformedProductID(t *testing.T) {
	branchID := uuid.New()
	products := catalog{}
	svc := service.NewOrderService(happyStore(t, branchID, products), nil, 8)

	req := validRequest(branchID, uuid.New())
	req.Items[0].ProductID = "not-a-uuid"

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, service.ErrInvalidProductID) {
		t.Errorf("got %v, want ErrInvalidProductID", err)
	}
}

func TestCreateOrder_ServerPriceWinsOverClient(t *testing.T) {
	branchID := uuid.New()
	productID := uuid.New()
	products := catalog{
		productID: {ID: productID, Name: "Empanada de Carne", Price: testNumeric(t, "1500.00")},
	}

	var captured store.CreateOrderParams
	st := happyStore(t, branchID, products)
	inner := st.createOrderFn
	st.createOrderFn = func(ctx context.Context, arg store.CreateOrderParams) (store.Order, error) {
		captured = arg
		return inner(ctx, arg)
	}

	svc := service.NewOrderService(st, nil, 8)
	if _, err := svc.CreateOrder(context.Background(), validRequest(branchID, productID)); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// 8 * 1500, from the catalog, whatever the client claimed.
	if got := numericString(t, captured.TotalPrice); got != "12000" && got != "12000.00" {
		t.Errorf("total price: got %s, want 12000", got)
	}
}

func TestCreateOrder_ItemInsertFailureRollsBackOrder(t *testing.T) {
	branchID := uuid.New()
	productID := uuid.New()
	products := catalog{
		productID: {ID: productID, Name: "Empanada de Carne", Price: testNumeric(t, "1500.00")},
	}

	insertErr := errors.New("unique violation")
	var deleted []uuid.UUID
	var createdOrderID uuid.UUID

	st := happyStore(t, branchID, products)
	inner := st.createOrderFn
	st.createOrderFn = func(ctx context.Context, arg store.CreateOrderParams) (store.Order, error) {
		o, err := inner(ctx, arg)
		createdOrderID = o.ID
		return o, err
	}
	st.createOrderItemFn = func(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error) {
		return store.OrderItem{}, insertErr
	}
	st.deleteOrderFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = append(deleted, id)
		return nil
	}

	cache := &mockOrderCache{}
	svc := service.NewOrderService(st, cache, 8)

	_, err := svc.CreateOrder(context.Background(), validRequest(branchID, productID))
	if !errors.Is(err, insertErr) {
		t.Fatalf("got %v, want the item insert error", err)
	}
	if len(deleted) != 1 || deleted[0] != createdOrderID {
		t.Errorf("compensating delete: got %v, want [%s]", deleted, createdOrderID)
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("cache invalidated on failed order: %v", cache.invalidated)
	}
}

func TestCreateOrder_RollbackFailureStillReturnsOriginalError(t *testing.T) {
	branchID := uuid.New()
	productID := uuid.New()
	products := catalog{
		productID: {ID: productID, Name: "Empanada de Carne", Price: testNumeric(t, "1500.00")},
	}

	insertErr := errors.New("unique violation")
	st := happyStore(t, branchID, products)
	st.createOrderItemFn = func(ctx context.Context, arg store.CreateOrderItemParams) (store.OrderItem, error) {
		return store.OrderItem{}, insertErr
	}
	st.deleteOrderFn = func(ctx context.Context, id uuid.UUID) error {
		return errors.New("connection lost")
	}

	svc := service.NewOrderService(st, nil, 8)

	_, err := svc.CreateOrder(context.Background(), validRequest(branchID, productID))
	if !errors.Is(err, insertErr) {
		t.Errorf("got %v, want the item insert error, not the rollback error", err)
	}
}

func TestIsValidationError(t *testing.T) {
	for _, err := range []error{
		service.ErrMissingCustomerName,
		service.ErrMissingAddress,
		service.ErrEmptyCart,
		service.ErrBelowMinimum,
		service.ErrInvalidQuantity,
		service.ErrInvalidProductID,
		service.ErrProductNotFound,
		service.ErrBranchNotFound,
		service.ErrInvalidDeliveryMethod,
		service.ErrInvalidPaymentMethod,
	} {
		if !service.IsValidationError(err) {
			t.Errorf("IsValidationError(%v): got false, want true", err)
		}
	}

	if service.IsValidationError(errors.New("connection refused")) {
		t.Error("IsValidationError(infra error): got true, want false")
	}
}
