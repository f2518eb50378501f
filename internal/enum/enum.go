package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusNew       = "new"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ── Checkout options (CHECK constrained in DB) ──

const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
)

// ── Staff roles (CHECK constrained in DB) ──

const (
	RoleBranchAdmin = "branch_admin"
	RoleSuperAdmin  = "super_admin"
)

// ── Catalog categories (CHECK constrained in DB) ──

const (
	CategoryEmpanadas = "empanadas"
	CategoryPizzas    = "pizzas"
	CategoryBebidas   = "bebidas"
	CategoryPostres   = "postres"
)

// OrderStatuses lists every valid order status. The admin list cache keys
// iterate over this set, so it must stay in sync with the DB constraint.
var OrderStatuses = []string{
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsValidOrderStatus reports whether s is a known order status.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidDeliveryMethod reports whether s is a known delivery method.
func IsValidDeliveryMethod(s string) bool {
	return s == DeliveryMethodPickup || s == DeliveryMethodDelivery
}

// IsValidPaymentMethod reports whether s is a known payment method.
func IsValidPaymentMethod(s string) bool {
	return s == PaymentMethodCash || s == PaymentMethodTransfer
}
