package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Branch is a physical storefront location.
type Branch struct {
	ID             uuid.UUID
	Slug           string
	Name           string
	Address        string
	WhatsappNumber string
	OpeningHours   string
	IsActive       bool
	CreatedAt      time.Time
}

// Product is a catalog entry. Ownership of the catalog sits outside the
// ordering flow; this API only reads products.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	Category    string
	IsActive    bool
	CreatedAt   time.Time
}

// Account is an auth credential record.
type Account struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	CreatedAt      time.Time
}

// AdminUser links an account to a staff role. BranchID is null for
// super_admin; branch_admin always carries its branch.
type AdminUser struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	BranchID  pgtype.UUID
	Role      string
	CreatedAt time.Time
}

// Order is a persisted customer request. TotalPrice is a snapshot taken at
// submission; it is never recomputed.
type Order struct {
	ID             uuid.UUID
	BranchID       uuid.UUID
	CustomerName   string
	Notes          pgtype.Text
	DeliveryMethod string
	Address        pgtype.Text
	PaymentMethod  string
	TotalPrice     pgtype.Numeric
	Status         string
	CreatedAt      time.Time
}

// OrderItem is an immutable order line. UnitPrice is the product price at
// order time, not a live reference.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
}
