package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/empanadas-abdonur/api/internal/enum"
	"github.com/empanadas-abdonur/api/internal/store"
)

// ErrNotAdmin is returned when a caller has no staff record at all.
var ErrNotAdmin = errors.New("admin access required")

// AdminStore defines the database methods needed by the gate.
// Satisfied by *store.Queries; narrow interface for testability.
type AdminStore interface {
	GetAdminUserByAccount(ctx context.Context, accountID uuid.UUID) (store.AdminUser, error)
}

// Identity is a resolved staff identity. All role and branch-scope decisions
// go through its methods; nothing outside this package compares role strings.
type Identity struct {
	AdminID   uuid.UUID
	AccountID uuid.UUID
	BranchID  *uuid.UUID // nil for global scope
	Role      string
}

// IsGlobal reports whether the identity may act across all branches.
func (id Identity) IsGlobal() bool {
	return id.Role == enum.RoleSuperAdmin
}

// CanManageBranch reports whether the identity may view or mutate data
// belonging to the given branch.
func (id Identity) CanManageBranch(branchID uuid.UUID) bool {
	if id.IsGlobal() {
		return true
	}
	return id.BranchID != nil && *id.BranchID == branchID
}

// BranchFilter returns the branch a listing must be restricted to.
// Branch admins are always pinned to their own branch; a global identity
// keeps whatever filter was requested (nil meaning all branches).
func (id Identity) BranchFilter(requested *uuid.UUID) *uuid.UUID {
	if id.IsGlobal() {
		return requested
	}
	return id.BranchID
}

// Authorizer resolves a caller's staff identity. The production Gate reads
// admin_users; AllowAll is the auth-disabled strategy. The implementation is
// chosen once during process startup.
type Authorizer interface {
	Resolve(ctx context.Context, accountID uuid.UUID) (Identity, error)
}

// Gate is the database-backed Authorizer.
type Gate struct {
	store AdminStore
}

// NewGate creates a Gate over the given store.
func NewGate(store AdminStore) *Gate {
	return &Gate{store: store}
}

// Resolve looks up the staff record linked to the account. Absence of a
// record, or a branch_admin record missing its branch, is an authorization
// failure rather than an internal error.
func (g *Gate) Resolve(ctx context.Context, accountID uuid.UUID) (Identity, error) {
	u, err := g.store.GetAdminUserByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrNotAdmin
		}
		return Identity{}, err
	}

	ident := Identity{
		AdminID:   u.ID,
		AccountID: u.AccountID,
		Role:      u.Role,
	}
	if u.BranchID.Valid {
		branchID := uuid.UUID(u.BranchID.Bytes)
		ident.BranchID = &branchID
	}

	// A branch_admin without a branch cannot be scoped to anything.
	if ident.Role == enum.RoleBranchAdmin && ident.BranchID == nil {
		return Identity{}, ErrNotAdmin
	}

	return ident, nil
}

// AllowAll grants every caller a global identity. Development only.
type AllowAll struct{}

// NewAllowAll creates the auth-disabled Authorizer.
func NewAllowAll() *AllowAll {
	return &AllowAll{}
}

// Resolve returns a synthetic super_admin identity for any account.
func (a *AllowAll) Resolve(ctx context.Context, accountID uuid.UUID) (Identity, error) {
	return Identity{AccountID: accountID, Role: enum.RoleSuperAdmin}, nil
}
