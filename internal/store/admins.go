package store

import (
	"context"

	"github.com/google/uuid"
)

// GetAccountByEmail returns an auth account for credential checks.
func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	var a Account
	err := q.db.QueryRow(ctx,
		`SELECT id, email, hashed_password, created_at FROM accounts WHERE email = $1`, email,
	).Scan(&a.ID, &a.Email, &a.HashedPassword, &a.CreatedAt)
	return a, err
}

// GetAccountByID returns an auth account by its ID.
func (q *Queries) GetAccountByID(ctx context.Context, id uuid.UUID) (Account, error) {
	var a Account
	err := q.db.QueryRow(ctx,
		`SELECT id, email, hashed_password, created_at FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.Email, &a.HashedPassword, &a.CreatedAt)
	return a, err
}

// GetAdminUserByAccount resolves the staff record linked to an auth account.
// No row means the caller has no admin rights at all.
func (q *Queries) GetAdminUserByAccount(ctx context.Context, accountID uuid.UUID) (AdminUser, error) {
	var u AdminUser
	err := q.db.QueryRow(ctx,
		`SELECT id, account_id, branch_id, role, created_at FROM admin_users WHERE account_id = $1`, accountID,
	).Scan(&u.ID, &u.AccountID, &u.BranchID, &u.Role, &u.CreatedAt)
	return u, err
}
