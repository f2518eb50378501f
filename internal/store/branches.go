package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const branchColumns = `id, slug, name, address, whatsapp_number, opening_hours, is_active, created_at`

func scanBranch(row pgx.Row) (Branch, error) {
	var b Branch
	err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.Address, &b.WhatsappNumber, &b.OpeningHours, &b.IsActive, &b.CreatedAt)
	return b, err
}

// ListActiveBranches returns the branches shown on the public storefront.
func (q *Queries) ListActiveBranches(ctx context.Context) ([]Branch, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// ListBranches returns every branch, inactive included, for the super-admin panel.
func (q *Queries) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+branchColumns+` FROM branches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// GetBranch returns a branch by ID regardless of active flag.
func (q *Queries) GetBranch(ctx context.Context, id uuid.UUID) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = $1`, id))
}

// GetBranchBySlug returns an active branch by its URL slug.
func (q *Queries) GetBranchBySlug(ctx context.Context, slug string) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE slug = $1 AND is_active`, slug))
}

// GetBranchForOrder returns an active branch; orders may only target active branches.
func (q *Queries) GetBranchForOrder(ctx context.Context, id uuid.UUID) (Branch, error) {
	return scanBranch(q.db.QueryRow(ctx,
		`SELECT `+branchColumns+` FROM branches WHERE id = $1 AND is_active`, id))
}
