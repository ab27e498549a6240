package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wolfeidau/sitework/internal/tenant"
)

// scopeClause renders the tenant predicate for column, appending the bound tenant id to
// args. An unrestricted filter renders TRUE.
func scopeClause(filter tenant.Filter, column string, args []any) (string, []any) {
	if filter.Unrestricted {
		return "TRUE", args
	}
	args = append(args, filter.TenantID)
	return fmt.Sprintf("%s = $%d", column, len(args)), args
}

// owner is the stored ownership of a row, loaded under FOR UPDATE so the tenant guard can
// compare it with an incoming write.
type owner uuid.UUID

func (o owner) TenantID() uuid.UUID { return uuid.UUID(o) }

func (o *owner) SetTenantID(id uuid.UUID) { *o = owner(id) }

// lockOwner loads and row-locks the company_id of the row identified by id. The query
// must select a single company_id column. Returns notFound when no row matches.
func lockOwner(ctx context.Context, tx pgx.Tx, query string, id uuid.UUID, notFound error) (owner, error) {
	var companyID uuid.UUID
	if err := tx.QueryRow(ctx, query, id).Scan(&companyID); err != nil {
		if isNoRows(err) {
			return owner{}, notFound
		}
		return owner{}, fmt.Errorf("failed to lock row: %w", err)
	}
	return owner(companyID), nil
}

// guardedUpdate runs update inside a transaction after the tenant guard accepts incoming
// against the locked stored owner.
func guardedUpdate(ctx context.Context, db beginner, lockQuery string, id uuid.UUID, notFound error, incoming tenant.Owned, update func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	stored, err := lockOwner(ctx, tx, lockQuery, id, notFound)
	if err != nil {
		return err
	}

	if err := tenant.CheckUpdate(ctx, &stored, incoming); err != nil {
		return err
	}

	if err := update(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
