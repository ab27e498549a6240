package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/sitework/internal/store"
)

// uniqueConstraints maps unique constraint and index names to the sentinel they signal.
var uniqueConstraints = map[string]error{
	"companies_pkey":            store.ErrCompanyAlreadyExists,
	"idx_companies_single_root": store.ErrRootCompanyExists,
	"users_pkey":                store.ErrUserAlreadyExists,
	"idx_users_email_lower":     store.ErrUserAlreadyExists,
}

// foreignKeys maps foreign key constraint names to the sentinel they signal.
var foreignKeys = map[string]error{
	"companies_parent_company_id_fkey": store.ErrCompanyNotFound,
	"users_company_id_fkey":            store.ErrCompanyNotFound,
	"projects_company_id_fkey":         store.ErrCompanyNotFound,
	"tasks_company_id_fkey":            store.ErrCompanyNotFound,
	"tasks_project_id_fkey":            store.ErrProjectNotFound,
	"tasks_assignee_id_fkey":           store.ErrUserNotFound,
	"refresh_tokens_user_id_fkey":      store.ErrUserNotFound,
}

// mapPostgresError maps PostgreSQL-specific errors to sentinel errors.
// Returns the original error if it's not a PostgreSQL error or doesn't match known patterns.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if sentinel, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return sentinel
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.ForeignKeyViolation:
		if sentinel, ok := foreignKeys[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %s", sentinel, pgErr.Detail)
		}
		return fmt.Errorf("foreign key violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.CheckViolation:
		return fmt.Errorf("check constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return fmt.Errorf("transaction conflict (retryable): %w", err)

	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.CannotConnectNow,
		pgerrcode.SQLClientUnableToEstablishSQLConnection:
		return fmt.Errorf("database connection error: %w", err)

	case pgerrcode.AdminShutdown,
		pgerrcode.CrashShutdown:
		return fmt.Errorf("database server unavailable: %w", err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s (detail: %s, hint: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
