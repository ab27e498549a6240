package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

const userColumns = `user_id, company_id, email, name, password_hash, role, is_active, created_at, updated_at`

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
// It shares the connection pool with other stores.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := tenant.PrepareCreate(ctx, user); err != nil {
		return err
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		user.ID,
		user.CompanyID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapPostgresError(err)
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("company_id", user.CompanyID.String()).
		Str("role", string(user.Role)).
		Msg("Created user")

	return nil
}

// Get retrieves a user visible through the gate.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", []any{userID})
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND ` + clause

	return s.queryOne(ctx, query, args...)
}

// Update updates a user after the tenant guard accepts it.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	lockQuery := `SELECT company_id FROM users WHERE user_id = $1 FOR UPDATE`

	err := guardedUpdate(ctx, s.pool, lockQuery, user.ID, store.ErrUserNotFound, user, func(tx pgx.Tx) error {
		query := `
			UPDATE users
			SET email = $3, name = $4, password_hash = $5, role = $6, is_active = $7, updated_at = $8
			WHERE user_id = $1 AND company_id = $2
			RETURNING created_at, updated_at
		`
		err := tx.QueryRow(ctx, query,
			user.ID,
			user.CompanyID,
			user.Email,
			user.Name,
			user.PasswordHash,
			user.Role,
			user.IsActive,
			time.Now().UTC(),
		).Scan(&user.CreatedAt, &user.UpdatedAt)
		return mapPostgresError(err)
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Bool("is_active", user.IsActive).
		Msg("Updated user")

	return nil
}

// List returns the users visible through the gate, ordered by email.
func (s *UserStore) List(ctx context.Context, opts store.ListUsersOptions) ([]*models.User, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	clause, args := scopeClause(filter, "company_id", nil)
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + clause

	if opts.Role != "" {
		args = append(args, opts.Role)
		query += fmt.Sprintf(` AND role = $%d`, len(args))
	}
	if opts.ActiveOnly {
		query += ` AND is_active`
	}

	args = append(args, store.EffectiveLimit(opts.Limit))
	query += fmt.Sprintf(` ORDER BY email ASC LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}

	return users, nil
}

// Lookup retrieves a user by ID without consulting the gate.
func (s *UserStore) Lookup(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return s.queryOne(ctx, query, userID)
}

// LookupByEmail retrieves a user by email without consulting the gate.
func (s *UserStore) LookupByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return s.queryOne(ctx, query, email)
}

func (s *UserStore) queryOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.CompanyID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
