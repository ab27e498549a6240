package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/sitework/internal/store"
)

// NewStores creates every PostgreSQL-backed store on a shared pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Companies:     NewCompanyStore(pool),
		Users:         NewUserStore(pool),
		RefreshTokens: NewRefreshTokenStore(pool),
		Projects:      NewProjectStore(pool),
		Tasks:         NewTaskStore(pool),
	}
}
