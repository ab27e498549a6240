package memory

import "github.com/wolfeidau/sitework/internal/store"

// NewStores creates an empty set of in-memory stores.
// This implementation is for testing and local development only - data is lost on restart.
func NewStores() store.Stores {
	projects := NewProjectStore()
	return store.Stores{
		Companies:     NewCompanyStore(),
		Users:         NewUserStore(),
		RefreshTokens: NewRefreshTokenStore(),
		Projects:      projects,
		Tasks:         NewTaskStore(projects),
	}
}
