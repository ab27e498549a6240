package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/models"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/tenant"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	mu sync.RWMutex

	users   map[uuid.UUID]*models.User // user_id -> User
	byEmail map[string]uuid.UUID       // lower(email) -> user_id
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if err := tenant.PrepareCreate(ctx, user); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := s.users[user.ID]; exists {
		return store.ErrUserAlreadyExists
	}
	if _, exists := s.byEmail[email]; exists {
		return store.ErrUserAlreadyExists
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	s.users[user.ID] = &clone
	s.byEmail[email] = user.ID

	return nil
}

// Get retrieves a user visible through the gate.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists || !filter.Allows(user.CompanyID) {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// Update updates an existing user after the tenant guard accepts it.
func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	if !exists {
		return store.ErrUserNotFound
	}

	if err := tenant.CheckUpdate(ctx, existing, user); err != nil {
		return err
	}

	oldEmail := strings.ToLower(existing.Email)
	newEmail := strings.ToLower(user.Email)
	if oldEmail != newEmail {
		if _, taken := s.byEmail[newEmail]; taken {
			return store.ErrUserAlreadyExists
		}
		delete(s.byEmail, oldEmail)
		s.byEmail[newEmail] = user.ID
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()

	clone := *user
	s.users[user.ID] = &clone

	return nil
}

// List returns the users visible through the gate, ordered by email.
func (s *UserStore) List(ctx context.Context, opts store.ListUsersOptions) ([]*models.User, error) {
	filter, err := tenant.Gate(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.User
	for _, u := range s.users {
		if !filter.Allows(u.CompanyID) {
			continue
		}
		if opts.Role != "" && u.Role != opts.Role {
			continue
		}
		if opts.ActiveOnly && !u.IsActive {
			continue
		}
		clone := *u
		result = append(result, &clone)
	}

	slices.SortFunc(result, func(a, b *models.User) int {
		return strings.Compare(a.Email, b.Email)
	})

	return limit(result, opts.Limit), nil
}

// Lookup retrieves a user by ID without consulting the gate.
func (s *UserStore) Lookup(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// LookupByEmail retrieves a user by email without consulting the gate.
func (s *UserStore) LookupByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, exists := s.byEmail[strings.ToLower(email)]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *s.users[userID]
	return &clone, nil
}
