package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/sitework/internal/auth"
	"github.com/wolfeidau/sitework/internal/store"
)

// Config holds service-level settings.
type Config struct {
	RefreshTTL time.Duration
}

// Services groups the application services sharing one set of stores.
type Services struct {
	Accounts  *AccountService
	Companies *CompanyService
	Users     *UserService
	Projects  *ProjectService
	Tasks     *TaskService
}

// New wires every service over stores.
func New(stores store.Stores, codec *auth.Codec, cfg Config) *Services {
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = auth.DefaultRefreshTTL
	}

	companies := NewCompanyService(stores)
	return &Services{
		Accounts:  NewAccountService(stores, codec, companies, cfg.RefreshTTL),
		Companies: companies,
		Users:     NewUserService(stores),
		Projects:  NewProjectService(stores),
		Tasks:     NewTaskService(stores),
	}
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalidf("email %q is not valid", email)
	}
	return email, nil
}

func requireText(field, value string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidf("%s is required", field)
	}
	if len(value) > maxLen {
		return "", invalidf("%s must be at most %d characters", field, maxLen)
	}
	return value, nil
}
