package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wolfeidau/sitework/internal/store"
)

// TokenCmd mints an access token for an existing user. The token is printed to stdout.
type TokenCmd struct {
	Email string `arg:"" help:"email of the user to mint a token for"`

	Signing SigningFlags `embed:""`
	Store   StoreFlags   `embed:""`
}

func (c *TokenCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals)

	codec, err := c.Signing.codec()
	if err != nil {
		return err
	}

	stores, closeStores, err := c.Store.open(ctx, log)
	if err != nil {
		return err
	}
	defer closeStores()

	user, err := stores.Users.LookupByEmail(ctx, c.Email)
	if err != nil {
		return fmt.Errorf("failed to find user %s: %w", c.Email, err)
	}
	if !user.IsActive {
		return fmt.Errorf("user %s is inactive: %w", c.Email, store.ErrUserNotFound)
	}

	token, expiresAt, err := codec.Issue(user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("company_id", user.CompanyID.String()).
		Time("expires_at", expiresAt).
		Msg("Issued access token")

	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}
