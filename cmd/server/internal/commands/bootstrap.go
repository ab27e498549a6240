package commands

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/sitework/internal/service"
	"github.com/wolfeidau/sitework/internal/store"
)

// BootstrapFlags describe the root company created on first start.
type BootstrapFlags struct {
	CompanyName   string `help:"root company name" default:"Sitework" env:"SITEWORK_BOOTSTRAP_COMPANY"`
	OwnerName     string `help:"root owner display name" default:"Administrator" env:"SITEWORK_BOOTSTRAP_OWNER_NAME"`
	OwnerEmail    string `help:"root owner email (bootstrap is skipped when unset)" env:"SITEWORK_BOOTSTRAP_EMAIL"`
	OwnerPassword string `help:"root owner password" env:"SITEWORK_BOOTSTRAP_PASSWORD"`
}

// Enabled reports whether a root owner was configured.
func (b *BootstrapFlags) Enabled() bool {
	return b.OwnerEmail != ""
}

func (b *BootstrapFlags) apply(ctx context.Context, services *service.Services) error {
	company, owner, err := services.Companies.Bootstrap(ctx, service.ProvisionInput{
		CompanyName:   b.CompanyName,
		OwnerName:     b.OwnerName,
		OwnerEmail:    b.OwnerEmail,
		OwnerPassword: b.OwnerPassword,
	})
	if err != nil {
		if errors.Is(err, store.ErrRootCompanyExists) {
			zerolog.Ctx(ctx).Info().Msg("Root company already exists, skipping bootstrap")
		}
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("company_id", company.ID.String()).
		Str("owner_id", owner.ID.String()).
		Msg("Root company bootstrapped")

	return nil
}

// BootstrapCmd creates the root company against a persistent store.
type BootstrapCmd struct {
	Bootstrap BootstrapFlags `embed:""`
	Store     StoreFlags     `embed:""`
}

func (c *BootstrapCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals)

	if !c.Bootstrap.Enabled() {
		return errors.New("root owner email is required (--owner-email or SITEWORK_BOOTSTRAP_EMAIL)")
	}

	stores, closeStores, err := c.Store.open(ctx, log)
	if err != nil {
		return err
	}
	defer closeStores()

	// bootstrapping needs no credential codec
	services := service.New(stores, nil, service.Config{})

	return c.Bootstrap.apply(log.WithContext(ctx), services)
}

// MigrateCmd applies the PostgreSQL schema.
type MigrateCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals)

	flags := StoreFlags{StoreType: "postgres", PostgresStore: c.PostgresStore}
	flags.PostgresStore.AutoMigrate = true

	_, closeStores, err := flags.open(ctx, log)
	if err != nil {
		return err
	}
	closeStores()

	log.Info().Msg("Database schema is up to date")
	return nil
}
