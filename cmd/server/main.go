package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/sitework/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool                  `help:"Enable debug mode." env:"SITEWORK_DEBUG"`
		Version   kong.VersionFlag      `help:"Print the version and exit."`
		Serve     commands.ServeCmd     `cmd:"" default:"withargs" help:"Start the API server"`
		Migrate   commands.MigrateCmd   `cmd:"" help:"Apply database migrations"`
		Bootstrap commands.BootstrapCmd `cmd:"" help:"Create the root company and its owner"`
		Token     commands.TokenCmd     `cmd:"" help:"Mint an access token for an existing user (development only)"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("sitework"),
		kong.Description("Tenant-scoped construction management API."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
