package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/gatekeeper/cmd/app/commands"
	"github.com/allisson/gatekeeper/internal/app"
)

func getTenantCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "teardown-tenant",
			Usage: "Remove every trace of a tenant: installs, permissions, blocks and credentials",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "tenant-id",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Canonical tenant identifier (e.g., enterprise:E123)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				directory, err := container.TenantDirectory()
				if err != nil {
					return err
				}

				return commands.RunTeardownTenant(
					ctx,
					directory,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("tenant-id"),
				)
			},
		},
	}
}
