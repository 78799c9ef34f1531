package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/gatekeeper/cmd/app/commands"
	"github.com/allisson/gatekeeper/internal/app"
)

func getCredentialCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-credential",
			Usage: "Issue a signed bearer credential for a user in a tenant",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User identifier the credential is bound to",
				},
				&cli.StringFlag{
					Name:     "tenant-id",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Canonical tenant identifier (e.g., workspace:W123)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				lifecycle, err := container.CredentialLifecycle()
				if err != nil {
					return err
				}

				return commands.RunIssueCredential(
					ctx,
					lifecycle,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					cmd.String("tenant-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "revoke-credentials",
			Usage: "Revoke a single credential by jti or every credential for a user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "jti",
					Aliases: []string{"j"},
					Usage:   "Token id of a single credential to revoke",
				},
				&cli.StringFlag{
					Name:    "user-id",
					Aliases: []string{"u"},
					Usage:   "User identifier (revokes all credentials with --tenant-id)",
				},
				&cli.StringFlag{
					Name:    "tenant-id",
					Aliases: []string{"t"},
					Usage:   "Canonical tenant identifier",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				lifecycle, err := container.CredentialLifecycle()
				if err != nil {
					return err
				}

				return commands.RunRevokeCredentials(
					ctx,
					lifecycle,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("jti"),
					cmd.String("user-id"),
					cmd.String("tenant-id"),
				)
			},
		},
		{
			Name:  "sweep-credentials",
			Usage: "Remove revoked and expired credential registry rows",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Report how many rows would be removed without removing them",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				lifecycle, err := container.CredentialLifecycle()
				if err != nil {
					return err
				}

				return commands.RunSweepCredentials(
					ctx,
					lifecycle,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.Bool("dry-run"),
					cmd.String("format"),
				)
			},
		},
	}
}
