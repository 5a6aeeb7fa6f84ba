package command

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/connection"
	"github.com/yndnr/respkv/internal/cli/output"
)

// AdminCommand returns the admin subcommand group.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Aliases: []string{"system"},
		Usage:   "Query the admin HTTP server",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show keyspace and connection summary",
				Action: adminGet("/admin/v1/status/summary"),
			},
			{
				Name:   "health",
				Usage:  "Check server liveness",
				Action: adminGet("/health"),
			},
			{
				Name:   "ready",
				Usage:  "Check server readiness",
				Action: adminGet("/ready"),
			},
			{
				Name:   "config",
				Usage:  "Show the effective server configuration",
				Action: adminGet("/admin/v1/config"),
			},
			{
				Name:   "expire",
				Usage:  "Run one active expiry pass now",
				Action: adminPost("/admin/v1/expire/trigger"),
			},
		},
	}
}

func adminGet(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		return adminCall(c, http.MethodGet, path)
	}
}

func adminPost(path string) cli.ActionFunc {
	return func(c *cli.Context) error {
		return adminCall(c, http.MethodPost, path)
	}
}

func adminCall(c *cli.Context, method, path string) error {
	s, err := GetSettings(c)
	if err != nil {
		return err
	}
	client := connection.NewHTTPClient(s.Admin, s.Timeout)

	ctx, cancel := context.WithTimeout(c.Context, s.Timeout)
	defer cancel()

	var resp *http.Response
	if method == http.MethodPost {
		resp, err = client.Post(ctx, path, nil)
	} else {
		resp, err = client.Get(ctx, path)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result map[string]any
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	return output.NewFormatter(s.Format).Format(c.App.Writer, result)
}
