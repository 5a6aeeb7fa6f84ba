package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/cli/config"
	"github.com/yndnr/respkv/internal/cli/output"
	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:            "respkv-cli",
		Usage:           "respkv command-line client",
		UsageText:       "respkv-cli [options] [command [arg...]]",
		Version:         buildinfo.String(),
		Flags:           globalFlags(),
		Commands:        []*cli.Command{AdminCommand()},
		HideHelpCommand: true,
		Before:          loadSettings,
		Action:          runCommand,
	}
}

// globalFlags returns the global CLI flags. Unset flags fall back to the
// CLI config file and RESPKV_CLI_* variables.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "CLI config file (default ~/.respkv/cli.yaml)",
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "RESP server address (e.g., 127.0.0.1:6380)",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"a"},
			Usage:   "password sent with AUTH after connecting",
		},
		&cli.StringFlag{
			Name:  "admin",
			Usage: "admin HTTP server address (e.g., 127.0.0.1:9180)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "admin output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "dial and request timeout",
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "print replies without type annotations",
		},
	}
}

// Settings is the effective client configuration.
type Settings struct {
	config.CLIConfig
	Format output.Format
	Raw    bool
}

func loadSettings(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("password") {
		cfg.Password = c.String("password")
	}
	if c.IsSet("admin") {
		cfg.Admin = c.String("admin")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[settingsKey] = &Settings{
		CLIConfig: *cfg,
		Format:    format,
		Raw:       c.Bool("raw"),
	}
	return nil
}

// GetSettings returns the settings resolved by the Before hook.
func GetSettings(c *cli.Context) (*Settings, error) {
	s, ok := c.App.Metadata[settingsKey].(*Settings)
	if !ok {
		return nil, fmt.Errorf("settings not loaded")
	}
	return s, nil
}
