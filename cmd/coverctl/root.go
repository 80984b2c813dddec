package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/config"
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/logging"
)

// app is the state shared by all subcommands.
type app struct {
	lookup func(string) (string, bool)

	envFile string
	apiURL  string
	noColor bool

	cfg     *config.Config
	service *core.Service
}

func newRootCmd(lookup func(string) (string, bool)) *cobra.Command {
	a := &app{lookup: lookup}

	root := &cobra.Command{
		Use:           "coverctl",
		Short:         "coverctl is a CLI for the CoverDesk insurance backend",
		Long:          `List entity tables, validate and upload bulk import files, and download import templates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "load environment variables from this file first")
	flags.StringVar(&a.apiURL, "url", "", "backend base URL (overrides API_BASE_URL)")
	flags.BoolVar(&a.noColor, "no-color", false, "disable status colours")

	root.AddCommand(
		newEntitiesCmd(a),
		newListCmd(a),
		newImportCmd(a),
		newSampleCmd(a),
	)
	return root
}

// setup loads configuration. The --url flag wins over the environment.
func (a *app) setup() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.LoadFrom(func(key string) (string, bool) {
		if key == "API_BASE_URL" && a.apiURL != "" {
			return a.apiURL, true
		}
		return a.lookup(key)
	})
	if err != nil {
		return err
	}

	// Tables go to stdout, so logs go to stderr and stay quiet unless asked for.
	level := cfg.Logging.Level
	if _, ok := a.lookup("LOG_LEVEL"); !ok {
		level = "warn"
	}
	slog.SetDefault(logging.New(os.Stderr, level, cfg.Logging.Format))

	a.cfg = cfg
	a.service = core.NewService(cfg, nil, nil)
	return nil
}

func (a *app) newClient() (*apiclient.Client, error) {
	return apiclient.New(core.ClientConfig(a.cfg))
}

// client returns an API client. With credentials configured it signs in
// first; otherwise requests go out anonymously.
func (a *app) client(ctx context.Context) (*apiclient.Client, error) {
	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	if a.cfg.API.Username == "" {
		return c, nil
	}
	if _, err := c.Login(ctx, apiclient.Credentials{
		Username: a.cfg.API.Username,
		Password: a.cfg.API.Password,
	}); err != nil {
		return nil, fmt.Errorf("sign in as %s: %w", a.cfg.API.Username, err)
	}
	return c, nil
}

// actorContext tags ctx with the configured user for import history.
func (a *app) actorContext(ctx context.Context) context.Context {
	if a.cfg.API.Username == "" {
		return ctx
	}
	return core.ContextWithActor(ctx, a.cfg.API.Username)
}
