// Package cmd defines the CLI commands for the newspipe executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citydesk/newspipe/internal/config"
	"github.com/citydesk/newspipe/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// App bundles the services every subcommand needs. It is an interface so
// tests can inject a stub.
type App interface {
	Config() config.Config
	Logger() *zap.Logger
	Close()
}

type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func (a *app) Config() config.Config { return a.cfg }
func (a *app) Logger() *zap.Logger   { return a.logger }
func (a *app) Close()                { _ = a.logger.Sync() }

// newApp is the application factory; a variable so tests can replace it.
var newApp = func() (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newspipe",
		Short: "Acquisition and extraction pipeline for local news coverage.",
		Long: `newspipe turns discovered candidate links into structured article
records: it filters non-article URLs, fetches pages under a polite global
cadence with anti-bot backoff, extracts fields through a tiered strategy
engine, flags wire-service content, and links entity mentions against a
gazetteer snapshot.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp()
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: built-in defaults plus NEWSPIPE_* env)")

	cmd.AddCommand(newExtractCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
