package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config.Config
	var log *slog.Logger

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Perfume storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			log = logging.New(logging.Options{
				Service: "perfume-store-api",
				Env:     cfg.AppEnv,
				Level:   cfg.LogLevel,
				File:    cfg.LogFile,
			})
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(log, runServe(cmd.Context(), cfg, log))
		},
	}

	indexes := &cobra.Command{
		Use:   "indexes",
		Short: "Create MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(log, runIndexes(cmd.Context(), cfg, log))
		},
	}

	var subject string
	var ttl time.Duration
	token := &cobra.Command{
		Use:   "token",
		Short: "Print an admin bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = cfg.AdminTokenTTL
			}
			signed, err := middleware.IssueAdminToken(cfg.AdminJWTSecret, subject, ttl)
			if err != nil {
				return report(log, fmt.Errorf("ADMIN_JWT_SECRET must be set: %w", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	token.Flags().StringVar(&subject, "subject", "admin", "token subject")
	token.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to ADMIN_TOKEN_TTL_MINUTES)")

	root.AddCommand(serve, indexes, token)
	// serve is the default
	root.RunE = serve.RunE
	return root
}

func runIndexes(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is not set")
	}
	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	return database.EnsureIndexes(ctx, client.Database(cfg.DBName), log)
}

func report(log *slog.Logger, err error) error {
	if err != nil {
		log.Error("command failed", "err", err)
	}
	return err
}
