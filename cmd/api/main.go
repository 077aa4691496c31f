package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-exchange/cmd/api/book"
	"github.com/book-exchange/cmd/api/config"
	"github.com/book-exchange/cmd/api/database"
	bookhttp "github.com/book-exchange/cmd/api/http"
	"github.com/book-exchange/cmd/api/inmemory"
	"github.com/book-exchange/cmd/api/notifications"
	"github.com/book-exchange/cmd/api/seed"
	"github.com/book-exchange/cmd/api/support"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "book-exchange",
		Short:         "Book exchange HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the postgres schema",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(configPath, database.MigrationUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(configPath, database.MigrationDown)
			},
		},
	)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the seed books into the postgres store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedPostgres(cmd.Context(), configPath)
		},
	}

	root.AddCommand(serveCmd, migrateCmd, seedCmd)
	return root
}

func loadConfig(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(ctx context.Context, configPath string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	repo, supportRepo, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ntfy := notifications.NewNtfy(cfg.Notifications.Enabled, cfg.Notifications.BaseURL, &http.Client{Timeout: cfg.Notifications.Timeout.Std()})
	bookService := book.NewService(repo, ntfy, cfg.Notifications.Timeout.Std(), logger)
	supportService := support.NewService(supportRepo, logger)

	if cfg.Store == config.StoreInMemory {
		books, err := loadSeed(cfg.SeedPath)
		if err != nil {
			return err
		}
		if _, err := bookService.Seed(ctx, books); err != nil {
			return err
		}
	}

	server := bookhttp.NewServer(
		bookhttp.ServerConfig{Port: cfg.HTTP.Port, RequestTimeout: cfg.HTTP.RequestTimeout.Std()},
		bookhttp.NewBookHandler(bookService, logger),
		bookhttp.NewSupportHandler(supportService, logger),
	)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr, "store", cfg.Store)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("unexpected http server error: %w", err)
		}
		close(serverErr)
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sc:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownRelease()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP shutdown error: %w", err)
	}
	bookService.Wait()
	logger.Info("graceful shutdown complete")
	return nil
}

/* Opens the configured store. Postgres is migrated up before use. */
func openStore(cfg config.Config) (book.Repository, support.Repository, func(), error) {
	if cfg.Store == config.StoreInMemory {
		store, err := inmemory.NewInMemoryStore(inmemory.WithLatency(cfg.StoreLatency.Std()))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("creating in-memory store: %w", err)
		}
		return store, store, func() {}, nil
	}

	dbObject, err := database.ConnectDb(cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting with db: %w", err)
	}
	store := database.NewStore(dbObject)
	err = database.MigrationUp(store, cfg.Database.MigrationsPath)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		dbObject.Close()
		return nil, nil, nil, fmt.Errorf("migrating: %w", err)
	}
	return store, store, func() { dbObject.Close() }, nil
}

func runMigration(configPath string, migration func(*database.Store, string) error) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrations need store %q: %w", config.StorePostgres, config.ErrConfigInvalid)
	}

	dbObject, err := database.ConnectDb(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting with db: %w", err)
	}
	defer dbObject.Close()

	err = migration(database.NewStore(dbObject), cfg.Database.MigrationsPath)
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration to apply")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("migration applied")
	return nil
}

func seedPostgres(ctx context.Context, configPath string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("the in-memory store is seeded when serving, seeding needs store %q: %w", config.StorePostgres, config.ErrConfigInvalid)
	}

	repo, _, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	books, err := loadSeed(cfg.SeedPath)
	if err != nil {
		return err
	}
	inserted, err := book.NewService(repo, nil, cfg.Notifications.Timeout.Std(), logger).Seed(ctx, books)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d of %d books\n", inserted, len(books))
	return nil
}

func loadSeed(path string) ([]book.Book, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.LoadFile(path)
}
