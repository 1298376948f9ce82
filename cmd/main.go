package main

import (
	"context"
	"errors"
	"os"

	"github.com/filmsage/filmsage/internal/api"
	"github.com/filmsage/filmsage/internal/repositories"
	"github.com/filmsage/filmsage/internal/session"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/tmdb"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var store *repositories.SessionStore
	var favorites *repositories.FavoriteRepository
	var tokens oauth2.TokenSource

	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		store = repositories.NewSessionStore(db)
		favorites = repositories.NewFavoriteRepository(db)
		tokens = session.NewStoreTokenSource(store)
	} else {
		logger.Warn("local database unavailable, run 'filmsage setup database'", "error", err)
	}

	// The manager is captured by the expiry callback before it exists; the
	// client only invokes the callback during requests, well after wiring.
	var manager *session.Manager

	backend := api.NewClient(api.ClientOpts{
		BaseURL: config.Backend.BaseURL,
		Timeout: config.Backend.Timeout(),
		Tokens:  tokens,
		Logger:  logger,
		OnAuthExpired: func(target string) {
			if manager != nil {
				manager.ForceExpire()
			}
			logger.Warn("session expired, sign in again", "redirect", target)
		},
	})

	if store != nil {
		manager = session.NewManager(session.ManagerOpts{
			Store:     store,
			Favorites: favorites,
			Backend:   backend,
			Logger:    logger,
		})
	}

	var catalog *tmdb.Client
	if config.Catalog.APIKey != "" {
		catalog = tmdb.NewClient(config.Catalog.APIKey, config.Catalog.Language, nil)
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Backend:   backend,
		Catalog:   catalog,
		Sessions:  manager,
		Favorites: favorites,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "filmsage",
		Usage:    "Track, review, and rediscover the movies you love",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
