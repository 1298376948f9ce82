package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/filmsage/filmsage/internal/api"
	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/repositories"
	"github.com/filmsage/filmsage/internal/session"
	"github.com/filmsage/filmsage/internal/shared"
	tu "github.com/filmsage/filmsage/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestStores(t *testing.T) (*repositories.SessionStore, *repositories.FavoriteRepository) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return repositories.NewSessionStore(db), repositories.NewFavoriteRepository(db)
}

// seedSession persists a token and identity directly, the way a completed
// login would.
func seedSession(t *testing.T, store *repositories.SessionStore, role string) {
	t.Helper()

	if err := store.Set(repositories.KeyToken, "opaque-token"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	identity := `{"id":"user-1","name":"Ada","email":"ada@example.com","role":"` + role + `","active":true}`
	if err := store.Set(repositories.KeyUserData, identity); err != nil {
		t.Fatalf("failed to seed identity: %v", err)
	}
}

func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{Name: "filmsage", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"filmsage"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			store, favorites := newTestStores(t)
			config := shared.DefaultConfig()
			logger := shared.NewLogger(io.Discard)
			output := &bytes.Buffer{}
			backend := api.NewClient(api.ClientOpts{Logger: logger})
			manager := session.NewManager(session.ManagerOpts{
				Store:     store,
				Favorites: favorites,
				Backend:   backend,
				Logger:    logger,
			})

			runner := NewRunner(RunnerOpts{
				Config:    config,
				Backend:   backend,
				Sessions:  manager,
				Favorites: favorites,
				Logger:    logger,
				Output:    output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.engine == nil {
				t.Error("expected sync engine to be wired from backend and favorites")
			}
			if runner.navigator == nil {
				t.Error("expected navigator to be wired from the session manager")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("without backend leaves engine unset", func(t *testing.T) {
			_, favorites := newTestStores(t)
			runner := NewRunner(RunnerOpts{Favorites: favorites})

			if runner.engine != nil {
				t.Error("expected no sync engine without a backend")
			}
		})

		t.Run("without session manager leaves navigator unset", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.navigator != nil {
				t.Error("expected no navigator without a session manager")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "search", "favorites", "watchlist", "review", "social", "admin", "routes"} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	newAuthRunner := func(t *testing.T, backend *api.Client) (*Runner, *repositories.SessionStore, *repositories.FavoriteRepository, *bytes.Buffer) {
		t.Helper()
		store, favorites := newTestStores(t)
		manager := session.NewManager(session.ManagerOpts{
			Store:     store,
			Favorites: favorites,
			Backend:   backend,
			Logger:    logger,
		})
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Backend:   backend,
			Sessions:  manager,
			Favorites: favorites,
			Logger:    logger,
			Output:    output,
		})
		return runner, store, favorites, output
	}

	t.Run("login persists the session", func(t *testing.T) {
		response := tu.JSONResponse(t, http.StatusOK, map[string]any{
			"token": "issued-token",
			"user":  map[string]any{"_id": "user-1", "name": "Ada", "email": "ada@example.com", "role": "user"},
		})
		backend := api.NewClient(api.ClientOpts{
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(response, nil)},
			Logger:     logger,
		})
		runner, store, _, output := newAuthRunner(t, backend)

		err := runCommand(t, runner, "auth", "login", "-e", "ada@example.com", "-p", "secret123")
		if err != nil {
			t.Fatalf("expected login to succeed, got %v", err)
		}

		if !strings.Contains(output.String(), "Signed in as Ada") {
			t.Errorf("expected confirmation, got %q", output.String())
		}

		token, ok, err := store.Get(repositories.KeyToken)
		if err != nil || !ok {
			t.Fatalf("expected persisted token, ok=%v err=%v", ok, err)
		}
		if token != "issued-token" {
			t.Errorf("expected issued token to be stored, got %s", token)
		}
	})

	t.Run("login failure reports invalid credentials", func(t *testing.T) {
		response := tu.JSONResponse(t, http.StatusUnauthorized, map[string]any{"message": "bad password"})
		backend := api.NewClient(api.ClientOpts{
			HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(response, nil)},
			Logger:     logger,
		})
		runner, store, _, _ := newAuthRunner(t, backend)

		err := runCommand(t, runner, "auth", "login", "-e", "ada@example.com", "-p", "wrong")
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}

		if _, ok, _ := store.Get(repositories.KeyToken); ok {
			t.Error("expected no token to be persisted after failed login")
		}
	})

	t.Run("status reports signed out", func(t *testing.T) {
		runner, _, _, output := newAuthRunner(t, nil)

		if err := runCommand(t, runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Not signed in") {
			t.Errorf("expected signed-out notice, got %q", output.String())
		}
	})

	t.Run("status restores the persisted session", func(t *testing.T) {
		runner, store, _, output := newAuthRunner(t, nil)
		seedSession(t, store, models.RoleUser)

		if err := runCommand(t, runner, "auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Ada") || !strings.Contains(result, "ada@example.com") {
			t.Errorf("expected restored identity in output, got %q", result)
		}
	})

	t.Run("logout clears session and favorites", func(t *testing.T) {
		runner, store, favorites, _ := newAuthRunner(t, nil)
		seedSession(t, store, models.RoleUser)
		if err := favorites.Create(models.NewFavorite(1, 603, "movie", "The Matrix", "")); err != nil {
			t.Fatalf("failed to seed favorite: %v", err)
		}

		if err := runCommand(t, runner, "auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, ok, _ := store.Get(repositories.KeyToken); ok {
			t.Error("expected token to be removed")
		}
		remaining, err := favorites.List(nil)
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("expected favorites cache to be purged, got %d entries", len(remaining))
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("add then list shows the entry", func(t *testing.T) {
		_, favorites := newTestStores(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Favorites: favorites, Logger: logger, Output: output})

		err := runCommand(t, runner, "favorites", "add", "--id", "603", "--title", "The Matrix")
		if err != nil {
			t.Fatalf("expected add to succeed, got %v", err)
		}

		output.Reset()
		if err := runCommand(t, runner, "favorites", "list"); err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "The Matrix (movie)") {
			t.Errorf("expected listed favorite, got %q", output.String())
		}
	})

	t.Run("list filters by content type", func(t *testing.T) {
		_, favorites := newTestStores(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Favorites: favorites, Logger: logger, Output: output})

		for _, args := range [][]string{
			{"favorites", "add", "--id", "603", "--title", "The Matrix"},
			{"favorites", "add", "--id", "1396", "--type", "tv", "--title", "Breaking Bad"},
		} {
			if err := runCommand(t, runner, args...); err != nil {
				t.Fatalf("expected add to succeed, got %v", err)
			}
		}

		output.Reset()
		if err := runCommand(t, runner, "favorites", "list", "--type", "tv"); err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Breaking Bad") {
			t.Errorf("expected tv entry, got %q", result)
		}
		if strings.Contains(result, "The Matrix") {
			t.Errorf("expected movie entry to be filtered out, got %q", result)
		}
	})

	t.Run("remove drops the entry", func(t *testing.T) {
		_, favorites := newTestStores(t)
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Favorites: favorites, Logger: logger, Output: output})

		if err := runCommand(t, runner, "favorites", "add", "--id", "603", "--title", "The Matrix"); err != nil {
			t.Fatalf("expected add to succeed, got %v", err)
		}
		if err := runCommand(t, runner, "favorites", "remove", "--id", "603"); err != nil {
			t.Fatalf("expected remove to succeed, got %v", err)
		}

		output.Reset()
		if err := runCommand(t, runner, "favorites", "list"); err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		if !strings.Contains(output.String(), "No favorites yet") {
			t.Errorf("expected empty collection, got %q", output.String())
		}
	})

	t.Run("requires the local database", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: logger, Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "favorites", "list")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Fatalf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("sync requires a signed-in session", func(t *testing.T) {
		store, favorites := newTestStores(t)
		backend := api.NewClient(api.ClientOpts{Logger: logger})
		manager := session.NewManager(session.ManagerOpts{
			Store:     store,
			Favorites: favorites,
			Backend:   backend,
			Logger:    logger,
		})
		runner := NewRunner(RunnerOpts{
			Backend:   backend,
			Sessions:  manager,
			Favorites: favorites,
			Logger:    logger,
			Output:    &bytes.Buffer{},
		})

		err := runCommand(t, runner, "favorites", "sync", "run")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestRoutesCommands(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	newGuardedRunner := func(t *testing.T) (*Runner, *repositories.SessionStore, *bytes.Buffer) {
		t.Helper()
		store, favorites := newTestStores(t)
		manager := session.NewManager(session.ManagerOpts{
			Store:     store,
			Favorites: favorites,
			Logger:    logger,
		})
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Sessions: manager, Logger: logger, Output: output})
		return runner, store, output
	}

	t.Run("list prints the route table", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: logger, Output: &bytes.Buffer{}})
		output := runner.output.(*bytes.Buffer)

		if err := runCommand(t, runner, "routes", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{"home", "/movie/:id", "admin-dashboard"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected route table to mention %q, got %q", want, result)
			}
		}
	})

	t.Run("check redirects protected path when signed out", func(t *testing.T) {
		runner, _, output := newGuardedRunner(t)

		if err := runCommand(t, runner, "routes", "check", "/profile"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Redirected to") {
			t.Errorf("expected denial, got %q", result)
		}
		if !strings.Contains(result, "/?redirect=%2Fprofile") {
			t.Errorf("expected redirect target with origin, got %q", result)
		}
	})

	t.Run("check allows public path with params", func(t *testing.T) {
		runner, _, output := newGuardedRunner(t)

		if err := runCommand(t, runner, "routes", "check", "/movie/438631"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Allowed") {
			t.Errorf("expected public path to be allowed, got %q", result)
		}
		if !strings.Contains(result, "id = 438631") {
			t.Errorf("expected captured param, got %q", result)
		}
	})

	t.Run("check admits admin to the dashboard", func(t *testing.T) {
		runner, store, output := newGuardedRunner(t)
		seedSession(t, store, models.RoleAdmin)

		if err := runCommand(t, runner, "routes", "check", "/admin"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Allowed") {
			t.Errorf("expected admin to be allowed, got %q", output.String())
		}
	})

	t.Run("check sends non-admin home", func(t *testing.T) {
		runner, store, output := newGuardedRunner(t)
		seedSession(t, store, models.RoleUser)

		if err := runCommand(t, runner, "routes", "check", "/admin"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Redirected to") {
			t.Errorf("expected non-admin to be redirected, got %q", output.String())
		}
	})

	t.Run("check requires the session manager", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: logger, Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "routes", "check", "/profile")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Fatalf("expected ErrMissingConfig, got %v", err)
		}
	})
}
