package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(newTestDB(t))

	t.Run("Get Missing Key", func(t *testing.T) {
		value, ok, err := store.Get(KeyToken)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ok {
			t.Error("expected missing key to report absence")
		}
		if value != "" {
			t.Errorf("expected empty value, got %s", value)
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		if err := store.Set(KeyToken, "bearer-token"); err != nil {
			t.Fatalf("failed to set entry: %v", err)
		}

		value, ok, err := store.Get(KeyToken)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if !ok {
			t.Fatal("expected key to be present")
		}
		if value != "bearer-token" {
			t.Errorf("expected bearer-token, got %s", value)
		}
	})

	t.Run("Set Overwrites", func(t *testing.T) {
		if err := store.Set(KeyToken, "rotated-token"); err != nil {
			t.Fatalf("failed to overwrite entry: %v", err)
		}

		value, _, err := store.Get(KeyToken)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if value != "rotated-token" {
			t.Errorf("expected rotated-token, got %s", value)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(KeyToken); err != nil {
			t.Fatalf("failed to delete entry: %v", err)
		}

		_, ok, err := store.Get(KeyToken)
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if ok {
			t.Error("expected key to be gone after delete")
		}
	})

	t.Run("Delete Missing Key", func(t *testing.T) {
		if err := store.Delete("no_such_key"); err != nil {
			t.Errorf("deleting absent key should not fail: %v", err)
		}
	})
}

func TestFavoriteRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		favorite := models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "/matrix.jpg")
		if err := repo.Create(favorite); err != nil {
			t.Fatalf("failed to create favorite: %v", err)
		}

		if favorite.ID() == "" {
			t.Error("expected generated ID")
		}
		if favorite.Sequence() == 0 {
			t.Error("expected generated sequence")
		}

		got, err := repo.Get(favorite.ID())
		if err != nil {
			t.Fatalf("failed to get favorite: %v", err)
		}
		if got.TMDBID() != 603 || got.Title() != "The Matrix" {
			t.Errorf("unexpected favorite: %d %s", got.TMDBID(), got.Title())
		}
	})

	t.Run("Create Is Idempotent", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		first := models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "")
		if err := repo.Create(first); err != nil {
			t.Fatalf("failed to create favorite: %v", err)
		}

		second := models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "")
		if err := repo.Create(second); err != nil {
			t.Fatalf("second create should be a no-op: %v", err)
		}

		count, err := repo.Count()
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if count != 1 {
			t.Errorf("expected exactly one entry, got %d", count)
		}

		if second.ID() != first.ID() {
			t.Error("expected re-add to adopt the existing entry's identity")
		}
	})

	t.Run("Same ID Different Content Type", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		movie := models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "")
		show := models.NewFavorite(0, 603, models.ContentTypeTV, "The Matrix (series)", "")

		if err := repo.Create(movie); err != nil {
			t.Fatalf("failed to create movie favorite: %v", err)
		}
		if err := repo.Create(show); err != nil {
			t.Fatalf("failed to create tv favorite: %v", err)
		}

		count, _ := repo.Count()
		if count != 2 {
			t.Errorf("expected two entries for distinct content types, got %d", count)
		}
	})

	t.Run("Contains", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		ok, err := repo.Contains(603, models.ContentTypeMovie)
		if err != nil {
			t.Fatalf("failed to check contains: %v", err)
		}
		if ok {
			t.Error("expected empty cache to not contain entry")
		}

		if err := repo.Create(models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "")); err != nil {
			t.Fatalf("failed to create favorite: %v", err)
		}

		ok, err = repo.Contains(603, models.ContentTypeMovie)
		if err != nil {
			t.Fatalf("failed to check contains: %v", err)
		}
		if !ok {
			t.Error("expected cache to contain entry after create")
		}
	})

	t.Run("Remove", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		if err := repo.Create(models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "")); err != nil {
			t.Fatalf("failed to create favorite: %v", err)
		}

		if err := repo.Remove(603, models.ContentTypeMovie); err != nil {
			t.Fatalf("failed to remove favorite: %v", err)
		}

		ok, _ := repo.Contains(603, models.ContentTypeMovie)
		if ok {
			t.Error("expected entry to be gone after remove")
		}

		if err := repo.Remove(603, models.ContentTypeMovie); err != nil {
			t.Errorf("removing absent entry should not fail: %v", err)
		}
	})

	t.Run("List Ordered By Sequence", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		for i, title := range []string{"Alien", "Blade Runner", "Casablanca"} {
			favorite := models.NewFavorite(0, 100+i, models.ContentTypeMovie, title, "")
			if err := repo.Create(favorite); err != nil {
				t.Fatalf("failed to create favorite: %v", err)
			}
		}

		favorites, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(favorites) != 3 {
			t.Fatalf("expected 3 favorites, got %d", len(favorites))
		}
		if favorites[0].Title() != "Alien" || favorites[2].Title() != "Casablanca" {
			t.Error("expected insertion order preserved via sequence")
		}
	})

	t.Run("List Filtered By Content Type", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		repo.Create(models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", ""))
		repo.Create(models.NewFavorite(0, 1399, models.ContentTypeTV, "Game of Thrones", ""))

		favorites, err := repo.List(map[string]any{"content_type": models.ContentTypeTV})
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(favorites) != 1 || favorites[0].ContentType() != models.ContentTypeTV {
			t.Errorf("expected only tv entries, got %d", len(favorites))
		}
	})

	t.Run("ReplaceAll", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		repo.Create(models.NewFavorite(0, 1, models.ContentTypeMovie, "Local Only", ""))

		serverTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		server := []*models.Favorite{
			models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "/matrix.jpg"),
			models.NewFavorite(0, 550, models.ContentTypeMovie, "Fight Club", "/fc.jpg"),
		}
		server[0].SetAddedAt(serverTime)

		if err := repo.ReplaceAll(server); err != nil {
			t.Fatalf("failed to replace favorites: %v", err)
		}

		favorites, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list favorites: %v", err)
		}
		if len(favorites) != 2 {
			t.Fatalf("expected wholesale replace, got %d entries", len(favorites))
		}

		ok, _ := repo.Contains(1, models.ContentTypeMovie)
		if ok {
			t.Error("local-only entry should not survive a replace")
		}

		if !favorites[0].AddedAt().Equal(serverTime) {
			t.Errorf("expected server timestamp preserved, got %s", favorites[0].AddedAt())
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		repo.Create(models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", ""))
		repo.Create(models.NewFavorite(0, 550, models.ContentTypeMovie, "Fight Club", ""))

		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear favorites: %v", err)
		}

		count, _ := repo.Count()
		if count != 0 {
			t.Errorf("expected empty cache after clear, got %d entries", count)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		favorite := models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "")
		if err := repo.Create(favorite); err != nil {
			t.Fatalf("failed to create favorite: %v", err)
		}

		favorite.SetTitle("The Matrix (1999)")
		favorite.SetPosterPath("/matrix-remaster.jpg")
		if err := repo.Update(favorite); err != nil {
			t.Fatalf("failed to update favorite: %v", err)
		}

		got, err := repo.Get(favorite.ID())
		if err != nil {
			t.Fatalf("failed to get favorite: %v", err)
		}
		if got.Title() != "The Matrix (1999)" || got.PosterPath() != "/matrix-remaster.jpg" {
			t.Errorf("unexpected metadata after update: %s %s", got.Title(), got.PosterPath())
		}
	})

	t.Run("Update Missing", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		favorite := models.NewFavorite(0, 603, models.ContentTypeMovie, "The Matrix", "")
		favorite.SetID("no-such-id")
		if err := repo.Update(favorite); err == nil {
			t.Error("expected error updating absent favorite")
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		repo := NewFavoriteRepository(newTestDB(t))

		favorite := models.NewFavorite(0, 0, models.ContentTypeMovie, "", "")
		if err := repo.Create(favorite); err == nil {
			t.Error("expected validation error for non-positive tmdb id")
		}
	})
}
