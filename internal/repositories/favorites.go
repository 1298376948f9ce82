package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
)

// FavoriteRepository implements [models.Repository] for [models.Favorite] persistence.
//
// The UNIQUE(tmdb_id, content_type) constraint enforces at most one entry per
// catalog item; Create is an idempotent upsert so optimistic re-adds are safe.
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new FavoriteRepository with the given database connection
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create inserts a favorite with generated ID and sequence.
// Inserting an entry that already exists for the same (tmdb_id, content_type)
// is a no-op, preserving the original added_at.
func (r *FavoriteRepository) Create(favorite *models.Favorite) error {
	if err := favorite.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	existing, err := r.GetByContent(favorite.TMDBID(), favorite.ContentType())
	if err == nil && existing != nil {
		favorite.SetID(existing.ID())
		favorite.SetSequence(existing.Sequence())
		favorite.SetAddedAt(existing.AddedAt())
		return nil
	}

	sequence, err := NextSequence(r.db, "favorites")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	favorite.SetID(id)
	favorite.SetSequence(sequence)

	query := `
		INSERT INTO favorites (id, sequence, tmdb_id, content_type, title, poster_path, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tmdb_id, content_type) DO NOTHING
	`

	_, err = r.db.Exec(query, id, sequence, favorite.TMDBID(), favorite.ContentType(),
		favorite.Title(), favorite.PosterPath(), favorite.AddedAt())
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	return nil
}

// Get retrieves a favorite by its generated ID.
func (r *FavoriteRepository) Get(id string) (*models.Favorite, error) {
	return r.queryOne("SELECT id, sequence, tmdb_id, content_type, title, poster_path, added_at FROM favorites WHERE id = ?", id)
}

// GetByContent retrieves a favorite by its (tmdb_id, content_type) key.
func (r *FavoriteRepository) GetByContent(tmdbID int, contentType string) (*models.Favorite, error) {
	return r.queryOne("SELECT id, sequence, tmdb_id, content_type, title, poster_path, added_at FROM favorites WHERE tmdb_id = ? AND content_type = ?", tmdbID, contentType)
}

// Contains reports whether a favorite exists for the (tmdb_id, content_type) key.
func (r *FavoriteRepository) Contains(tmdbID int, contentType string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM favorites WHERE tmdb_id = ? AND content_type = ?)", tmdbID, contentType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query favorite: %w", err)
	}
	return exists, nil
}

// Update modifies the cached display metadata of an existing favorite.
func (r *FavoriteRepository) Update(favorite *models.Favorite) error {
	if err := favorite.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE favorites SET title = ?, poster_path = ? WHERE id = ?
	`

	result, err := r.db.Exec(query, favorite.Title(), favorite.PosterPath(), favorite.ID())
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("favorite not found: %s", favorite.ID())
	}

	return nil
}

// Delete removes a favorite by its generated ID.
func (r *FavoriteRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM favorites WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("favorite not found: %s", id)
	}

	return nil
}

// Remove deletes a favorite by its (tmdb_id, content_type) key.
// Removing an absent entry is not an error.
func (r *FavoriteRepository) Remove(tmdbID int, contentType string) error {
	if _, err := r.db.Exec("DELETE FROM favorites WHERE tmdb_id = ? AND content_type = ?", tmdbID, contentType); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// List retrieves all favorites matching the given criteria, ordered by sequence.
func (r *FavoriteRepository) List(criteria map[string]any) ([]*models.Favorite, error) {
	query := `
		SELECT id, sequence, tmdb_id, content_type, title, poster_path, added_at
		FROM favorites
		WHERE 1 = 1
	`

	args := []any{}

	if contentType, ok := criteria["content_type"].(string); ok && contentType != "" {
		query += " AND content_type = ?"
		args = append(args, contentType)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*models.Favorite
	for rows.Next() {
		favorite, err := scanFavorite(rows.Scan)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return favorites, nil
}

// ReplaceAll overwrites the entire cache with the authoritative server list.
// This is a full replace, not a merge: local-only entries do not survive.
func (r *FavoriteRepository) ReplaceAll(favorites []*models.Favorite) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM favorites"); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}

	for i, favorite := range favorites {
		if err := favorite.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		favorite.SetID(shared.GenerateID())
		favorite.SetSequence(i + 1)

		query := `
			INSERT INTO favorites (id, sequence, tmdb_id, content_type, title, poster_path, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(tmdb_id, content_type) DO NOTHING
		`
		_, err := tx.Exec(query, favorite.ID(), favorite.Sequence(), favorite.TMDBID(),
			favorite.ContentType(), favorite.Title(), favorite.PosterPath(), favorite.AddedAt())
		if err != nil {
			return fmt.Errorf("failed to insert favorite: %w", err)
		}
	}

	if _, err := tx.Exec("UPDATE favorites_sequence SET value = ? WHERE id = 1", len(favorites)); err != nil {
		return fmt.Errorf("failed to reset sequence: %w", err)
	}

	return tx.Commit()
}

// Clear removes every favorite. Invoked on logout so no favorites survive a
// session boundary.
func (r *FavoriteRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM favorites"); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}

// Count returns the number of cached favorites.
func (r *FavoriteRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM favorites").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

func (r *FavoriteRepository) queryOne(query string, args ...any) (*models.Favorite, error) {
	favorite, err := scanFavorite(r.db.QueryRow(query, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("favorite not found")
	}
	if err != nil {
		return nil, err
	}
	return favorite, nil
}

func scanFavorite(scan func(...any) error) (*models.Favorite, error) {
	var (
		id          string
		sequence    int
		tmdbID      int
		contentType string
		title       sql.NullString
		posterPath  sql.NullString
		addedAt     time.Time
	)

	if err := scan(&id, &sequence, &tmdbID, &contentType, &title, &posterPath, &addedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan favorite: %w", err)
	}

	favorite := models.NewFavorite(sequence, tmdbID, contentType, title.String, posterPath.String)
	favorite.SetID(id)
	favorite.SetAddedAt(addedAt)

	return favorite, nil
}
