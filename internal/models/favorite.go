package models

import (
	"fmt"
	"time"

	"github.com/filmsage/filmsage/internal/shared"
)

// Content types recognized by the favorites cache.
const (
	ContentTypeMovie = "movie"
	ContentTypeTV    = "tv"
)

// Favorite is a locally cached favorite entry, keyed by (tmdb_id, content_type).
//
// Entries are written optimistically before server confirmation and replaced
// wholesale when the authoritative server list is fetched.
type Favorite struct {
	id          string
	sequence    int
	tmdbID      int
	contentType string
	title       string
	posterPath  string
	addedAt     time.Time
}

// NewFavorite creates a favorite entry with the given sequence and metadata.
// AddedAt defaults to now; use SetAddedAt to preserve a server timestamp.
func NewFavorite(sequence, tmdbID int, contentType, title, posterPath string) *Favorite {
	if contentType == "" {
		contentType = ContentTypeMovie
	}
	return &Favorite{
		sequence:    sequence,
		tmdbID:      tmdbID,
		contentType: contentType,
		title:       title,
		posterPath:  posterPath,
		addedAt:     time.Now(),
	}
}

func (f *Favorite) ID() string           { return f.id }
func (f *Favorite) Sequence() int        { return f.sequence }
func (f *Favorite) TMDBID() int          { return f.tmdbID }
func (f *Favorite) ContentType() string  { return f.contentType }
func (f *Favorite) Title() string        { return f.title }
func (f *Favorite) PosterPath() string   { return f.posterPath }
func (f *Favorite) AddedAt() time.Time   { return f.addedAt }
func (f *Favorite) CreatedAt() time.Time { return f.addedAt }
func (f *Favorite) UpdatedAt() time.Time { return f.addedAt }

func (f *Favorite) SetID(id string)           { f.id = id }
func (f *Favorite) SetAddedAt(t time.Time)    { f.addedAt = t }
func (f *Favorite) SetTitle(title string)     { f.title = title }
func (f *Favorite) SetPosterPath(path string) { f.posterPath = path }
func (f *Favorite) SetSequence(sequence int)  { f.sequence = sequence }
func (f *Favorite) SetContentType(ct string)  { f.contentType = ct }

// Validate checks that the entry identifies a catalog item.
func (f *Favorite) Validate() error {
	if f.tmdbID <= 0 {
		return fmt.Errorf("%w: tmdb id must be positive", shared.ErrInvalidInput)
	}
	if f.contentType != ContentTypeMovie && f.contentType != ContentTypeTV {
		return fmt.Errorf("%w: unknown content type %q", shared.ErrInvalidInput, f.contentType)
	}
	return nil
}
