package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/tmdb"
	"github.com/filmsage/filmsage/internal/ui"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: set catalog.api_key in config.toml", shared.ErrMissingAPIKey)
	}
	return nil
}

// writeMoviePage renders a page of movie results, styled or as JSON.
func (r *Runner) writeMoviePage(page *tmdb.PaginatedMovies, useJSON, pretty bool) error {
	if useJSON {
		return r.writeJSON(page, pretty)
	}

	r.writePlain("%s\n", ui.Title(fmt.Sprintf("Results (page %d of %d, %d total)", page.Page, page.TotalPages, page.TotalResults)))
	for i, movie := range page.Results {
		line := fmt.Sprintf("%2d. %s", i+1, movie.Title)
		if year := movie.Year(); year > 0 {
			line += fmt.Sprintf(" (%d)", year)
		}
		if movie.VoteAverage > 0 {
			line += fmt.Sprintf("  ★ %.1f", movie.VoteAverage)
		}
		r.writePlain("%s\n", line)
		if movie.Overview != "" {
			r.writePlain("    %s\n", ui.Help(shared.Truncate(movie.Overview, 100)))
		}
	}
	return nil
}

// SearchMovies searches the catalog by title, optionally merging person matches.
func (r *Runner) SearchMovies(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query required", shared.ErrMissingArgument)
	}

	page := int(cmd.Int("page"))
	r.logger.Info("searching catalog", "query", query, "page", page)

	var (
		results *tmdb.PaginatedMovies
		err     error
	)
	if cmd.Bool("people") {
		results, err = r.catalog.SearchCombined(ctx, query, page)
	} else {
		results, err = r.catalog.SearchMovies(ctx, query, page)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return r.writeMoviePage(results, cmd.Bool("json"), cmd.Bool("pretty"))
}

// SearchSuggest prints autocomplete suggestions for a partial query.
func (r *Runner) SearchSuggest(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	limit := int(cmd.Int("limit"))

	suggestions, err := r.catalog.Suggestions(ctx, query, limit)
	if err != nil {
		return fmt.Errorf("suggestions failed: %w", err)
	}

	if len(suggestions) == 0 {
		r.writePlain("%s\n", ui.Help("No suggestions"))
		return nil
	}

	for _, suggestion := range suggestions {
		switch suggestion.Type {
		case "person":
			r.writePlain("%s %s\n", suggestion.Title, ui.Help("("+suggestion.Subtitle+")"))
		default:
			line := suggestion.Title
			if suggestion.Year > 0 {
				line += fmt.Sprintf(" (%d)", suggestion.Year)
			}
			r.writePlain("%s\n", line)
		}
	}
	return nil
}

// MovieDetails shows a movie with its credits and similar titles.
func (r *Runner) MovieDetails(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	movieID, err := strconv.Atoi(cmd.StringArg("id"))
	if err != nil {
		return fmt.Errorf("%w: movie id must be numeric", shared.ErrInvalidArgument)
	}

	details, err := r.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		return fmt.Errorf("details lookup failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(details, true)
	}

	r.writePlainHeader(details.Title)
	if details.Tagline != "" {
		r.writePlain("%s\n", ui.Help(details.Tagline))
	}
	if year := details.Year(); year > 0 {
		r.writePlain("Year:    %d\n", year)
	}
	if details.Runtime > 0 {
		r.writePlain("Runtime: %d min\n", details.Runtime)
	}
	if len(details.Genres) > 0 {
		r.writePlain("Genres:  ")
		for i, genre := range details.Genres {
			if i > 0 {
				r.writePlain(", ")
			}
			r.writePlain("%s", genre.Name)
		}
		r.writePlain("\n")
	}
	if details.Overview != "" {
		r.writePlainln("%s", details.Overview)
	}

	var director string
	for _, crew := range details.Credits.Crew {
		if crew.Job == "Director" {
			director = crew.Name
			break
		}
	}
	if director != "" {
		r.writePlain("Director: %s\n", director)
	}

	if len(details.Credits.Cast) > 0 {
		r.writePlain("%s\n", ui.Title("Cast"))
		limit := min(len(details.Credits.Cast), 5)
		for _, cast := range details.Credits.Cast[:limit] {
			r.writePlain("  %s as %s\n", cast.Name, cast.Character)
		}
	}

	if len(details.Similar.Results) > 0 {
		r.writePlain("%s\n", ui.Title("Similar"))
		limit := min(len(details.Similar.Results), 5)
		for _, movie := range details.Similar.Results[:limit] {
			r.writePlain("  %s\n", movie.Title)
		}
	}

	if cmd.Bool("open") {
		url := fmt.Sprintf("https://www.themoviedb.org/movie/%d", movieID)
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	return nil
}

// SearchTrending prints this week's trending movies.
func (r *Runner) SearchTrending(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	results, err := r.catalog.Trending(ctx)
	if err != nil {
		return fmt.Errorf("trending lookup failed: %w", err)
	}

	return r.writeMoviePage(results, false, false)
}

// SearchPopular prints popular movies.
func (r *Runner) SearchPopular(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	results, err := r.catalog.Popular(ctx, int(cmd.Int("page")))
	if err != nil {
		return fmt.Errorf("popular lookup failed: %w", err)
	}

	return r.writeMoviePage(results, false, false)
}

// SearchGenres prints the genre list with ids.
func (r *Runner) SearchGenres(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	genres, err := r.catalog.Genres(ctx)
	if err != nil {
		return fmt.Errorf("genre lookup failed: %w", err)
	}

	for _, genre := range genres {
		r.writePlain("%5d  %s\n", genre.ID, genre.Name)
	}
	return nil
}
