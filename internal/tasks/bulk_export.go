package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/filmsage/filmsage/internal/formatter"
	"github.com/filmsage/filmsage/internal/models"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for favorites exports.
type ExportOpts struct {
	Format     string                           // Export format: json, csv, markdown, txt
	OutputDir  string                           // Base output directory (default: favorites_export_{epoch})
	Title      string                           // Collection title for Markdown output
	NumWorkers int                              // Concurrent poster downloads (default: 5)
	RateLimit  float64                          // Poster requests per second (default: 5)
	PosterURL  func(path string) string         // Resolves a poster path to a fetchable URL
	Download   func(url string) ([]byte, error) // Poster fetcher (default: formatter.DownloadImage)
}

// PosterResult records the outcome of fetching one poster.
type PosterResult struct {
	TMDBID int
	File   string
	Error  error
}

// ExportRunResult summarizes an export run.
type ExportRunResult struct {
	TotalEntries    int            `json:"total_entries"`
	Format          string         `json:"format"`
	OutputDirectory string         `json:"output_directory"`
	Files           []string       `json:"files"`
	PostersSaved    int            `json:"posters_saved"`
	PosterFailures  int            `json:"poster_failures"`
	ManifestPath    string         `json:"-"`
	Posters         []PosterResult `json:"-"`
}

type posterJob struct {
	favorite *models.Favorite
	url      string
}

// Export writes the favorites collection to disk in the requested format.
//
// Markdown exports download posters through a bounded worker pool with rate
// limiting so a large collection does not hammer the image CDN. Poster
// failures are recorded but never fail the export. A manifest file
// summarizing the run is written alongside the output.
func (e *FavoritesEngine) Export(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	favorites []*models.Favorite,
	opts ExportOpts,
) (*ExportRunResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("favorites_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Download == nil {
		opts.Download = formatter.DownloadImage
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportRunResult{
		TotalEntries:    len(favorites),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Files:           []string{},
	}

	switch opts.Format {
	case "csv":
		base := filepath.Join(opts.OutputDir, "favorites")
		csvRes, err := formatter.WriteCSVExport(favorites, base)
		if err != nil {
			e.sendProgress(prog, exportFailedUpdate("favorites.csv", err))
			return result, fmt.Errorf("CSV export failed: %w", err)
		}
		result.Files = append(result.Files, csvRes.EntriesFile, csvRes.MetadataFile)

	case "markdown":
		posterFiles := e.downloadPosters(ctx, prog, favorites, opts, result)

		mdData, err := formatter.ExportToMarkdown(favorites, opts.Title, posterFiles)
		if err != nil {
			return result, fmt.Errorf("markdown export failed: %w", err)
		}

		mdFile := filepath.Join(opts.OutputDir, "README.md")
		if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
			return result, fmt.Errorf("markdown write failed: %w", err)
		}
		result.Files = append(result.Files, mdFile)

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, "favorites.txt")
		written, err := formatter.WriteTextExport(favorites, txtPath)
		if err != nil {
			e.sendProgress(prog, exportFailedUpdate("favorites.txt", err))
			return result, fmt.Errorf("text export failed: %w", err)
		}
		result.Files = append(result.Files, written)

	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, "favorites.json")
		written, err := formatter.WriteJSONExport(favorites, jsonPath)
		if err != nil {
			e.sendProgress(prog, exportFailedUpdate("favorites.json", err))
			return result, fmt.Errorf("JSON export failed: %w", err)
		}
		result.Files = append(result.Files, written)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.sendProgress(prog, exportCompletedUpdate(opts.Format, len(result.Files)))
	return result, nil
}

// downloadPosters fetches posters through a worker pool and returns a map of
// TMDB id to saved poster path, relative to the output directory.
func (e *FavoritesEngine) downloadPosters(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	favorites []*models.Favorite,
	opts ExportOpts,
	result *ExportRunResult,
) map[int]string {
	if opts.PosterURL == nil {
		return nil
	}

	jobs := make(chan posterJob, len(favorites))
	results := make(chan PosterResult, len(favorites))

	postersDir := filepath.Join(opts.OutputDir, "posters")
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				if err := limiter.Wait(ctx); err != nil {
					return
				}

				results <- e.fetchPoster(job, postersDir, opts)
			}
		}()
	}

	queued := 0
	for i, favorite := range favorites {
		if favorite.PosterPath() == "" {
			continue
		}

		url := opts.PosterURL(favorite.PosterPath())
		if url == "" {
			continue
		}

		e.sendProgress(prog, downloadPosterUpdate(i+1, len(favorites), favorite))
		jobs <- posterJob{favorite: favorite, url: url}
		queued++
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	saved := make(map[int]string, queued)
	for res := range results {
		result.Posters = append(result.Posters, res)

		if res.Error != nil {
			result.PosterFailures++
			continue
		}

		result.PostersSaved++
		relative, err := filepath.Rel(opts.OutputDir, res.File)
		if err != nil {
			relative = res.File
		}
		saved[res.TMDBID] = relative
		result.Files = append(result.Files, res.File)
	}

	return saved
}

// fetchPoster downloads and saves one poster image.
func (e *FavoritesEngine) fetchPoster(job posterJob, postersDir string, opts ExportOpts) PosterResult {
	result := PosterResult{TMDBID: job.favorite.TMDBID()}

	data, err := opts.Download(job.url)
	if err != nil {
		result.Error = fmt.Errorf("poster download failed: %w", err)
		return result
	}

	if err := os.MkdirAll(postersDir, 0755); err != nil {
		result.Error = fmt.Errorf("failed to create posters directory: %w", err)
		return result
	}

	file := filepath.Join(postersDir, fmt.Sprintf("%d.jpg", job.favorite.TMDBID()))
	if err := os.WriteFile(file, data, 0644); err != nil {
		result.Error = fmt.Errorf("failed to save poster: %w", err)
		return result
	}

	result.File = file
	return result
}
