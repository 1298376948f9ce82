// package formatter renders favorites collections to exchange formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
)

// ExportToCSV converts a favorites list to CSV with columns: ID, TMDB ID, Type, Title, Poster, Added
func ExportToCSV(favorites []*models.Favorite) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "TMDB ID", "Type", "Title", "Poster", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, favorite := range favorites {
		record := []string{
			favorite.ID(),
			strconv.Itoa(favorite.TMDBID()),
			favorite.ContentType(),
			favorite.Title(),
			favorite.PosterPath(),
			favorite.AddedAt().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a favorites list to Markdown.
// posterFiles maps TMDB IDs to locally saved poster filenames, linked inline when present.
func ExportToMarkdown(favorites []*models.Favorite, title string, posterFiles map[int]string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Favorites"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(favorites)))

	for i, favorite := range favorites {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)", i+1, favorite.Title(), favorite.ContentType()))
		if !favorite.AddedAt().IsZero() {
			buf.WriteString(fmt.Sprintf(" - added %s", favorite.AddedAt().Format("2006-01-02")))
		}
		buf.WriteString("\n")

		if poster, ok := posterFiles[favorite.TMDBID()]; ok && poster != "" {
			buf.WriteString(fmt.Sprintf("   ![%s](%s)\n", favorite.Title(), poster))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a favorites list to plain text.
func ExportToText(favorites []*models.Favorite) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Favorites: %d\n\n", len(favorites)))
	for i, favorite := range favorites {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, favorite.Title(), favorite.ContentType()))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// exportRow is the JSON shape for a single favorites entry.
type exportRow struct {
	ID          string `json:"id"`
	TMDBID      int    `json:"tmdb_id"`
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path,omitempty"`
	AddedAt     string `json:"added_at"`
}

// ToJSON generates an indented JSON representation of a favorites list.
func ToJSON(favorites []*models.Favorite) ([]byte, error) {
	rows := make([]exportRow, len(favorites))
	for i, favorite := range favorites {
		rows[i] = exportRow{
			ID:          favorite.ID(),
			TMDBID:      favorite.TMDBID(),
			ContentType: favorite.ContentType(),
			Title:       favorite.Title(),
			PosterPath:  favorite.PosterPath(),
			AddedAt:     favorite.AddedAt().Format(time.RFC3339),
		}
	}
	return shared.MarshalJSON(rows, true)
}

// exportMetadata accompanies CSV exports so a re-import can verify counts.
type exportMetadata struct {
	Entries     int    `json:"entries"`
	GeneratedAt string `json:"generated_at"`
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile  string
	MetadataFile string
}

// WriteCSVExport exports favorites to CSV with an accompanying metadata JSON file.
//
// Creates {base}_favorites.csv and {base}_metadata.json
func WriteCSVExport(favorites []*models.Favorite, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "favorites"
	}

	csvData, err := ExportToCSV(favorites)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_favorites.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := shared.MarshalJSON(exportMetadata{
		Entries:     len(favorites),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		EntriesFile:  entriesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   []string
}

// WriteMarkdownExport exports favorites to Markdown in a dedicated directory.
//
// posterURLs optionally maps TMDB IDs to poster image URLs; each resolvable
// poster is downloaded into {dir}/posters/. A failed download skips the poster
// rather than failing the export.
// Creates {dir}/README.md and optionally {dir}/posters/{tmdb_id}.jpg
func WriteMarkdownExport(favorites []*models.Favorite, outputDir, title string, posterURLs map[int]string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "favorites"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	posterFiles := make(map[int]string)
	for tmdbID, url := range posterURLs {
		if url == "" {
			continue
		}

		imageData, err := DownloadImage(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download poster for %d: %v\n", tmdbID, err)
			continue
		}

		if err := os.MkdirAll(filepath.Join(outputDir, "posters"), 0755); err != nil {
			return nil, fmt.Errorf("failed to create posters directory: %w", err)
		}

		posterName := filepath.Join("posters", fmt.Sprintf("%d.jpg", tmdbID))
		posterPath := filepath.Join(outputDir, posterName)
		if err := os.WriteFile(posterPath, imageData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save poster for %d: %v\n", tmdbID, err)
			continue
		}

		posterFiles[tmdbID] = posterName
		result.Posters = append(result.Posters, posterPath)
		result.Files = append(result.Files, posterPath)
	}

	mdData, err := ExportToMarkdown(favorites, title, posterFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports favorites to plain text format.
//
// Defaults to favorites.txt as the filename.
func WriteTextExport(favorites []*models.Favorite, path string) (string, error) {
	if path == "" {
		path = "favorites.txt"
	}

	textData, err := ExportToText(favorites)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports favorites to an indented JSON file.
//
// Defaults to favorites.json as the filename.
func WriteJSONExport(favorites []*models.Favorite, path string) (string, error) {
	if path == "" {
		path = "favorites.json"
	}

	data, err := ToJSON(favorites)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// WriteExportManifest writes a JSON summary of an export run next to its files.
func WriteExportManifest(manifest any, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
