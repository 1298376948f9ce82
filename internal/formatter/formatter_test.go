package formatter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/filmsage/filmsage/internal/models"
)

func sampleFavorites() []*models.Favorite {
	first := models.NewFavorite(1, 438631, models.ContentTypeMovie, "Dune", "/dune.jpg")
	first.SetID("fav1")
	first.SetAddedAt(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	second := models.NewFavorite(2, 1396, models.ContentTypeTV, "Breaking Bad", "/bb.jpg")
	second.SetID("fav2")
	second.SetAddedAt(time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC))

	return []*models.Favorite{first, second}
}

func TestExporters(t *testing.T) {
	favorites := sampleFavorites()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(favorites)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,TMDB ID,Type,Title,Poster,Added") {
			t.Errorf("CSV missing headers, got: %s", output)
		}

		if !strings.Contains(output, "438631") {
			t.Errorf("CSV missing TMDB id")
		}
		if !strings.Contains(output, "Breaking Bad") {
			t.Errorf("CSV missing title")
		}
		if !strings.Contains(output, "2024-03-01T12:00:00Z") {
			t.Errorf("CSV missing added timestamp")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		posters := map[int]string{438631: "posters/438631.jpg"}

		data, err := ExportToMarkdown(favorites, "My Favorites", posters)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# My Favorites") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "**Entries**: 2") {
			t.Errorf("Markdown missing entry count")
		}
		if !strings.Contains(output, "1. Dune (movie) - added 2024-03-01") {
			t.Errorf("Markdown missing first entry, got: %s", output)
		}
		if !strings.Contains(output, "![Dune](posters/438631.jpg)") {
			t.Errorf("Markdown missing poster link")
		}
		if strings.Contains(output, "![Breaking Bad]") {
			t.Errorf("Markdown should not link a poster that was not saved")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(favorites)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Favorites: 2") {
			t.Errorf("text missing count, got: %s", output)
		}
		if !strings.Contains(output, "2. Breaking Bad (tv)") {
			t.Errorf("text missing second entry")
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(favorites)
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}

		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}

		if rows[0]["tmdb_id"].(float64) != 438631 {
			t.Errorf("unexpected first row %+v", rows[0])
		}
	})
}

func TestFileExports(t *testing.T) {
	favorites := sampleFavorites()

	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "export")

		result, err := WriteCSVExport(favorites, base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		if result.EntriesFile != base+"_favorites.csv" {
			t.Errorf("unexpected entries file %s", result.EntriesFile)
		}

		metadata, err := os.ReadFile(result.MetadataFile)
		if err != nil {
			t.Fatalf("failed to read metadata: %v", err)
		}

		var meta struct {
			Entries int `json:"entries"`
		}
		if err := json.Unmarshal(metadata, &meta); err != nil {
			t.Fatalf("invalid metadata JSON: %v", err)
		}

		if meta.Entries != 2 {
			t.Errorf("expected 2 entries in metadata, got %d", meta.Entries)
		}
	})

	t.Run("WriteMarkdownExport Downloads Posters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("fake-image-bytes"))
		}))
		defer server.Close()

		dir := filepath.Join(t.TempDir(), "md")
		posterURLs := map[int]string{438631: server.URL + "/dune.jpg"}

		result, err := WriteMarkdownExport(favorites, dir, "Favorites", posterURLs)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if len(result.Posters) != 1 {
			t.Fatalf("expected 1 downloaded poster, got %d", len(result.Posters))
		}

		saved, err := os.ReadFile(filepath.Join(dir, "posters", "438631.jpg"))
		if err != nil {
			t.Fatalf("poster not saved: %v", err)
		}

		if string(saved) != "fake-image-bytes" {
			t.Errorf("poster content mismatch")
		}

		readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
		if err != nil {
			t.Fatalf("README not written: %v", err)
		}

		if !strings.Contains(string(readme), "![Dune]") {
			t.Errorf("README missing poster link")
		}
	})

	t.Run("WriteMarkdownExport Survives Download Failure", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		dir := filepath.Join(t.TempDir(), "md")
		posterURLs := map[int]string{438631: server.URL + "/missing.jpg"}

		result, err := WriteMarkdownExport(favorites, dir, "", posterURLs)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if len(result.Posters) != 0 {
			t.Errorf("expected no posters, got %v", result.Posters)
		}

		if _, err := os.Stat(filepath.Join(dir, "README.md")); err != nil {
			t.Errorf("README should still be written: %v", err)
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "favorites.txt")

		written, err := WriteTextExport(favorites, path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}

		data, err := os.ReadFile(written)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}

		if !strings.Contains(string(data), "1. Dune (movie)") {
			t.Errorf("unexpected text export: %s", data)
		}
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "favorites.json")

		written, err := WriteJSONExport(favorites, path)
		if err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}

		data, err := os.ReadFile(written)
		if err != nil {
			t.Fatalf("failed to read export: %v", err)
		}

		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if len(rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(rows))
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("Empty URL", func(t *testing.T) {
		if _, err := DownloadImage(""); err == nil {
			t.Error("expected an error for an empty URL")
		}
	})

	t.Run("Non-200 Status", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadImage(server.URL); err == nil {
			t.Error("expected an error for a 404 response")
		}
	})
}
