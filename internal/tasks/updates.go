package tasks

import (
	"fmt"

	"github.com/filmsage/filmsage/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchServer Phase = iota
	FetchLocal
	Compare
	PushFavorites
	PullFavorites
	DownloadPosters
	ExportFavorites
)

func (p Phase) String() string {
	switch p {
	case FetchServer:
		return "fetch_server"
	case FetchLocal:
		return "fetch_local"
	case Compare:
		return "compare"
	case PushFavorites:
		return "push_favorites"
	case PullFavorites:
		return "pull_favorites"
	case DownloadPosters:
		return "download_posters"
	case ExportFavorites:
		return "export_favorites"
	default:
		return ""
	}
}

func fetchServerUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchServer,
		Step:    step,
		Total:   total,
		Message: "Fetching favorites from the server...",
	}
}

func fetchLocalUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLocal,
		Step:    step,
		Total:   total,
		Message: "Reading the local favorites cache...",
	}
}

func compareUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing local and server favorites...",
	}
}

func pushFavoriteUpdate(step, total int, favorite *models.Favorite) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PushFavorites,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading: %s", step, total, favorite.Title()),
	}
}

func pullCompletedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PullFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Replaced local cache with %d server favorites", count),
	}
}

func downloadPosterUpdate(step, total int, favorite *models.Favorite) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadPosters,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Poster: %s", step, total, favorite.Title()),
	}
}

func exportCompletedUpdate(format string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Export complete (%s, %d files)", format, filesCount),
	}
}

func exportFailedUpdate(name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✗ %s: %v", name, err),
	}
}
