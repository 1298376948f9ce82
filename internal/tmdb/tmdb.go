// TMDB catalog client.
//
// Endpoint shapes follow https://developer.themoviedb.org/reference/intro/getting-started
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/filmsage/filmsage/internal/shared"
	"golang.org/x/time/rate"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p/w500"

	placeholderMoviePoster  = "/images/placeholder-movie.jpg"
	placeholderPersonPhoto  = "/images/placeholder-person.jpg"
	defaultLanguage         = "en-US"
	defaultSuggestionsLimit = 5
)

// Movie represents a movie result from search, discover, or list endpoints.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int   `json:"genre_ids"`
}

// Year returns the release year, or zero when the date is absent or malformed.
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Person represents an actor, director, or other crew member.
type Person struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
	Department  string `json:"known_for_department"`
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PaginatedMovies is a page of movie results with pagination metadata.
type PaginatedMovies struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// PaginatedPeople is a page of person results with pagination metadata.
type PaginatedPeople struct {
	Page         int      `json:"page"`
	Results      []Person `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// CastMember is a credited cast entry on a movie.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is a credited crew entry on a movie.
type CrewMember struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits holds the cast and crew expansion of a movie.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// MovieDetails is the full detail record including the credits and
// similar-titles expansions.
type MovieDetails struct {
	Movie
	Runtime int             `json:"runtime"`
	Genres  []Genre         `json:"genres"`
	Tagline string          `json:"tagline"`
	Credits Credits         `json:"credits"`
	Similar PaginatedMovies `json:"similar"`
}

// PersonDetails is a person record with the movie_credits expansion.
type PersonDetails struct {
	Person
	Biography    string `json:"biography"`
	Birthday     string `json:"birthday"`
	MovieCredits struct {
		Cast []Movie `json:"cast"`
	} `json:"movie_credits"`
}

// Suggestion is an autocomplete entry combining movie and person matches.
type Suggestion struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"` // "movie" or "person"
	Year     int    `json:"year,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Poster   string `json:"poster,omitempty"`
}

// DiscoverFilters narrows a discover query. Zero values are omitted.
type DiscoverFilters struct {
	Page       int
	SortBy     string
	WithGenres int
	WithCast   int
	WithCrew   int
	Year       int
}

// Client talks to the TMDB API. All requests carry the API key as a query
// parameter and pass through a rate limiter sized to TMDB's request budget.
type Client struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a TMDB client with the given API key.
// The language defaults to en-US and the HTTP client to [http.DefaultClient].
func NewClient(apiKey, language string, httpClient *http.Client) *Client {
	if language == "" {
		language = defaultLanguage
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	// TMDB allows roughly 40 requests per 10 seconds per key.
	limiter := rate.NewLimiter(rate.Every(250*time.Millisecond), 40)

	return &Client{
		apiKey:     apiKey,
		language:   language,
		baseURL:    tmdbBaseURL,
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// doRequest performs a rate-limited GET against the TMDB API and decodes the
// JSON response into result.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if c.apiKey == "" {
		return shared.ErrMissingAPIKey
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if params.Get("language") == "" {
		params.Set("language", c.language)
	}

	apiURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			StatusMessage string `json:"status_message"`
		}
		json.NewDecoder(resp.Body).Decode(&failure)
		if failure.StatusMessage != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, failure.StatusMessage)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchMovies searches movies by title.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*PaginatedMovies, error) {
	params := url.Values{"query": {query}, "page": {pageParam(page)}}

	var results PaginatedMovies
	if err := c.doRequest(ctx, "/search/movie", params, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// SearchPeople searches actors, directors, and other people by name.
func (c *Client) SearchPeople(ctx context.Context, query string, page int) (*PaginatedPeople, error) {
	params := url.Values{"query": {query}, "page": {pageParam(page)}}

	var results PaginatedPeople
	if err := c.doRequest(ctx, "/search/person", params, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// SearchMulti searches across movies, TV shows, and people in one query.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (json.RawMessage, error) {
	params := url.Values{"query": {query}, "page": {pageParam(page)}}

	var raw json.RawMessage
	if err := c.doRequest(ctx, "/search/multi", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SearchMoviesByPerson finds movies featuring the best person match for name.
// An unknown name yields an empty page, not an error.
func (c *Client) SearchMoviesByPerson(ctx context.Context, name string, page int) (*PaginatedMovies, error) {
	people, err := c.SearchPeople(ctx, name, 1)
	if err != nil {
		return nil, err
	}

	if len(people.Results) == 0 {
		return &PaginatedMovies{Page: 1}, nil
	}

	return c.MoviesByPerson(ctx, people.Results[0].ID, page)
}

// SearchCombined merges title matches with movies featuring a matching
// person, de-duplicated by movie ID. A failed person lookup degrades to the
// plain title search rather than failing the whole query.
func (c *Client) SearchCombined(ctx context.Context, query string, page int) (*PaginatedMovies, error) {
	byTitle, err := c.SearchMovies(ctx, query, page)
	if err != nil {
		return nil, err
	}

	byPerson, err := c.SearchMoviesByPerson(ctx, query, page)
	if err != nil {
		return byTitle, nil
	}

	seen := make(map[int]bool, len(byTitle.Results))
	combined := make([]Movie, 0, len(byTitle.Results)+len(byPerson.Results))
	for _, movie := range byTitle.Results {
		seen[movie.ID] = true
		combined = append(combined, movie)
	}
	for _, movie := range byPerson.Results {
		if !seen[movie.ID] {
			seen[movie.ID] = true
			combined = append(combined, movie)
		}
	}

	return &PaginatedMovies{
		Page:         page,
		Results:      combined,
		TotalResults: byTitle.TotalResults + byPerson.TotalResults,
		TotalPages:   max(byTitle.TotalPages, byPerson.TotalPages),
	}, nil
}

// Discover queries the discover endpoint with the given filters.
func (c *Client) Discover(ctx context.Context, filters DiscoverFilters) (*PaginatedMovies, error) {
	params := url.Values{"page": {pageParam(filters.Page)}}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	params.Set("sort_by", sortBy)

	if filters.WithGenres > 0 {
		params.Set("with_genres", strconv.Itoa(filters.WithGenres))
	}
	if filters.WithCast > 0 {
		params.Set("with_cast", strconv.Itoa(filters.WithCast))
	}
	if filters.WithCrew > 0 {
		params.Set("with_crew", strconv.Itoa(filters.WithCrew))
	}
	if filters.Year > 0 {
		params.Set("primary_release_year", strconv.Itoa(filters.Year))
	}

	var results PaginatedMovies
	if err := c.doRequest(ctx, "/discover/movie", params, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// MoviesByGenre lists popular movies in the given genre.
func (c *Client) MoviesByGenre(ctx context.Context, genreID, page int) (*PaginatedMovies, error) {
	return c.Discover(ctx, DiscoverFilters{WithGenres: genreID, Page: page})
}

// MoviesByPerson lists movies with the given person in the cast.
func (c *Client) MoviesByPerson(ctx context.Context, personID, page int) (*PaginatedMovies, error) {
	return c.Discover(ctx, DiscoverFilters{WithCast: personID, Page: page})
}

// MoviesByDirector lists movies with the given person in the crew.
func (c *Client) MoviesByDirector(ctx context.Context, personID, page int) (*PaginatedMovies, error) {
	return c.Discover(ctx, DiscoverFilters{WithCrew: personID, Page: page})
}

// Genres retrieves the movie genre list.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var response struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.doRequest(ctx, "/genre/movie/list", nil, &response); err != nil {
		return nil, err
	}
	return response.Genres, nil
}

// MovieDetails retrieves a movie with its credits and similar-titles expansions.
func (c *Client) MovieDetails(ctx context.Context, movieID int) (*MovieDetails, error) {
	params := url.Values{"append_to_response": {"credits,similar"}}

	var details MovieDetails
	if err := c.doRequest(ctx, "/movie/"+strconv.Itoa(movieID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// PersonDetails retrieves a person with their movie credits.
func (c *Client) PersonDetails(ctx context.Context, personID int) (*PersonDetails, error) {
	params := url.Values{"append_to_response": {"movie_credits"}}

	var details PersonDetails
	if err := c.doRequest(ctx, "/person/"+strconv.Itoa(personID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Trending retrieves this week's trending movies.
func (c *Client) Trending(ctx context.Context) (*PaginatedMovies, error) {
	var results PaginatedMovies
	if err := c.doRequest(ctx, "/trending/movie/week", nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// Popular retrieves popular movies.
func (c *Client) Popular(ctx context.Context, page int) (*PaginatedMovies, error) {
	params := url.Values{"page": {pageParam(page)}}

	var results PaginatedMovies
	if err := c.doRequest(ctx, "/movie/popular", params, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// Suggestions produces up to limit autocomplete entries, movie matches first,
// padded with person matches.
func (c *Client) Suggestions(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestionsLimit
	}
	if len(query) < 2 {
		return nil, nil
	}

	movies, err := c.SearchMovies(ctx, query, 1)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, limit)
	for _, movie := range movies.Results {
		if len(suggestions) >= limit {
			break
		}
		suggestions = append(suggestions, Suggestion{
			ID:     movie.ID,
			Title:  movie.Title,
			Type:   "movie",
			Year:   movie.Year(),
			Poster: movie.PosterPath,
		})
	}

	people, err := c.SearchPeople(ctx, query, 1)
	if err != nil {
		return suggestions, nil
	}

	remaining := max(1, limit-len(suggestions))
	for _, person := range people.Results {
		if remaining == 0 {
			break
		}
		suggestions = append(suggestions, Suggestion{
			ID:       person.ID,
			Title:    person.Name,
			Type:     "person",
			Subtitle: "Movies with " + person.Name,
			Poster:   person.ProfilePath,
		})
		remaining--
	}

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// ImageURL resolves a poster path to a full image URL, with a placeholder for
// missing art.
func ImageURL(path string) string {
	if path == "" {
		return placeholderMoviePoster
	}
	return tmdbImageBaseURL + path
}

// ProfileImageURL resolves a person's profile path to a full image URL.
func ProfileImageURL(path string) string {
	if path == "" {
		return placeholderPersonPhoto
	}
	return tmdbImageBaseURL + path
}

func pageParam(page int) string {
	if page <= 0 {
		page = 1
	}
	return strconv.Itoa(page)
}
