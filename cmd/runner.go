package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/filmsage/filmsage/internal/api"
	"github.com/filmsage/filmsage/internal/guard"
	"github.com/filmsage/filmsage/internal/repositories"
	"github.com/filmsage/filmsage/internal/session"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/tasks"
	"github.com/filmsage/filmsage/internal/tmdb"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	backend   *api.Client
	catalog   *tmdb.Client
	sessions  *session.Manager
	favorites *repositories.FavoriteRepository
	engine    *tasks.FavoritesEngine
	navigator *guard.Navigator
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Backend   *api.Client
	Catalog   *tmdb.Client
	Sessions  *session.Manager
	Favorites *repositories.FavoriteRepository
	Logger    *log.Logger
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	var engine *tasks.FavoritesEngine
	if opts.Backend != nil && opts.Favorites != nil {
		engine = tasks.NewFavoritesEngine(opts.Backend, opts.Favorites)
	}

	var navigator *guard.Navigator
	if opts.Sessions != nil {
		navigator = guard.NewNavigator(guard.DefaultRoutes(), opts.Sessions, opts.Logger)
	}

	return &Runner{
		config:    opts.Config,
		backend:   opts.Backend,
		catalog:   opts.Catalog,
		sessions:  opts.Sessions,
		favorites: opts.Favorites,
		engine:    engine,
		navigator: navigator,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, favoritesCommand, watchlistCommand,
		reviewCommand, socialCommand, adminCommand, routesCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSession returns the acting user or an error when nobody is signed in.
func (r *Runner) requireSession() (*session.Session, error) {
	if r.sessions == nil {
		return nil, fmt.Errorf("%w: session manager not initialized", shared.ErrMissingConfig)
	}

	r.sessions.Restore()
	current := r.sessions.Current()
	if !current.Authenticated || current.User == nil {
		return nil, fmt.Errorf("%w: run 'filmsage auth login' first", shared.ErrNotAuthenticated)
	}
	return &current, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
