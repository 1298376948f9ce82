package main

import (
	"context"
	"fmt"

	"github.com/filmsage/filmsage/internal/guard"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/ui"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireNavigator() error {
	if r.navigator == nil {
		return fmt.Errorf("%w: session manager not initialized", shared.ErrMissingConfig)
	}
	return nil
}

// RoutesCheck evaluates the guard for a single path against the current session.
func (r *Runner) RoutesCheck(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireNavigator(); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	resolution, err := r.navigator.Navigate(path)
	if err != nil {
		return err
	}

	r.writePlain("%s %s\n", ui.Title("Route:"), resolution.Route.Name)
	for name, value := range resolution.Params {
		r.writePlain("  %s = %s\n", name, value)
	}

	if resolution.Allowed {
		r.writePlain("%s\n", ui.OK("Allowed"))
		return nil
	}

	r.writePlain("%s %s\n", ui.Warn("Redirected to"), resolution.RedirectTo)
	return nil
}

// RoutesList prints the route table with each route's guard.
func (r *Runner) RoutesList(ctx context.Context, cmd *cli.Command) error {
	routes := guard.DefaultRoutes()

	r.writePlain("%s\n", ui.Title(fmt.Sprintf("Routes (%d)", len(routes))))
	for _, route := range routes {
		r.writePlain("%-20s %s\n", route.Name, route.Pattern)
	}
	return nil
}
