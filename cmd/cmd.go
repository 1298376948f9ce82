// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles local setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the local database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your FilmSage account and session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name (at least 3 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password (at least 6 characters)",
						Required: true,
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Action: r.AuthStatus,
			},
			{
				Name:  "profile",
				Usage: "Update the signed-in user's profile",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New display name",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "New email",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "New password",
					},
				},
				Action: r.AuthProfile,
			},
		},
	}
}

// searchCommand handles TMDB catalog lookups
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "movies",
				Usage: "Search movies by title, optionally merged with person matches",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "people",
						Usage: "Include movies featuring a matching actor or director",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SearchMovies,
			},
			{
				Name:  "suggest",
				Usage: "Autocomplete suggestions for a partial query",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum suggestions",
						Value: 5,
					},
				},
				Action: r.SearchSuggest,
			},
			{
				Name:  "details",
				Usage: "Show a movie with cast, crew, and similar titles",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the title's TMDB page in the browser",
					},
				},
				Action: r.MovieDetails,
			},
			{
				Name:   "trending",
				Usage:  "This week's trending movies",
				Action: r.SearchTrending,
			},
			{
				Name:  "popular",
				Usage: "Popular movies",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page",
						Value: 1,
					},
				},
				Action: r.SearchPopular,
			},
			{
				Name:   "genres",
				Usage:  "List movie genres",
				Action: r.SearchGenres,
			},
		},
	}
}

// favoritesCommand handles the local favorites cache and its server sync
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage your favorites collection",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a title to favorites",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (movie or tv)",
						Value: "movie",
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Display title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "poster",
						Usage: "Poster path",
					},
				},
				Action: r.FavoritesAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a title from favorites",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (movie or tv)",
						Value: "movie",
					},
				},
				Action: r.FavoritesRemove,
			},
			{
				Name:  "list",
				Usage: "List cached favorites",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by content type",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.FavoritesList,
			},
			{
				Name:  "sync",
				Usage: "Reconcile the local cache with the server",
				Commands: []*cli.Command{
					{
						Name:   "run",
						Usage:  "Push local-only entries, then adopt the server collection",
						Action: r.FavoritesSyncRun,
					},
					{
						Name:   "pull",
						Usage:  "Replace the local cache with the server collection",
						Action: r.FavoritesSyncPull,
					},
					{
						Name:   "diff",
						Usage:  "Show differences without changing either side",
						Action: r.FavoritesSyncDiff,
					},
				},
			},
			{
				Name:  "export",
				Usage: "Export favorites to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: json, csv, markdown, txt",
						Value: "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.BoolFlag{
						Name:  "posters",
						Usage: "Download poster art (markdown only)",
					},
				},
				Action: r.FavoritesExport,
			},
		},
	}
}

// watchlistCommand handles the server-side watchlist
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watchlist",
		Usage: "Manage your watchlist",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a title to the watchlist",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (movie or tv)",
						Value: "movie",
					},
				},
				Action: r.WatchlistAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a title from the watchlist",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (movie or tv)",
						Value: "movie",
					},
				},
				Action: r.WatchlistRemove,
			},
			{
				Name:   "list",
				Usage:  "List the watchlist",
				Action: r.WatchlistList,
			},
		},
	}
}

// socialCommand handles follow relationships between users
func socialCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "social",
		Usage: "Follow other reviewers",
		Commands: []*cli.Command{
			{
				Name:  "follow",
				Usage: "Follow a user",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "user",
					},
				},
				Action: r.SocialFollow,
			},
			{
				Name:  "unfollow",
				Usage: "Stop following a user",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "user",
					},
				},
				Action: r.SocialUnfollow,
			},
			{
				Name:   "following",
				Usage:  "List the users you follow",
				Action: r.SocialFollowing,
			},
		},
	}
}

// reviewCommand handles review submission and listing
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: "Write and browse reviews",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Submit a review for a title",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (movie or tv)",
						Value: "movie",
					},
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Review title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "content",
						Usage:    "Review body",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "rating",
						Usage:    "Rating from 1 to 10",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "spoiler",
						Usage: "Mark the review as containing spoilers",
					},
					&cli.BoolFlag{
						Name:  "critic",
						Usage: "Mark the review as a critic review",
					},
				},
				Action: r.ReviewCreate,
			},
			{
				Name:  "rate",
				Usage: "Submit a standalone 1-10 rating without review text",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "TMDB id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Content type (movie or tv)",
						Value: "movie",
					},
					&cli.IntFlag{
						Name:     "rating",
						Usage:    "Rating from 1 to 10",
						Required: true,
					},
				},
				Action: r.ReviewRate,
			},
			{
				Name:  "list",
				Usage: "List a user's reviews (defaults to the signed-in user)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "user",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ReviewList,
			},
		},
	}
}

// adminCommand handles user administration (admin role required server-side)
func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Administer user accounts",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "List all user accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AdminUsers,
			},
			{
				Name:  "delete",
				Usage: "Delete a user account",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "user",
					},
				},
				Action: r.AdminDelete,
			},
			{
				Name:  "role",
				Usage: "Change a user's role",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "user",
					},
					&cli.StringArg{
						Name: "role",
					},
				},
				Action: r.AdminRole,
			},
			{
				Name:  "activate",
				Usage: "Activate or deactivate a user account",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "user",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "off",
						Usage: "Deactivate instead of activate",
					},
				},
				Action: r.AdminActivate,
			},
		},
	}
}

// routesCommand evaluates navigation guards against the current session
func routesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "Inspect navigation guards",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Check whether the current session may enter a path",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Action: r.RoutesCheck,
			},
			{
				Name:   "list",
				Usage:  "List the route table",
				Action: r.RoutesList,
			},
		},
	}
}
