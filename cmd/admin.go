package main

import (
	"context"
	"fmt"

	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/ui"
	"github.com/urfave/cli/v3"
)

// requireAdminSession returns the acting admin or an error. The server
// enforces the role again; this check just fails fast with a clear message.
func (r *Runner) requireAdminSession() (*models.User, error) {
	if r.backend == nil {
		return nil, fmt.Errorf("%w: backend client not initialized", shared.ErrMissingConfig)
	}

	current, err := r.requireSession()
	if err != nil {
		return nil, err
	}
	if !current.User.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", shared.ErrForbidden)
	}
	return current.User, nil
}

// AdminUsers lists all user accounts.
func (r *Runner) AdminUsers(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAdminSession(); err != nil {
		return err
	}

	users, err := r.backend.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}

	r.writePlain("%s\n", ui.Title(fmt.Sprintf("Users (%d)", len(users))))
	for _, user := range users {
		line := fmt.Sprintf("%-24s %-30s %s", user.Name, user.Email, user.Role)
		if !user.Active {
			line += " " + ui.Warn("(inactive)")
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// AdminDelete removes a user account.
func (r *Runner) AdminDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAdminSession(); err != nil {
		return err
	}

	userID := cmd.StringArg("user")
	if userID == "" {
		return fmt.Errorf("%w: user id required", shared.ErrMissingArgument)
	}

	if err := r.backend.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	r.writePlain("%s\n", ui.OK("✓ User deleted"))
	return nil
}

// AdminRole changes a user's role.
func (r *Runner) AdminRole(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAdminSession(); err != nil {
		return err
	}

	userID := cmd.StringArg("user")
	role := cmd.StringArg("role")
	if userID == "" || role == "" {
		return fmt.Errorf("%w: user id and role required", shared.ErrMissingArgument)
	}

	if role != models.RoleUser && role != models.RoleAdmin {
		return fmt.Errorf("%w: role must be %q or %q", shared.ErrInvalidArgument, models.RoleUser, models.RoleAdmin)
	}

	if err := r.backend.SetUserRole(ctx, userID, role); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Role set to %s", role)))
	return nil
}

// AdminActivate toggles a user account's active flag.
func (r *Runner) AdminActivate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAdminSession(); err != nil {
		return err
	}

	userID := cmd.StringArg("user")
	if userID == "" {
		return fmt.Errorf("%w: user id required", shared.ErrMissingArgument)
	}

	active := !cmd.Bool("off")
	if err := r.backend.SetUserActive(ctx, userID, active); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if active {
		r.writePlain("%s\n", ui.OK("✓ Account activated"))
	} else {
		r.writePlain("%s\n", ui.OK("✓ Account deactivated"))
	}
	return nil
}
