package main

import (
	"context"
	"fmt"

	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/session"
	"github.com/filmsage/filmsage/internal/shared"
	"github.com/filmsage/filmsage/internal/ui"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in against the review backend and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: session manager not initialized", shared.ErrMissingConfig)
	}

	credentials := models.Credentials{
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}

	r.logger.Info("signing in", "email", credentials.Email)

	if !r.sessions.Login(ctx, credentials) {
		message := r.sessions.ErrorMessage(session.ErrorKeyLogin)
		r.writePlain("%s\n", ui.Err("✗ "+message))
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, message)
	}

	user := r.sessions.User()
	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Signed in as %s", user.Name)))
	return nil
}

// AuthRegister creates an account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: session manager not initialized", shared.ErrMissingConfig)
	}

	profile := models.RegisterProfile{
		Name:     cmd.String("name"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}

	r.logger.Info("registering account", "email", profile.Email)

	if !r.sessions.Register(ctx, profile) {
		message := r.sessions.ErrorMessage(session.ErrorKeyRegister)
		r.writePlain("%s\n", ui.Err("✗ "+message))
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, message)
	}

	user := r.sessions.User()
	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Account created for %s", user.Name)))
	return nil
}

// AuthLogout clears the stored session and the favorites cache.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: session manager not initialized", shared.ErrMissingConfig)
	}

	r.sessions.Logout()
	r.writePlain("%s\n", ui.OK("✓ Signed out"))
	return nil
}

// AuthStatus prints the restored session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: session manager not initialized", shared.ErrMissingConfig)
	}

	r.sessions.Restore()
	current := r.sessions.Current()

	if !current.Authenticated || current.User == nil {
		r.writePlain("%s\n", ui.Warn("Not signed in"))
		r.writePlain("%s\n", ui.Help("Run 'filmsage auth login --email you@example.com --password ...'"))
		return nil
	}

	r.writePlainHeader("Session")
	r.writePlain("Name:  %s\n", current.User.Name)
	r.writePlain("Email: %s\n", current.User.Email)
	r.writePlain("Role:  %s\n", current.User.Role)
	return nil
}

// AuthProfile applies a partial profile update for the signed-in user.
func (r *Runner) AuthProfile(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	patch := models.UserPatch{}
	if name := cmd.String("name"); name != "" {
		patch.Name = &name
	}
	if email := cmd.String("email"); email != "" {
		patch.Email = &email
	}
	if password := cmd.String("password"); password != "" {
		patch.Password = &password
	}

	if patch.Empty() {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	if !r.sessions.UpdateProfile(ctx, patch) {
		message := r.sessions.ErrorMessage(session.ErrorKeyProfile)
		r.writePlain("%s\n", ui.Err("✗ "+message))
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, message)
	}

	user := r.sessions.User()
	r.writePlain("%s\n", ui.OK(fmt.Sprintf("✓ Profile updated for %s", user.Name)))
	return nil
}
