package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tracklist/internal/forms"
	"github.com/desertthunder/tracklist/internal/shared"
)

// UserRegister creates an account, applying the same validation as the web form.
func (r *Runner) UserRegister(ctx context.Context, cmd *cli.Command) error {
	form := forms.Registration{
		Username:  strings.TrimSpace(cmd.StringArg("username")),
		Email:     strings.TrimSpace(cmd.StringArg("email")),
		Password:  cmd.String("password"),
		Password2: cmd.String("password"),
	}
	if form.Username == "" || form.Email == "" {
		return fmt.Errorf("%w: username and email are required", shared.ErrMissingArgument)
	}

	if err := r.open(ctx, cmd); err != nil {
		return err
	}

	v, err := form.Validate(ctx, r.auth)
	if err != nil {
		return err
	}
	if err := v.Err(); err != nil {
		return err
	}

	user, err := r.auth.Register(ctx, form.Username, form.Email, form.Password)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", form.Email, err)
	}

	r.logger.Info("registered user", "username", user.Username(), "id", user.ID())
	return r.writePlain("✓ Registered %s <%s>\n", user.Username(), user.Email())
}

// UserList prints every account.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx, cmd); err != nil {
		return err
	}

	users, err := r.users.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(users, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d users:\n\n", len(users))
	for i, u := range users {
		r.writePlain("%d. %s <%s> (joined %s)\n", i+1, u.Username(), u.Email(), u.CreatedAt().Format(time.DateOnly))
	}
	return nil
}
