package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tracklist/internal/auth"
	"github.com/desertthunder/tracklist/internal/server"
)

// Serve runs the HTTP server until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx, cmd); err != nil {
		return err
	}

	sessions, err := auth.NewSessions(r.config.Session)
	if err != nil {
		return fmt.Errorf("failed to configure sessions: %w", err)
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	srv := server.New(cfg, server.Deps{
		Auth:      r.auth,
		Sessions:  sessions,
		Playlists: r.playlists,
		Metadata:  r.metadata,
		Logger:    r.logger,
	})

	r.writePlain("Serving on http://%s\n", srv.Addr())
	return srv.ListenAndServe(ctx)
}
