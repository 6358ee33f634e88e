package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/encore/internal/server"
	"github.com/desertthunder/encore/internal/shared"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server (dashboard API, OAuth, and cron endpoints)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Serve,
	}
}

// Serve runs the HTTP server until the process is interrupted, then drains
// in-flight requests.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if r.spotify == nil {
		return fmt.Errorf("%w: spotify client id and secret are required to serve", shared.ErrMissingCredentials)
	}

	engine, repos, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(server.Opts{
		Engine:   engine,
		Profiles: repos.Profiles,
		Cities:   repos.Cities,
		Spotify:  r.spotify,
		Config:   config,
		Logger:   r.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
