package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func ingestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "ingest",
		Usage:  "Scrape the listing page, store upcoming concerts, and recompute matches",
		Flags:  []cli.Flag{configFlag()},
		Action: r.RunIngest,
	}
}

func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "match",
		Usage:  "Recompute concert matches for every user",
		Flags:  []cli.Flag{configFlag()},
		Action: r.RunMatch,
	}
}

func digestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "digest",
		Usage: "Send digest emails to subscribed users",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Digest mode (daily or weekly)",
				Value:   models.DigestWeekly,
			},
		},
		Action: r.RunDigest,
	}
}

func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync a user's liked-track artists from Spotify",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User ID to sync",
			},
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "Spotify access token (falls back to the stored refresh token)",
			},
		},
		Action: r.RunSync,
	}
}

// RunIngest executes the ingest stage and prints its result.
func (r *Runner) RunIngest(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))
	engine, _, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return r.writeJSON(result, true)
}

// RunMatch recomputes matches for all users and prints the edge count.
func (r *Runner) RunMatch(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))
	engine, _, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := engine.MatchAll(ctx)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}
	return r.writeJSON(map[string]int{"count": count}, true)
}

// RunDigest sends digest emails in the requested mode.
func (r *Runner) RunDigest(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if r.mailer == nil {
		return fmt.Errorf("%w: mail api key and sender are required for digests", shared.ErrMissingCredentials)
	}

	engine, _, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.SendDigests(ctx, cmd.String("mode"))
	if err != nil {
		return fmt.Errorf("digest failed: %w", err)
	}
	return r.writeJSON(result, true)
}

// RunSync pulls a user's liked-track artists and recomputes their matches.
func (r *Runner) RunSync(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	userID := cmd.String("user")
	if userID == "" {
		return fmt.Errorf("%w: --user is required", shared.ErrMissingArgument)
	}
	if r.spotify == nil {
		return fmt.Errorf("%w: spotify client id and secret are required to sync", shared.ErrMissingCredentials)
	}

	engine, _, db, err := r.openEngine(config)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.SyncUser(ctx, userID, cmd.String("token"))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return r.writeJSON(result, true)
}
