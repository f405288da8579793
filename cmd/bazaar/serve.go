package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bazaar/internal/api"
	"bazaar/internal/config"
	"bazaar/internal/http/handlers"
	applog "bazaar/internal/log"
	"bazaar/internal/poll"
	"bazaar/internal/repos"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront web server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			l := applog.Logger()
			l.Warn().Err(err).Str("log_file", cfg.LogFile).Msg("could not open log file")
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Setup(out, cfg.LogLevel)
	l := applog.Logger()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer db.Close()
	sessions := repos.NewSessionRepo(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := poll.NewHub(ctx)
	defer hub.CloseAll()

	deps := handlers.NewDeps(api.New(cfg.BackendURL, cfg.BackendTimeout), sessions, hub, handlers.Options{
		PollInterval: cfg.PollInterval,
		SecureCookie: cfg.CookieSecure,
	})
	app := handlers.NewApp(deps, handlers.DefaultLimits)

	go purgeSessions(ctx, sessions, time.Hour)

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(":" + cfg.Port) }()
	l.Info().Str("action", "server.start").Str("port", cfg.Port).Str("backend_url", cfg.BackendURL).Msg("listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	l.Info().Str("action", "server.stop").Msg("shutting down")
	hub.CloseAll()
	return app.ShutdownWithTimeout(10 * time.Second)
}

// purgeSessions drops expired browser sessions on a fixed schedule.
func purgeSessions(ctx context.Context, sessions *repos.SessionRepo, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := sessions.PurgeExpired(now)
			l := applog.Logger()
			if err != nil {
				l.Error().Err(err).Str("action", "session.purge.fail").Send()
				continue
			}
			if n > 0 {
				l.Info().Str("action", "session.purge").Int64("removed", n).Send()
			}
		}
	}
}
