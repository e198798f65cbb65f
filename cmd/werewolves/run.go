package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/txwerewolves/wwserver/internal/avatar"
	"github.com/txwerewolves/wwserver/internal/config"
	"github.com/txwerewolves/wwserver/internal/game"
	"github.com/txwerewolves/wwserver/internal/history"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
	"github.com/txwerewolves/wwserver/internal/sshtransport"
	"github.com/txwerewolves/wwserver/internal/termapp"
	"github.com/txwerewolves/wwserver/internal/webapp"
	"github.com/txwerewolves/wwserver/internal/webtransport"
)

func run(ctx context.Context, flags *cliFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(&cfg, flags)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if !cfg.SSH.Enabled && !cfg.Web.Enabled {
		return fmt.Errorf("both transports disabled in config: at least one must run")
	}

	users := registry.NewUserRegistry()
	sessions := registry.NewSessionRegistry()
	bus := signalbus.New(sessions, users)

	wirePeerFactories(users, sessions, bus)

	if cfg.History.DSN != "" {
		closeHistory, err := wireHistory(ctx, cfg.History)
		if err != nil {
			return fmt.Errorf("wiring history archive: %w", err)
		}
		defer closeHistory()
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.SSH.Enabled {
		sshServer, err := sshtransport.NewServer(cfg.SSH, users, sessions, bus)
		if err != nil {
			return fmt.Errorf("creating ssh transport: %w", err)
		}
		g.Go(func() error {
			slog.Info("starting ssh transport", "addr", cfg.SSH.BindAddr)
			return sshServer.Run(gctx)
		})
	}

	if cfg.Web.Enabled {
		webServer := webtransport.NewServer(cfg.Web, users, sessions, bus)
		g.Go(func() error {
			slog.Info("starting web transport", "addr", cfg.Web.BindAddr)
			return webServer.Run(gctx)
		})
	}

	return g.Wait()
}

// applyFlagOverrides layers CLI flags (and, via viper binding in
// config.go, environment variables) on top of the loaded file config.
func applyFlagOverrides(cfg *config.Config, flags *cliFlags) {
	if flags.noSSH {
		cfg.SSH.Enabled = false
	}
	if flags.noWeb {
		cfg.Web.Enabled = false
	}
	if flags.sshEndpoint != "" {
		cfg.SSH.BindAddr = flags.sshEndpoint
	}
	if flags.webEndpoint != "" {
		cfg.Web.BindAddr = flags.webEndpoint
	}
	if flags.sshKeyDir != "" {
		cfg.SSH.HostKeyDir = flags.sshKeyDir
	}
	if flags.userDB != "" {
		cfg.SSH.UserDBPath = flags.userDB
	}
}

// wirePeerFactories closes spec.md §4.7's loop: termapp and webapp each
// declare their own peer-construction hook so neither package imports
// the other; only this entrypoint is allowed to import both.
func wirePeerFactories(users *registry.UserRegistry, sessions *registry.SessionRegistry, bus *signalbus.Bus) {
	termapp.SetPeerFactory(func(t *termapp.App, target avatar.Kind) (avatar.Application, error) {
		if target != avatar.WebKind {
			return nil, fmt.Errorf("terminal application cannot produce a %s peer", target)
		}
		return webapp.NewFromTerminal(t.UserID(), t.LobbyToken(), t.SessionID(), t.Game(), users, sessions, bus), nil
	})
	webapp.SetPeerFactory(func(w *webapp.App, target avatar.Kind) (avatar.Application, error) {
		if target != avatar.TerminalKind {
			return nil, fmt.Errorf("web application cannot produce a %s peer", target)
		}
		return termapp.NewFromWeb(w.UserID(), nil, w.LobbyToken(), w.SessionID(), w.Game(), users, sessions, bus), nil
	})
}

// wireHistory connects to the optional Postgres archive, runs pending
// migrations, and installs the archival hook both App packages call when
// a game reaches Endgame. Returns a function closing the pool.
func wireHistory(ctx context.Context, cfg config.HistoryConfig) (func(), error) {
	db, err := history.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MigrationsOnUp {
		if err := history.RunMigrations(ctx, cfg.DSN); err != nil {
			db.Close()
			return nil, err
		}
	}
	repo := history.NewPostgresRepository(db)

	record := func(sessionID string, g *game.Game) {
		results, err := g.PostGameResults()
		if err != nil {
			slog.Error("reading post-game results for archival", "session", sessionID, "err", err)
			return
		}
		if err := repo.RecordResult(context.Background(), sessionID, results); err != nil {
			slog.Error("archiving game result", "session", sessionID, "err", err)
		}
	}
	termapp.SetHistoryRecorder(record)
	webapp.SetHistoryRecorder(record)

	slog.Info("game history archive enabled")
	return db.Close, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
