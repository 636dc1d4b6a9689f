// Command querymanager runs the query manager server: a TCP front end
// that accepts Game/Login/Web role connections, queues their typed
// queries, and executes them against the configured database backend.
// Structure grounded on the teacher's cmd/gameserver/main.go: load config,
// connect storage, run migrations, then start every long-running
// component under one errgroup so a fatal error in any of them cancels
// the rest.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver schema.Migrate opens on Postgres
	"golang.org/x/sync/errgroup"

	"github.com/tibia/querymanager/internal/config"
	"github.com/tibia/querymanager/internal/connio"
	"github.com/tibia/querymanager/internal/dbops"
	"github.com/tibia/querymanager/internal/dbops/mysql"
	"github.com/tibia/querymanager/internal/dbops/pg"
	"github.com/tibia/querymanager/internal/dbops/sqlite"
	"github.com/tibia/querymanager/internal/dispatch"
	"github.com/tibia/querymanager/internal/metrics"
	"github.com/tibia/querymanager/internal/queryqueue"
	"github.com/tibia/querymanager/internal/schema"
	"github.com/tibia/querymanager/internal/session"
	"github.com/tibia/querymanager/internal/worker"
)

const configPathEnv = "QUERYMANAGER_CONFIG"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfgPath := "config/querymanager.yaml"
	if p := os.Getenv(configPathEnv); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.Info("config loaded", "backend", cfg.Backend, "port", cfg.QueryManagerPort)

	driverName, dialect, dsn := backendDSN(cfg)

	slog.Info("running schema migrations")
	if err := schema.Migrate(ctx, driverName, dialect, dsn); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	newSess, newDB, err := backendFactories(ctx, cfg, dsn)
	if err != nil {
		return err
	}

	// A dedicated session backs only the connection engine's Login
	// bootstrap world-name lookup; workers never touch it.
	authSess, err := newSess()
	if err != nil {
		return fmt.Errorf("opening auth session: %w", err)
	}
	defer authSess.Close()
	authDB := newDB(authSess)

	mc := metrics.New()

	queue := queryqueue.New(2 * cfg.MaxConnections)
	mc.SetQueueCapacity(queue.Cap())

	pool := worker.New(worker.Config{
		Threads:     cfg.QueryWorkerThreads,
		MaxAttempts: cfg.QueryMaxAttempts,
		CacheSize:   cfg.MaxCachedStatements,
	}, queue, dispatch.BuildTable(), newSess, newDB)
	pool.SetMetrics(mc)

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}
	slog.Info("worker pool started", "workers", pool.Active())
	mc.SetWorkersTotal(int(pool.Active()))

	connServer := connio.NewServer(connio.Config{
		Port:                  cfg.QueryManagerPort,
		Password:              cfg.QueryManagerPassword,
		MaxConnections:        cfg.MaxConnections,
		MaxConnectionIdleTime: time.Duration(cfg.MaxConnectionIdleTime) * time.Second,
		QueryBufferSize:       cfg.QueryBufferSize,
	}, queue, authDB, mc)

	watcher, err := config.NewWatcher(cfgPath, func(reloaded config.Config) {
		if reloaded.QueryManagerPort != cfg.QueryManagerPort || reloaded.Backend != cfg.Backend {
			slog.Warn("config change requires restart, ignoring", "port", reloaded.QueryManagerPort, "backend", reloaded.Backend)
		}
	})
	if err != nil {
		slog.Warn("config hot-reload disabled", "error", err)
	} else {
		defer watcher.Stop()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return connServer.Run(gctx)
	})

	if cfg.MetricsPort > 0 {
		metricsServer := newMetricsServer(cfg.MetricsPort, mc)
		g.Go(func() error {
			return runMetricsServer(gctx, metricsServer)
		})
	}

	g.Go(func() error {
		reportQueueDepth(gctx, queue, mc)
		return nil
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return err
	}

	pool.Shutdown()
	return nil
}

func backendDSN(cfg config.Config) (driverName, dialect, dsn string) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return "pgx", "postgres", cfg.Postgres.DSN()
	case config.BackendMySQL:
		return "mysql", "mysql", cfg.MySQL.DSN()
	default:
		return "sqlite3", "sqlite3", cfg.SQLite.Path
	}
}

func backendFactories(ctx context.Context, cfg config.Config, dsn string) (func() (session.Session, error), func(session.Session) *dbops.Base, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		newSess := func() (session.Session, error) { return session.NewPGSession(ctx, dsn) }
		newDB := func(s session.Session) *dbops.Base { return pg.New(s.(*session.PGSession)) }
		return newSess, newDB, nil
	case config.BackendMySQL:
		newSess := func() (session.Session, error) { return session.NewMySQLSession(dsn) }
		newDB := func(s session.Session) *dbops.Base { return mysql.New(s.(*session.MySQLSession)) }
		return newSess, newDB, nil
	case config.BackendSQLite:
		newSess := func() (session.Session, error) { return session.NewSQLiteSession(dsn) }
		newDB := func(s session.Session) *dbops.Base { return sqlite.New(s.(*session.SQLiteSession)) }
		return newSess, newDB, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func reportQueueDepth(ctx context.Context, queue *queryqueue.Queue, mc *metrics.Collector) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mc.SetQueueDepth(queue.Len())
		}
	}
}
