package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"authgate/config"
	"authgate/internal/domain/lifecycle"
	"authgate/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// pool owns the *sql.DB under GORM for the lifetime of the process.
type pool struct {
	sqlDB         *sql.DB
	migrate       bool
	logger        *slog.Logger
	cancelMonitor context.CancelFunc
}

// New opens the PostgreSQL pool. On start it pings, applies the embedded
// migrations when storage.migrate is set, and begins watching pool waits.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Every repository write is a single statement.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	p := &pool{
		sqlDB:   sqlDB,
		migrate: params.Config.Storage.Migrate,
		logger:  params.Logger.With(slog.String("component", "postgres")),
	}
	params.Append(fx.Hook{
		OnStart: p.start,
		OnStop:  p.stop,
	})

	return db, nil
}

func (p *pool) start(startCtx context.Context) error {
	ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
	defer cancel()

	if err := p.sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping PostgreSQL")
	}

	if p.migrate {
		if err := RunMigrations(ctx, p.sqlDB); err != nil {
			return err
		}
		p.logger.Info("Users schema is up to date")
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())
	p.cancelMonitor = cancelMonitor
	go p.monitor(monitorCtx, dbPoolMonitorInterval)

	return nil
}

func (p *pool) stop(_ context.Context) error {
	if p.cancelMonitor != nil {
		p.cancelMonitor()
	}

	return errors.WithStack(p.sqlDB.Close())
}

// monitor reports when requests had to wait for a connection. Every login
// holds a connection only for one indexed lookup, so waits point at pool
// sizing rather than slow queries.
func (p *pool) monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := p.sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := p.sqlDB.Stats()
			p.reportWaits(ctx, prev, cur)
			prev = cur
		}
	}
}

func (p *pool) reportWaits(ctx context.Context, prev, cur sql.DBStats) {
	waits := cur.WaitCount - prev.WaitCount
	if waits <= 0 {
		return
	}
	waited := cur.WaitDuration - prev.WaitDuration

	level := slog.LevelDebug
	if waited >= dbPoolWarnDurationThreshold {
		level = slog.LevelWarn
	}

	p.logger.LogAttrs(ctx, level, "Connection pool wait",
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avgWait", waited/time.Duration(waits)),
		slog.Int("maxOpenConns", cur.MaxOpenConnections),
		slog.Int("openConns", cur.OpenConnections),
		slog.Int("inUseConns", cur.InUse),
		slog.Int("idleConns", cur.Idle),
	)
}
