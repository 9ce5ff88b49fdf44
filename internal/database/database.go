// Package database owns the process-wide sqlx pool.
//
// DATABASE_URL selects the driver by scheme:
//
//	postgres://…, postgresql://…, postgresql+asyncpg://…  → lib/pq
//	mysql://…                                           → go-sql-driver/mysql
//
// The pool is opened once by Init during startup and released once by Close
// during shutdown.  Both are driven by the lifecycle manager; handlers reach
// the pool through DB().
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/talentflux/talentflux-api/internal/config"
)

// ErrNotInitialised is returned by Ping before Init has succeeded.
var ErrNotInitialised = errors.New("database: pool not initialised")

// connMaxLifetime recycles connections so a failover behind the DSN host is
// picked up without a restart.
const connMaxLifetime = 30 * time.Minute

// Pool wraps *sqlx.DB with explicit Init/Close.  Safe for concurrent use
// after Init returns.
type Pool struct {
	url      string
	maxOpen  int
	maxIdle  int
	pingWait time.Duration
	log      *zap.Logger

	open func(driver, dsn string) (*sqlx.DB, error)

	mu sync.Mutex
	db *sqlx.DB
}

// New prepares a pool from cfg without touching the network.
func New(cfg *config.Config, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		url:      cfg.DatabaseURL,
		maxOpen:  cfg.DatabasePoolSize + cfg.DatabaseMaxOverflow,
		maxIdle:  cfg.DatabasePoolSize,
		pingWait: time.Duration(cfg.DatabasePoolTimeout) * time.Second,
		log:      log.Named("database"),
		open:     sqlx.Open,
	}
}

// Init opens the pool and pings it, bounded by DATABASE_POOL_TIMEOUT.
// Calling Init on an initialised pool is a no-op.
func (p *Pool) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return nil
	}

	driver, dsn, err := DSN(p.url)
	if err != nil {
		return err
	}
	db, err := p.open(driver, dsn)
	if err != nil {
		return fmt.Errorf("database: open: %w", err)
	}
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	pctx, cancel := context.WithTimeout(ctx, p.pingWait)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("database: ping: %w", err)
	}

	p.db = db
	p.log.Info("database pool ready",
		zap.String("driver", driver),
		zap.Int("max_open", p.maxOpen),
		zap.Int("max_idle", p.maxIdle),
	)
	return nil
}

// Close releases the pool.  It is idempotent and safe on a nil *Pool.
func (p *Pool) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	if err != nil {
		return fmt.Errorf("database: close: %w", err)
	}
	p.log.Info("database pool closed")
	return nil
}

// DB returns the live pool, or nil before Init / after Close.
func (p *Pool) DB() *sqlx.DB {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db
}

// Ping checks connectivity; used by the readiness probe.
func (p *Pool) Ping(ctx context.Context) error {
	db := p.DB()
	if db == nil {
		return ErrNotInitialised
	}
	return db.PingContext(ctx)
}

// DSN maps a DATABASE_URL onto a registered driver name and the DSN that
// driver expects.
func DSN(raw string) (driver, dsn string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("database: parse url: %w", err)
	}

	scheme, _, _ := strings.Cut(strings.ToLower(u.Scheme), "+")
	switch scheme {
	case "postgres", "postgresql":
		u.Scheme = "postgres"
		return "postgres", u.String(), nil

	case "mysql":
		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = u.Host
		mc.DBName = strings.TrimPrefix(u.Path, "/")
		mc.ParseTime = true
		if u.User != nil {
			mc.User = u.User.Username()
			mc.Passwd, _ = u.User.Password()
		}
		if q := u.Query(); len(q) > 0 {
			mc.Params = make(map[string]string, len(q))
			for k := range q {
				mc.Params[k] = q.Get(k)
			}
		}
		return "mysql", mc.FormatDSN(), nil
	}
	return "", "", fmt.Errorf("database: unsupported scheme %q", u.Scheme)
}
