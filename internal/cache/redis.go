package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/talentflux/talentflux-api/internal/config"
)

// ErrDisabled is returned by Ping when REDIS_URL is empty.
var ErrDisabled = errors.New("cache: redis not configured")

// redisPingTimeout bounds the startup ping.
const redisPingTimeout = 5 * time.Second

// Redis wraps the go-redis client with explicit Init/Close so the lifecycle
// manager owns the connection pool.
type Redis struct {
	url      string
	poolSize int
	required bool
	log      *zap.Logger

	mu     sync.Mutex
	client *redis.Client
}

// NewRedis prepares a client from cfg without dialling.
func NewRedis(cfg *config.Config, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{
		url:      cfg.RedisURL,
		poolSize: cfg.RedisPoolSize,
		required: cfg.RedisRequired,
		log:      log.Named("redis"),
	}
}

// Enabled reports whether REDIS_URL is set.
func (r *Redis) Enabled() bool { return r.url != "" }

// Init parses REDIS_URL, applies the pool size and pings the server.  With
// no URL configured it logs and returns nil.  An unreachable server fails
// Init only when REDIS_REQUIRED is set; otherwise the client stays nil and
// Available reports false.
func (r *Redis) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return nil
	}
	if !r.Enabled() {
		r.log.Info("redis disabled, REDIS_URL is empty")
		return nil
	}

	opts, err := redis.ParseURL(r.url)
	if err != nil {
		return fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = r.poolSize

	client := redis.NewClient(opts)
	pctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		if r.required {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		r.log.Warn("redis unreachable, continuing without it; set REDIS_REQUIRED=true to fail startup",
			zap.String("addr", opts.Addr), zap.Error(err))
		return nil
	}

	r.client = client
	r.log.Info("redis client ready", zap.String("addr", opts.Addr), zap.Int("pool_size", opts.PoolSize))
	return nil
}

// Available reports whether Init left a connected client.
func (r *Redis) Available() bool { return r.Client() != nil }

// Client returns the live client, or nil when disabled or closed.
func (r *Redis) Client() *redis.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client
}

// Ping checks connectivity; used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	c := r.Client()
	if c == nil {
		return ErrDisabled
	}
	return c.Ping(ctx).Err()
}

// Close releases the pool.  Idempotent and nil-safe.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	if err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	r.log.Info("redis client closed")
	return nil
}
