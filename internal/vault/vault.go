// internal/vault/vault.go
//
// HashiCorp Vault access for configuration secrets.
//
// Context
// -------
//   - Config values of the form "vault:<mount>/<path>#<key>" are resolved
//     against a KV v2 engine before the config is validated, so the Config
//     struct only ever holds plain values.
//   - Client is concurrency-safe, caches reads per path#key, and renews its
//     token in the background until the context passed to New is cancelled.
//   - Lazy defers building the client until the first reference is met, so a
//     deployment without Vault never needs VAULT_ADDR.
//
// Public workflow
// ---------------
//  1. r := vault.NewLazy(ctx, log)                       // during boot.
//  2. cfg, err := config.Load(ctx, config.WithSecretResolver(r))
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// refPrefix matches config.VaultPrefix; duplicated to keep vault free of a
// config import.
const refPrefix = "vault:"

// resolveTTL caches resolved config secrets for the life of a boot.
const resolveTTL = 10 * time.Minute

// ErrNoAddress is returned when a reference is met but VAULT_ADDR is unset.
var ErrNoAddress = errors.New("vault: VAULT_ADDR is not set")

//
// SECTION 1.  Client
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client
	log *zap.Logger

	cacheMu sync.RWMutex
	cache   map[string]cached // path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New builds a client from VAULT_ADDR / VAULT_TOKEN and starts the token
// renewal loop bound to ctx.
func New(ctx context.Context, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{api: apiCli, log: log.Named("vault"), cache: make(map[string]cached)}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches one key from a KV v2 secret.  With ttl > 0 the value is
// cached for that long.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("vault: secret path and key must be non-empty")
	}
	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		cv, ok := c.cache[canonical]
		c.cacheMu.RUnlock()
		if ok && time.Now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("vault: key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault: value at %s is not a string", canonical)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return sval, nil
}

// Resolve implements config.SecretResolver.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	path, key, err := parseRef(ref)
	if err != nil {
		return "", err
	}
	return c.GetKV(ctx, path, key, resolveTTL)
}

//
// SECTION 2.  Lazy resolver
//

// Lazy is a config.SecretResolver that builds its Client on first use.
type Lazy struct {
	ctx context.Context
	log *zap.Logger

	once sync.Once
	cli  *Client
	err  error
}

// NewLazy returns a resolver whose client (and renewal loop) is bound to ctx.
func NewLazy(ctx context.Context, log *zap.Logger) *Lazy {
	return &Lazy{ctx: ctx, log: log}
}

// Resolve builds the client once, then delegates.
func (l *Lazy) Resolve(ctx context.Context, ref string) (string, error) {
	l.once.Do(func() {
		if os.Getenv("VAULT_ADDR") == "" {
			l.err = ErrNoAddress
			return
		}
		l.cli, l.err = New(l.ctx, l.log)
	})
	if l.err != nil {
		return "", l.err
	}
	return l.cli.Resolve(ctx, ref)
}

//
// SECTION 3.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			c.log.Warn("token renew-self failed", zap.Error(err))
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.log.Info("token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{Secret: sec})
		if err != nil {
			c.log.Warn("lifetime watcher init failed", zap.Error(err))
			backoff(ctx, 30*time.Second)
			continue
		}
		c.watch(ctx, watcher)
		backoff(ctx, 15*time.Second)
	}
}

// watch blocks until the watcher stops or ctx is cancelled.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) {
	go w.Start()
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.log.Warn("token renewal stopped", zap.Error(err))
			}
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.log.Debug("token renewed", zap.Int("ttl_seconds", ev.Secret.Auth.LeaseDuration))
			}
		}
	}
}

//
// SECTION 4.  Helpers
//

// parseRef splits "vault:<mount>/<path>#<key>" into its path and key.
func parseRef(ref string) (path, key string, err error) {
	rest, ok := strings.CutPrefix(ref, refPrefix)
	if !ok {
		return "", "", fmt.Errorf("vault: %q is not a vault reference", ref)
	}
	path, key, ok = strings.Cut(rest, "#")
	path = strings.Trim(path, "/")
	if !ok || path == "" || key == "" || !strings.Contains(path, "/") {
		return "", "", fmt.Errorf("vault: reference %q must look like vault:<mount>/<path>#<key>", ref)
	}
	return path, key, nil
}

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
