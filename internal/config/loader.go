// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` from five layers (highest
precedence last):

  1. Built-in defaults (see defaults.go).
  2. Optional YAML file named by `CONFIG_FILE` or `WithFile`.  Lists may be
     written natively here.
  3. Optional dotenv file, `.env` unless `ENV_FILE` or `WithEnvFile` says
     otherwise.  A missing file is not an error.
  4. Process environment.  `SECRET_KEY → secret_key`; empty values count
     as unset so `FOO=` never clobbers a default.
  5. Caller overrides (`WithOverrides`), used by tools and tests.

Any string value of the form `vault:<mount>/<path>#<key>` is then resolved
through the configured SecretResolver.  The tree is unmarshalled with
mapstructure hooks that split comma-separated strings into lists and
parse durations, list elements are trimmed, and the struct is validated.

Every failure (missing required value, unparsable number, bad Vault
reference, failed rule) is collected into a single *Error.

Instrumentation
---------------
  • DEBUG lines for each optional layer that was found.
  • Logs use the global logger (`zap.L()`), a no-op until cmd/api has
    built the real one, since the logger itself depends on Config.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// VaultPrefix marks a value that must be fetched from Vault.
const VaultPrefix = "vault:"

// SecretResolver turns a "vault:..." reference into its plain value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

/*──────────────────────────── options ─────────────────────────────────────*/

type options struct {
	envFile   string
	yamlFile  string
	overrides map[string]any
	resolver  SecretResolver
	ignoreEnv bool
}

// Option customises Load.
type Option func(*options)

// WithEnvFile sets the dotenv path.  An empty path disables the layer.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithFile sets the optional YAML file.
func WithFile(path string) Option {
	return func(o *options) { o.yamlFile = path }
}

// WithOverrides layers m on top of everything else.  Keys may be given in
// env-var form ("SECRET_KEY") or koanf form ("secret_key").
func WithOverrides(m map[string]any) Option {
	return func(o *options) {
		if o.overrides == nil {
			o.overrides = make(map[string]any, len(m))
		}
		for k, val := range m {
			o.overrides[strings.ToLower(k)] = val
		}
	}
}

// WithSecretResolver enables "vault:" references.
func WithSecretResolver(r SecretResolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithoutEnvironment skips the process environment layer.
func WithoutEnvironment() Option {
	return func(o *options) { o.ignoreEnv = true }
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load merges every layer, validates, and returns the Config.  The returned
// error is a *Error when the configuration itself is at fault.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	o := options{envFile: ".env"}
	if p := os.Getenv("ENV_FILE"); p != "" {
		o.envFile = p
	}
	o.yamlFile = os.Getenv("CONFIG_FILE")
	for _, fn := range opts {
		fn(&o)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if o.yamlFile != "" {
		if err := k.Load(file.Provider(o.yamlFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", o.yamlFile, err)
		}
		zap.L().Debug("config yaml loaded", zap.String("file", o.yamlFile))
	}

	if o.envFile != "" {
		dot, err := readDotenv(o.envFile)
		if err != nil {
			return nil, err
		}
		if len(dot) > 0 {
			if err := k.Load(confmap.Provider(dot, "."), nil); err != nil {
				return nil, fmt.Errorf("config dotenv: %w", err)
			}
			zap.L().Debug("config dotenv loaded", zap.String("file", o.envFile), zap.Int("keys", len(dot)))
		}
	}

	if !o.ignoreEnv {
		if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
			return nil, fmt.Errorf("config env overlay: %w", err)
		}
	}

	if len(o.overrides) > 0 {
		if err := k.Load(confmap.Provider(o.overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("config overrides: %w", err)
		}
	}

	cerr := &Error{}

	if err := resolveSecrets(ctx, k, o.resolver, cerr); err != nil {
		return nil, err
	}

	cfg, err := unmarshal(k, cerr)
	if err != nil {
		return nil, err
	}

	cfg.AllowedOrigins = normalizeList(cfg.AllowedOrigins)
	cfg.AllowedHosts = normalizeList(cfg.AllowedHosts)
	cfg.AllowedFileTypes = normalizeList(cfg.AllowedFileTypes)

	problems, err := validateStruct(cfg)
	if err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	for _, p := range problems {
		// A field that failed to decode is already reported; its zero value
		// would only add a second, misleading rule failure.
		if !cerr.Has(p.Field) {
			cerr.Fields = append(cerr.Fields, p)
		}
	}

	if err := cerr.orNil(); err != nil {
		return nil, err
	}

	zap.L().Info("config loaded",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.Addr()),
		zap.Bool("tracing", cfg.EnableTracing),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)
	return cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// envKey maps SECRET_KEY → secret_key and drops empty values.
func envKey(key, value string) (string, any) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return strings.ToLower(key), value
}

func readDotenv(path string) (map[string]any, error) {
	raw, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config dotenv %s: %w", path, err)
	}
	out := make(map[string]any, len(raw))
	for key, val := range raw {
		if strings.TrimSpace(val) == "" {
			continue
		}
		out[strings.ToLower(key)] = val
	}
	return out, nil
}

// resolveSecrets swaps every "vault:" value for its secret.  Failures are
// recorded per field; only an overlay failure is returned.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, r SecretResolver, cerr *Error) error {
	known := knownKeys()
	resolved := map[string]any{}
	for key, val := range k.All() {
		if _, ok := known[key]; !ok {
			continue
		}
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, VaultPrefix) {
			continue
		}
		field := strings.ToUpper(key)
		if r == nil {
			cerr.add(field, "references Vault but no secret resolver is configured")
			continue
		}
		plain, err := r.Resolve(ctx, s)
		if err != nil {
			cerr.add(field, "could not be resolved from Vault: "+err.Error())
			continue
		}
		resolved[key] = plain
	}
	if len(resolved) == 0 {
		return nil
	}
	if err := k.Load(confmap.Provider(resolved, "."), nil); err != nil {
		return fmt.Errorf("config vault overlay: %w", err)
	}
	return nil
}

// knownKeys lists the koanf keys Config understands, so unrelated process
// environment never reaches the Vault resolver.
func knownKeys() map[string]struct{} {
	t := reflect.TypeOf(Config{})
	out := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("koanf"); tag != "" && tag != "-" {
			out[tag] = struct{}{}
		}
	}
	return out
}

func unmarshal(k *koanf.Koanf, cerr *Error) (*Config, error) {
	var cfg Config
	dc := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           &cfg,
		WeaklyTypedInput: true,
		TagName:          "koanf",
	}
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", DecoderConfig: dc})
	if err == nil {
		return &cfg, nil
	}

	var merr *mapstructure.Error
	if !errors.As(err, &merr) {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}
	for _, msg := range merr.Errors {
		field, detail := splitDecodeError(msg)
		cerr.add(field, detail)
	}
	return &cfg, nil
}

// splitDecodeError pulls the quoted key out of a mapstructure message such
// as "cannot parse 'port' as int: ..." and returns ("PORT", message).
func splitDecodeError(msg string) (string, string) {
	open := strings.IndexByte(msg, '\'')
	if open == -1 {
		return "CONFIG", msg
	}
	end := strings.IndexByte(msg[open+1:], '\'')
	if end == -1 {
		return "CONFIG", msg
	}
	name := msg[open+1 : open+1+end]
	if i := strings.IndexByte(name, '['); i != -1 {
		name = name[:i]
	}
	return strings.ToUpper(name), msg
}

// normalizeList trims every element and drops empties, so "a, b," and
// ["a", " b"] both become ["a", "b"].
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
