package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func required() map[string]any {
	return map[string]any{
		"SECRET_KEY":   "s3cret",
		"DATABASE_URL": "postgres://app:pw@localhost:5432/talentflux",
	}
}

func merge(maps ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// loadIsolated ignores the process environment and any stray .env file.
func loadIsolated(t *testing.T, overrides map[string]any, opts ...Option) (*Config, error) {
	t.Helper()
	base := []Option{WithoutEnvironment(), WithEnvFile(""), WithFile(""), WithOverrides(overrides)}
	return Load(context.Background(), append(base, opts...)...)
}

func TestLoad_DefaultsWithRequiredOnly(t *testing.T) {
	cfg, err := loadIsolated(t, required())
	require.NoError(t, err)

	assert.Equal(t, "TalentFlux API", cfg.AppName)
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 30, cfg.AccessTokenExpireMinutes)
	assert.Equal(t, 7, cfg.RefreshTokenExpireDays)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.talentflux.com"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"localhost", "127.0.0.1", "app.talentflux.com"}, cfg.AllowedHosts)
	assert.Equal(t, 20, cfg.DatabasePoolSize)
	assert.Equal(t, 30, cfg.DatabaseMaxOverflow)
	assert.Equal(t, 30, cfg.DatabasePoolTimeout)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.False(t, cfg.RedisRequired)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.InDelta(t, 0.1, cfg.Temperature, 1e-9)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.SMTPTLS)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.EnableTracing)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, []string{".pdf", ".doc", ".docx", ".txt"}, cfg.AllowedFileTypes)
	assert.Equal(t, 2555, cfg.DataRetentionDays)
	assert.True(t, cfg.FeatureAIMatching)
	assert.True(t, cfg.FeatureDEIAnalytics)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		input   map[string]any
		missing []string
	}{
		{"both missing", map[string]any{}, []string{"DATABASE_URL", "SECRET_KEY"}},
		{"secret missing", map[string]any{"DATABASE_URL": "postgres://x"}, []string{"SECRET_KEY"}},
		{"database missing", map[string]any{"SECRET_KEY": "k"}, []string{"DATABASE_URL"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadIsolated(t, tc.input)
			require.Error(t, err)

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tc.missing, cerr.FieldNames())
			for _, f := range tc.missing {
				assert.Contains(t, err.Error(), f)
			}
		})
	}
}

func TestLoad_ListFieldsFromCSVMatchNativeList(t *testing.T) {
	csv, err := loadIsolated(t, merge(required(), map[string]any{
		"ALLOWED_ORIGINS":    " http://a.example ,https://b.example,  ",
		"ALLOWED_HOSTS":      "api.example.com , localhost",
		"ALLOWED_FILE_TYPES": ".pdf,  .rtf",
	}))
	require.NoError(t, err)

	native, err := loadIsolated(t, merge(required(), map[string]any{
		"ALLOWED_ORIGINS":    []any{"http://a.example", " https://b.example"},
		"ALLOWED_HOSTS":      []string{"api.example.com", "localhost "},
		"ALLOWED_FILE_TYPES": []string{".pdf", ".rtf"},
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"http://a.example", "https://b.example"}, csv.AllowedOrigins)
	assert.Equal(t, native.AllowedOrigins, csv.AllowedOrigins)
	assert.Equal(t, native.AllowedHosts, csv.AllowedHosts)
	assert.Equal(t, native.AllowedFileTypes, csv.AllowedFileTypes)
}

func TestLoad_EnvironmentLayer(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("DATABASE_URL", "mysql://u:p@db:3306/app")
	t.Setenv("DEBUG", "true")
	t.Setenv("PORT", "9090")
	t.Setenv("WORKERS", "") // empty counts as unset
	t.Setenv("ALLOWED_HOSTS", "a.example, b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load(context.Background(), WithEnvFile(""), WithFile(""))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.AllowedHosts)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_MalformedValuesReportedOnce(t *testing.T) {
	_, err := loadIsolated(t, merge(required(), map[string]any{
		"PORT":       "abc",
		"LOG_FORMAT": "xml",
	}))
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, []string{"LOG_FORMAT", "PORT"}, cerr.FieldNames())

	n := 0
	for _, f := range cerr.Fields {
		if f.Field == "PORT" {
			n++
		}
	}
	assert.Equal(t, 1, n, "PORT should be reported once: %v", cerr.Fields)
}

func TestLoad_RuleViolations(t *testing.T) {
	_, err := loadIsolated(t, merge(required(), map[string]any{
		"PORT":              70000,
		"ALLOWED_HOSTS":     " , ",
		"DEFAULT_PAGE_SIZE": 500,
	}))
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	assert.True(t, cerr.Has("PORT"))
	assert.True(t, cerr.Has("ALLOWED_HOSTS"))
	assert.True(t, cerr.Has("DEFAULT_PAGE_SIZE"))
}

func TestLoad_FileLayers(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
environment: staging
allowed_origins:
  - https://one.example
  - " https://two.example "
port: 7000
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"SECRET_KEY=dotenv-secret\nDATABASE_URL=postgres://dotenv\nPORT=7100\nLOG_LEVEL=\n"), 0o600))

	cfg, err := Load(context.Background(),
		WithoutEnvironment(),
		WithFile(yamlPath),
		WithEnvFile(envPath),
		WithOverrides(map[string]any{"PORT": 7200}),
	)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, []string{"https://one.example", "https://two.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "dotenv-secret", cfg.SecretKey)
	assert.Equal(t, "INFO", cfg.LogLevel, "empty dotenv value must not clobber the default")
	assert.Equal(t, 7200, cfg.Port, "overrides beat dotenv, dotenv beats yaml")
}

func TestLoad_MissingEnvFileIsNotAnError(t *testing.T) {
	_, err := Load(context.Background(),
		WithoutEnvironment(),
		WithEnvFile(filepath.Join(t.TempDir(), "nope.env")),
		WithOverrides(required()),
	)
	require.NoError(t, err)
}

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	if v, ok := f[ref]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestLoad_VaultReferences(t *testing.T) {
	in := merge(required(), map[string]any{
		"SECRET_KEY":    "vault:secret/talentflux#secret_key",
		"SMTP_PASSWORD": "vault:secret/talentflux#smtp",
	})

	t.Run("resolved", func(t *testing.T) {
		cfg, err := loadIsolated(t, in, WithSecretResolver(fakeResolver{
			"vault:secret/talentflux#secret_key": "plain-key",
			"vault:secret/talentflux#smtp":       "smtp-pw",
		}))
		require.NoError(t, err)
		assert.Equal(t, "plain-key", cfg.SecretKey)
		assert.Equal(t, "smtp-pw", cfg.SMTPPassword)
	})

	t.Run("unresolvable", func(t *testing.T) {
		_, err := loadIsolated(t, in, WithSecretResolver(fakeResolver{}))
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, []string{"SECRET_KEY", "SMTP_PASSWORD"}, cerr.FieldNames())
	})

	t.Run("no resolver", func(t *testing.T) {
		_, err := loadIsolated(t, in)
		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.True(t, cerr.Has("SECRET_KEY"))
	})
}

func TestEnvironmentPredicates(t *testing.T) {
	cases := []struct {
		env  string
		dev  bool
		prod bool
		test bool
		docs bool
	}{
		{"development", true, false, false, true},
		{"DEV", true, false, false, true},
		{"production", false, true, false, false},
		{"Prod", false, true, false, false},
		{"testing", false, false, true, true},
		{"test", false, false, true, true},
		{"staging", false, false, false, true},
	}
	for _, tc := range cases {
		c := &Config{Environment: tc.env}
		assert.Equal(t, tc.dev, c.IsDevelopment(), tc.env)
		assert.Equal(t, tc.prod, c.IsProduction(), tc.env)
		assert.Equal(t, tc.test, c.IsTesting(), tc.env)
		assert.Equal(t, tc.docs, c.DocsEnabled(), tc.env)
	}
}

func TestCurrentTimestamp(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	ts, err := time.Parse(time.RFC3339Nano, (&Config{}).CurrentTimestamp())
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
	assert.False(t, ts.Before(before))
}
