package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/talentflux/talentflux-api/internal/metrics"
	"github.com/talentflux/talentflux-api/internal/requestinfo"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestTrustedHosts(t *testing.T) {
	mw := TrustedHosts([]string{"localhost", " API.example.com ", "*.talentflux.io", "[::1]"})

	cases := []struct {
		host string
		want int
	}{
		{"localhost", http.StatusOK},
		{"localhost:8000", http.StatusOK},
		{"api.example.com", http.StatusOK},
		{"jobs.talentflux.io", http.StatusOK},
		{"a.b.talentflux.io:443", http.StatusOK},
		{"[::1]:8000", http.StatusOK},
		{"[::1]", http.StatusOK},
		{"talentflux.io", http.StatusBadRequest},
		{"evil.com", http.StatusBadRequest},
		{"", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.host, func(t *testing.T) {
			called := false
			h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				ok(w, r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Host = tc.host
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.want, rr.Code)
			assert.Equal(t, tc.want == http.StatusOK, called)
		})
	}
}

func TestTrustedHosts_RejectEnvelope(t *testing.T) {
	h := TrustedHosts([]string{"localhost"})(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "evil.com"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var env map[string]map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Contains(t, env, "error")
	assert.Equal(t, "http_exception", env["error"]["type"])
	assert.Equal(t, "Invalid host header", env["error"]["message"])
	assert.EqualValues(t, 400, env["error"]["status_code"])
}

func TestTrustedHosts_Wildcard(t *testing.T) {
	h := TrustedHosts([]string{"*"})(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "anything.at.all"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSecurity(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Security(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		for _, kv := range securityDefaults {
			assert.Equal(t, kv[1], rr.Header().Get(kv[0]), kv[0])
		}
	})

	t.Run("handler override wins", func(t *testing.T) {
		h := Security(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(HeaderCSP, "default-src https://cdn.example")
			w.WriteHeader(http.StatusOK)
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/docs", nil))
		assert.Equal(t, "default-src https://cdn.example", rr.Header().Get(HeaderCSP))
		assert.Equal(t, "DENY", rr.Header().Get(HeaderFrame))
	})
}

func TestResponseTime(t *testing.T) {
	for name, h := range map[string]http.Handler{
		"write":    ok,
		"implicit": http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(ResponseTime(h))
			defer srv.Close()

			resp, err := http.Get(srv.URL)
			require.NoError(t, err)
			defer resp.Body.Close()

			v := resp.Header.Get(HeaderProcessTime)
			require.NotEmpty(t, v)
			secs, err := strconv.ParseFloat(v, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, secs, 0.0)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_UnknownOrigin(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	h := requestinfo.Enrich(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))
	req := httptest.NewRequest(http.MethodGet, "/missing?token=secret", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, e.Level)
	fields := e.ContextMap()
	assert.Equal(t, "/missing", fields["path"])
	assert.EqualValues(t, 404, fields["status"])
	assert.Equal(t, true, fields["bot"])
	assert.NotContains(t, fields, "user_agent")
}

func TestMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/jobs/{id}", ok)

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/jobs/{id}", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/42", nil))
	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/jobs/{id}", "200"))

	assert.Equal(t, before+1, after)
	assert.Zero(t, testutil.ToFloat64(metrics.HTTPRequestsInFlight))
}
