// internal/app/app.go
//
// HTTP application factory.
//
// Context
// -------
//   - New assembles the middleware chain, the service endpoints, and the
//     mounted v1 router into one http.Handler.  It performs no I/O; pools
//     are owned by the lifecycle manager and reach handlers through
//     readiness checks or the v1 router's own dependencies.
//   - Middleware wraps in registration order, outermost first:
//       request ID → request info → trusted hosts → CORS → security headers
//       → X-Process-Time → access log → metrics → tracing → recover
//   - Host validation therefore runs before CORS (which answers preflights
//     itself), logging, metrics, and every route handler.
package app

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/talentflux/talentflux-api/internal/api"
	v1 "github.com/talentflux/talentflux-api/internal/api/v1"
	"github.com/talentflux/talentflux-api/internal/config"
	"github.com/talentflux/talentflux-api/internal/middleware"
	"github.com/talentflux/talentflux-api/internal/requestinfo"
)

// ReadinessCheck reports whether one dependency can serve traffic.
type ReadinessCheck func(context.Context) error

type options struct {
	apiRouter http.Handler
	checks    []namedCheck
	log       *zap.Logger
}

type namedCheck struct {
	name string
	fn   ReadinessCheck
}

// Option customises New.
type Option func(*options)

// WithAPIRouter replaces the default v1 router mounted at /api/v1.
func WithAPIRouter(h http.Handler) Option {
	return func(o *options) { o.apiRouter = h }
}

// WithReadinessCheck adds a probe consulted by /health/ready.
func WithReadinessCheck(name string, fn ReadinessCheck) Option {
	return func(o *options) { o.checks = append(o.checks, namedCheck{name, fn}) }
}

// WithLogger sets the access-log destination.  Defaults to zap.L().
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// New returns the ready-to-serve application handler.
func New(cfg *config.Config, opts ...Option) http.Handler {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = zap.L()
	}
	if o.apiRouter == nil {
		o.apiRouter = v1.NewRouter(cfg)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.TrustedHosts(cfg.AllowedHosts))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Security)
	r.Use(middleware.ResponseTime)
	r.Use(middleware.RequestLogger(o.log))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	if cfg.EnableTracing {
		r.Use(otelhttp.NewMiddleware(cfg.AppName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		))
	}
	r.Use(api.Recover)

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/health", health(cfg))
	r.Get("/health/ready", ready(o.checks))
	r.Get("/", root(cfg))

	if cfg.DocsEnabled() {
		r.Get(openAPIPath, openAPI(cfg))
		r.Get(docsPath, docsPage(cfg, swaggerTemplate))
		r.Get(redocPath, docsPage(cfg, redocTemplate))
	}
	if cfg.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Mount(v1.Prefix, o.apiRouter)
	return r
}
