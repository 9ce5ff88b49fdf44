package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentflux/talentflux-api/internal/api"
	"github.com/talentflux/talentflux-api/internal/config"
)

const (
	welcomeMessage     = "Welcome to TalentFlux API"
	serviceDescription = "Intelligent HR Recruitment Platform"
)

// readyTimeout bounds the whole readiness probe.
const readyTimeout = 2 * time.Second

type healthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

func health(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		api.JSON(w, http.StatusOK, healthResponse{
			Status:      "healthy",
			Version:     cfg.Version,
			Environment: cfg.Environment,
			Timestamp:   cfg.CurrentTimestamp(),
		})
	}
}

type rootResponse struct {
	Message     string  `json:"message"`
	Version     string  `json:"version"`
	Description string  `json:"description"`
	Docs        *string `json:"docs"`
}

func root(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := rootResponse{
			Message:     welcomeMessage,
			Version:     cfg.Version,
			Description: serviceDescription,
		}
		if cfg.DocsEnabled() {
			docs := docsPath
			resp.Docs = &docs
		}
		api.JSON(w, http.StatusOK, resp)
	}
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ready runs every check concurrently.  Failures are logged with their
// error; the response only names the failing check.
func ready(checks []namedCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		var (
			mu      sync.Mutex
			results = make(map[string]string, len(checks))
			failed  bool
		)
		var g errgroup.Group
		for _, c := range checks {
			g.Go(func() error {
				err := c.fn(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed = true
					results[c.name] = "unavailable"
					zap.L().Warn("readiness check failed", zap.String("check", c.name), zap.Error(err))
					return nil
				}
				results[c.name] = "ok"
				return nil
			})
		}
		_ = g.Wait()

		if failed {
			api.JSON(w, http.StatusServiceUnavailable, readyResponse{Status: "not_ready", Checks: results})
			return
		}
		api.JSON(w, http.StatusOK, readyResponse{Status: "ready", Checks: results})
	}
}
