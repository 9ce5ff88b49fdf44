// Package v1 is the versioned API surface mounted at /api/v1.
//
// Domain routers (candidates, jobs, applications) register here.  This
// layer only carries the index and the feature-flag endpoint the frontend
// reads on load.
package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentflux/talentflux-api/internal/api"
	"github.com/talentflux/talentflux-api/internal/config"
)

// Prefix is where the host mounts this router.
const Prefix = "/api/v1"

// NewRouter returns the v1 route tree.
func NewRouter(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		api.JSON(w, http.StatusOK, map[string]any{
			"version":   "v1",
			"resources": []string{Prefix + "/features"},
		})
	})
	r.Get("/features", features(cfg))
	return r
}

type featureSet struct {
	AIEnabled    bool `json:"ai_enabled"`
	RAGEnabled   bool `json:"rag_enabled"`
	AIMatching   bool `json:"ai_matching"`
	AIScreening  bool `json:"ai_screening"`
	MaskedReview bool `json:"masked_review"`
	DEIAnalytics bool `json:"dei_analytics"`
}

// features reports which product features are switched on.  AI features
// are off whenever AI_ENABLED is off.
func features(cfg *config.Config) http.HandlerFunc {
	fs := featureSet{
		AIEnabled:    cfg.AIEnabled,
		RAGEnabled:   cfg.AIEnabled && cfg.RAGEnabled,
		AIMatching:   cfg.AIEnabled && cfg.FeatureAIMatching,
		AIScreening:  cfg.AIEnabled && cfg.FeatureAIScreening,
		MaskedReview: cfg.FeatureMaskedReview,
		DEIAnalytics: cfg.FeatureDEIAnalytics,
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		api.JSON(w, http.StatusOK, fs)
	}
}
