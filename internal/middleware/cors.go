package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSMethods are the verbs the browser may use cross-origin.
var CORSMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut,
	http.MethodDelete, http.MethodPatch, http.MethodOptions,
}

// CORS allows the configured origins with credentials and any request
// header.  Preflight requests are answered here and never reach routing.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   CORSMethods,
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{HeaderProcessTime, "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}
