// internal/middleware/hosts.go
//
// Trusted-host filter.
//
// Every request whose Host header is not on ALLOWED_HOSTS is answered with
// 400 "Invalid host header" before it reaches a route handler.  This stops
// host-header poisoning of absolute URLs built from r.Host.
//
// Patterns
// --------
//   • "*"                 – allow everything (filter disabled)
//   • "api.example.com"   – exact match, case-insensitive, port ignored
//   • "*.example.com"     – any sub-domain of example.com, not the apex

package middleware

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/talentflux/talentflux-api/internal/api"
)

// TrustedHosts returns a middleware enforcing the allow-list.
func TrustedHosts(allowed []string) func(http.Handler) http.Handler {
	exact := make(map[string]struct{}, len(allowed))
	var suffixes []string
	allowAll := false

	for _, h := range allowed {
		h = strings.Trim(strings.ToLower(strings.TrimSpace(h)), "[]")
		switch {
		case h == "*":
			allowAll = true
		case strings.HasPrefix(h, "*."):
			suffixes = append(suffixes, h[1:]) // keep the leading dot
		case h != "":
			exact[h] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if allowAll {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(stripPort(r.Host))
			if hostAllowed(host, exact, suffixes) {
				next.ServeHTTP(w, r)
				return
			}
			zap.L().Warn("untrusted host rejected",
				zap.String("host", r.Host),
				zap.String("path", r.URL.Path),
			)
			api.WriteError(w, r, api.HTTPError(http.StatusBadRequest, "Invalid host header"))
		})
	}
}

func hostAllowed(host string, exact map[string]struct{}, suffixes []string) bool {
	if host == "" {
		return false
	}
	if _, ok := exact[host]; ok {
		return true
	}
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) && len(host) > len(s) {
			return true
		}
	}
	return false
}

// stripPort removes the :port suffix from Host when present.  IPv6 literals
// keep their address without brackets.
func stripPort(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return strings.Trim(h, "[]")
}
