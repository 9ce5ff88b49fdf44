//
//  internal/requestinfo/requestinfo.go
//
//  Per-request metadata (client IP, coarse user-agent, request ID, arrival
//  time) collected once by Enrich and read by the request logger and any
//  v1 handler that needs it.  The struct is inert and safe to log.
//

package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/talentflux/talentflux-api/internal/ua"
)

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	RequestID string
	ClientIP  net.IP
	UA        ua.Info
	Timestamp time.Time
}

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer stored by Enrich, or nil if the middleware
// has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// Enrich attaches *RequestInfo and echoes the request ID to the client.  It
// must run after chi's RequestID middleware.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &RequestInfo{
			RequestID: middleware.GetReqID(r.Context()),
			ClientIP:  clientIP(r),
			UA:        ua.Parse(r.UserAgent()),
			Timestamp: time.Now().UTC(),
		}
		if info.RequestID != "" {
			w.Header().Set(middleware.RequestIDHeader, info.RequestID)
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP extracts the left-most valid address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
