// internal/middleware/logging.go
//
// Structured access log.
//
// One INFO line per request, emitted after the handler returns.  5xx
// responses are logged at ERROR, 4xx at WARN.  The raw User-Agent and query
// string are never logged; see internal/ua for the coarse fields instead.

package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/talentflux/talentflux-api/internal/requestinfo"
)

// RequestLogger writes one access-log entry per request to log.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", m.Code),
				zap.Int64("bytes", m.Written),
				zap.Duration("duration", m.Duration),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			if info := requestinfo.FromContext(r.Context()); info != nil {
				fields = append(fields,
					zap.Stringer("client_ip", info.ClientIP),
					zap.String("browser", info.UA.Browser),
					zap.String("device", info.UA.Device),
					zap.Bool("bot", info.UA.IsBot),
				)
			}

			lvl := zapcore.InfoLevel
			switch {
			case m.Code >= 500:
				lvl = zapcore.ErrorLevel
			case m.Code >= 400:
				lvl = zapcore.WarnLevel
			}
			if ce := log.Check(lvl, "request"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}
