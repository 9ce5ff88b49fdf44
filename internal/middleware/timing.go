package middleware

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
)

// HeaderProcessTime carries the server-side handling time in seconds.
const HeaderProcessTime = "X-Process-Time"

// ResponseTime stamps X-Process-Time just before the status line goes out.
func ResponseTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		stamped := false
		stamp := func() {
			if stamped {
				return
			}
			stamped = true
			w.Header().Set(HeaderProcessTime,
				strconv.FormatFloat(time.Since(start).Seconds(), 'f', 6, 64))
		}

		wrapped := httpsnoop.Wrap(w, httpsnoop.Hooks{
			WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
				return func(code int) {
					stamp()
					next(code)
				}
			},
			Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
				return func(b []byte) (int, error) {
					stamp()
					return next(b)
				}
			},
			ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
				return func(src io.Reader) (int64, error) {
					stamp()
					return next(src)
				}
			},
		})

		next.ServeHTTP(wrapped, r)
		stamp() // handler wrote nothing; net/http sends the implicit 200 after us
	})
}
