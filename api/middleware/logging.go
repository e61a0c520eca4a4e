package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/farmstore/pkg/logger"
)

// Query keys worth logging. Gateway callbacks also carry signatures and
// card details, which stay out of the logs.
var loggedQueryKeys = []string{"orderId", "status", "code", "vnp_TxnRef", "vnp_ResponseCode"}

func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}

			fields := map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			}
			query := r.URL.Query()
			for _, key := range loggedQueryKeys {
				if v := query.Get(key); v != "" {
					fields["q_"+key] = v
				}
			}
			ctx := logg.WithFields(r.Context(), fields)

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if rec.status >= http.StatusInternalServerError {
				logg.Warn(ctx, "request.complete")
				return
			}
			logg.Info(ctx, "request.complete")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
