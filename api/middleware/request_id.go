package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/warungpos/backend/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	// Devices replaying a queued mutation reuse the id they generated
	// offline, so the header is client-controlled. Cap it to keep log
	// fields sane.
	maxRequestIDLen = 64
)

// RequestID propagates the caller's request id, or mints one. Devices send
// the id they stamped on the mutation when it was queued offline, which lets
// a single sync attempt be traced across retries.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
