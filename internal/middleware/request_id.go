package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"poolpay/pkg/logger"
)

// RequestID tags each request with an ID, echoes it in the response and logs
// the request once it completes.
func RequestID(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = newRequestID()
			}
			w.Header().Set("X-Request-ID", requestID)

			start := time.Now()
			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"duration":   time.Since(start).String(),
			}).Debug("Request completed")
		})
	}
}

func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
