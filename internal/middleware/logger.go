// File: internal/middleware/logger.go
package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/coreframe-ai/coreframe-server/internal/ratelimit"
)

// RequestLogging logs one line per request with the response status.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		log.Printf("[HTTP] %s %s from %s -> %d in %v",
			r.Method, r.RequestURI, ratelimit.GetClientIP(r), wrapper.statusCode, time.Since(start))
	})
}
