// File: internal/middleware/recovery.go
package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"
)

// RecoverPanic converts a handler panic into a JSON 500 so one bad request
// cannot take the server down.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %s %s: %v\n%s", r.Method, r.RequestURI, err, debug.Stack())
				w.Header().Set("Connection", "close")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Something went wrong on our end.",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
