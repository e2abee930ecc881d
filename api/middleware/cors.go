package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// localOrigins are the Next.js dev server ports used by the storefront UI.
var localOrigins = []string{"http://localhost:3000", "http://localhost:9002"}

// CORS applies the browser origin policy. Credentials travel in the
// Authorization header, never in cookies, so credentialed CORS stays off.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = localOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, replayedHeader, "Retry-After"},
		MaxAge:         600,
	})
}
