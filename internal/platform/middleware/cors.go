package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns a CORS middleware for the read-only API. With no origins it
// allows any origin, which is what the browser frontend needs when it is
// served from a different host than the backend.
func CORS(allowedOrigins ...string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-Id",
			"traceparent",
		},
		ExposedHeaders: []string{"Link", "X-Request-Id"},
		MaxAge:         300,
	})
}
