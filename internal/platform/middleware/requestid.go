package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// validRequestID reports whether id is safe to echo back and log: non-empty,
// bounded, and printable ASCII only (0x20-0x7E).
func validRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxRequestIDLength {
		return false
	}
	for i := range len(id) {
		if c := id[i]; c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// RequestID stores a request identifier in the context under chi's
// RequestIDKey and echoes it in the X-Request-Id response header. A valid
// incoming X-Request-Id is reused; otherwise a UUIDv4 is generated.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(chimiddleware.RequestIDHeader)
			if !validRequestID(id) {
				id = uuid.NewString()
			}
			w.Header().Set(chimiddleware.RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
