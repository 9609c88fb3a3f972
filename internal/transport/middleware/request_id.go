package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dilma-lab/dilma/pkg/ctxutil"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// maxRequestIDLen caps client-supplied ids; longer ones are replaced.
const maxRequestIDLen = 128

// RequestID reuses the caller's X-Request-Id or generates a UUID, stores it
// in the context and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxutil.WithRequestID(r.Context(), id)))
	})
}
