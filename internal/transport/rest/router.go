// Package rest exposes the distribution views over HTTP.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dilma-lab/dilma/internal/transport/middleware"
)

// NewRouter wires every route behind the request-id, access-log and
// recovery middleware.
func NewRouter(health *HealthHandler, v *ViewsHandler, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(true)

	r.HandleFunc("/live", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/ready", health.Ready).Methods(http.MethodGet)
	r.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/models", v.Models).Methods(http.MethodGet)
	api.HandleFunc("/tractates", v.Tractates).Methods(http.MethodGet)
	api.HandleFunc("/tags", v.Tags).Methods(http.MethodGet)
	api.HandleFunc("/axes", v.Axes).Methods(http.MethodGet)
	api.HandleFunc("/compare", v.Compare).Methods(http.MethodGet)
	api.HandleFunc("/dilemmas/{id}", v.Dilemma).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	})

	return middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(r)
}
