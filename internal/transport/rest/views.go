package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/dilma-lab/dilma/internal/domain"
	"github.com/dilma-lab/dilma/internal/service/views"
)

type viewsService interface {
	Axes() []views.Axis
	Models(c views.Context) []string
	Tractates() []string
	Dilemma(id string) (*domain.DilemmaRecord, bool)
	TagDistribution(c views.Context) []views.TagCount
	AxisDistribution(c views.Context, models []string) []views.AxisCount
	Compare(c views.Context) (views.Comparison, error)
}

// ViewsHandler serves the distribution views as JSON.
type ViewsHandler struct {
	svc viewsService
	log *slog.Logger
}

// NewViewsHandler creates a ViewsHandler.
func NewViewsHandler(svc viewsService, logger *slog.Logger) *ViewsHandler {
	return &ViewsHandler{svc: svc, log: logger}
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// contextFromQuery maps query parameters onto a views.Context.
func contextFromQuery(r *http.Request) (views.Context, error) {
	q := r.URL.Query()
	c := views.Context{
		Tractate:    q.Get("tractate"),
		Order:       q.Get("order"),
		DilemmaType: domain.DilemmaType(q.Get("dilemma_type")),
		ModelA:      q.Get("model_a"),
		ModelB:      q.Get("model_b"),
		Axis:        q.Get("axis"),
	}
	return c, c.Validate()
}

// modelsFromQuery accepts repeated and comma-separated model parameters.
func modelsFromQuery(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["model"] {
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				out = append(out, m)
			}
		}
	}
	return out
}

func (h *ViewsHandler) Models(w http.ResponseWriter, r *http.Request) {
	c, err := contextFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": h.svc.Models(c)})
}

func (h *ViewsHandler) Tractates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tractates": h.svc.Tractates()})
}

func (h *ViewsHandler) Tags(w http.ResponseWriter, r *http.Request) {
	c, err := contextFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"context": c,
		"tags":    h.svc.TagDistribution(c),
	})
}

func (h *ViewsHandler) Axes(w http.ResponseWriter, r *http.Request) {
	c, err := contextFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"context":     c,
		"definitions": h.svc.Axes(),
		"counts":      h.svc.AxisDistribution(c, modelsFromQuery(r)),
	})
}

func (h *ViewsHandler) Compare(w http.ResponseWriter, r *http.Request) {
	c, err := contextFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Compare(c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ViewsHandler) Dilemma(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, ok := h.svc.Dilemma(id)
	if !ok {
		h.writeError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dilemma":  rec,
		"order":    rec.Order,
		"tractate": rec.Tractate,
	})
}

func (h *ViewsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	default:
		h.log.ErrorContext(r.Context(), "views request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
