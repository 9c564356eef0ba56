package api

import (
	"context"
	"net/http"

	"github.com/okian/batsim/internal/domain/model"
)

// SimulationDependencies defines what the at-bat handlers need.
type SimulationDependencies interface {
	AtBat(ctx context.Context, a model.Attributes, hbpRate float64) (model.Outcome, model.Probabilities, error)
	Probabilities(ctx context.Context, a model.Attributes, hbpRate float64) (model.Probabilities, error)
}

// AtBatHandler handles single plate appearance requests.
type AtBatHandler struct {
	deps SimulationDependencies
}

// NewAtBatHandler creates a new at-bat handler.
func NewAtBatHandler(deps SimulationDependencies) *AtBatHandler {
	return &AtBatHandler{deps: deps}
}

type atBatResponse struct {
	Outcome       string             `json:"outcome"`
	Probabilities map[string]float64 `json:"probabilities"`
}

type probabilitiesResponse struct {
	Attributes    model.Attributes   `json:"attributes"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// HandleAtBat handles POST /at-bat requests.
func (h *AtBatHandler) HandleAtBat(w http.ResponseWriter, r *http.Request) {
	const op = "api.at_bat"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req attributesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	a, hbp, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	o, p, err := h.deps.AtBat(r.Context(), a, hbp)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, atBatResponse{Outcome: o.String(), Probabilities: p.Map()})
}

// HandleProbabilities handles POST /probabilities requests.
func (h *AtBatHandler) HandleProbabilities(w http.ResponseWriter, r *http.Request) {
	const op = "api.probabilities"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req attributesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	a, hbp, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Probabilities(r.Context(), a, hbp)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, probabilitiesResponse{Attributes: a, Probabilities: p.Map()})
}
