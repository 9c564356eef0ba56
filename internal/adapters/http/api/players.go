package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/batsim/internal/adapters/players"
	"github.com/okian/batsim/internal/domain/model"
)

// PlayersDependencies defines the interface for reference data lookups.
type PlayersDependencies interface {
	Players(ctx context.Context) ([]players.Player, error)
	Player(ctx context.Context, name string) (players.Player, error)
	Anchor(m players.Metrics) model.Attributes
}

// PlayersHandler serves the reference players.
type PlayersHandler struct {
	deps PlayersDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type playerResponse struct {
	players.Player
	Anchor model.Attributes `json:"anchor"`
}

func (h *PlayersHandler) view(p players.Player) playerResponse {
	return playerResponse{Player: p, Anchor: h.deps.Anchor(p.Metrics)}
}

// HandleList handles GET /players requests.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.players"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ps, err := h.deps.Players(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	out := make([]playerResponse, len(ps))
	for i, p := range ps {
		out[i] = h.view(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /players/{name} requests.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.player"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/players/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	p, err := h.deps.Player(r.Context(), name)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(p))
}
