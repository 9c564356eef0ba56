// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/batsim/internal/adapters/players"
	"github.com/okian/batsim/internal/domain/dedupe"
	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/search"
	"github.com/okian/batsim/internal/report"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Deduper guards calibration names against concurrent duplicate runs.
	dedupe.Deduper

	AtBat(ctx context.Context, a model.Attributes, hbpRate float64) (model.Outcome, model.Probabilities, error)
	Probabilities(ctx context.Context, a model.Attributes, hbpRate float64) (model.Probabilities, error)

	Calibrate(ctx context.Context, anchor model.Attributes, target model.TargetProfile, ranges model.Ranges) (model.Calibration, error)
	Anchor(m players.Metrics) model.Attributes
	Ranges(a model.Attributes) model.Ranges

	Players(ctx context.Context) ([]players.Player, error)
	Player(ctx context.Context, name string) (players.Player, error)

	Sweep(ctx context.Context, req report.SweepRequest) ([]report.SweepRow, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	atBatHandler     *AtBatHandler
	calibrateHandler *CalibrateHandler
	playersHandler   *PlayersHandler
	sweepHandler     *SweepHandler
	limiter          *rate.Limiter
}

// Option configures the Server.
type Option func(*Server)

// WithCalibrateLimit throttles POST /calibrate to perSec requests per second
// with the given burst.
func WithCalibrateLimit(perSec float64, burst int) Option {
	return func(s *Server) {
		if perSec > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		atBatHandler:     NewAtBatHandler(deps),
		calibrateHandler: NewCalibrateHandler(deps),
		playersHandler:   NewPlayersHandler(deps),
		sweepHandler:     NewSweepHandler(deps),
		limiter:          rate.NewLimiter(rate.Limit(2), 4),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/at-bat", MetricsMiddleware(s.atBatHandler.HandleAtBat, "at_bat"))
	mux.HandleFunc("/probabilities", MetricsMiddleware(s.atBatHandler.HandleProbabilities, "probabilities"))
	mux.HandleFunc("/calibrate", MetricsMiddleware(RateLimitMiddleware(s.limiter, s.calibrateHandler.HandleCalibrate), "calibrate"))
	mux.HandleFunc("/players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
	mux.HandleFunc("/players/", MetricsMiddleware(s.playersHandler.HandleGet, "player"))
	mux.HandleFunc("/sweep", MetricsMiddleware(s.sweepHandler.HandleSweep, "sweep"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps upstream errors onto status codes.
func writeFailure(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, report.ErrInvalidSweep), errors.Is(err, report.ErrUnknownAttribute),
		errors.Is(err, search.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, ErrNotFound), errors.Is(err, players.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// attributesRequest is the body of POST /at-bat and POST /probabilities.
type attributesRequest struct {
	POW     *float64 `json:"pow"`
	HIT     *float64 `json:"hit"`
	EYE     *float64 `json:"eye"`
	HBPRate *float64 `json:"hbp_rate"`
}

func (a attributesRequest) validate() (model.Attributes, float64, error) {
	if a.POW == nil || a.HIT == nil || a.EYE == nil {
		return model.Attributes{}, 0, errors.New("pow, hit and eye are required")
	}
	attrs := model.Attributes{POW: *a.POW, HIT: *a.HIT, EYE: *a.EYE}
	if err := validateAttributes(attrs); err != nil {
		return model.Attributes{}, 0, err
	}
	hbp := -1.0
	if a.HBPRate != nil {
		if *a.HBPRate < 0 || *a.HBPRate > 1 {
			return model.Attributes{}, 0, errors.New("hbp_rate must be within [0,1]")
		}
		hbp = *a.HBPRate
	}
	return attrs, hbp, nil
}

func validateAttributes(a model.Attributes) error {
	for _, v := range []float64{a.POW, a.HIT, a.EYE} {
		if math.IsNaN(v) || v < 0 || v > model.MaxAttribute {
			return errors.New("attributes must be within [0,150]")
		}
	}
	return nil
}

func validateRanges(r model.Ranges) error {
	for _, x := range []model.Range{r.POW, r.HIT, r.EYE} {
		if math.IsNaN(x.Low) || math.IsNaN(x.High) || x.Low > x.High ||
			x.Low < model.MinAttribute || x.High > model.MaxAttribute {
			return errors.New("ranges must be ordered and within [1,150]")
		}
	}
	return nil
}
