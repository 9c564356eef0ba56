package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/batsim/internal/report"
)

// SweepDependencies defines the interface for attribute sweeps.
type SweepDependencies interface {
	Sweep(ctx context.Context, req report.SweepRequest) ([]report.SweepRow, error)
}

// SweepHandler serves attribute sweeps.
type SweepHandler struct {
	deps SweepDependencies
}

// NewSweepHandler creates a new sweep handler.
func NewSweepHandler(deps SweepDependencies) *SweepHandler {
	return &SweepHandler{deps: deps}
}

type sweepResponse struct {
	Attribute report.Attribute  `json:"attribute"`
	Fixed     float64           `json:"fixed"`
	Seasons   int               `json:"seasons"`
	PA        int               `json:"pa"`
	Rows      []report.SweepRow `json:"rows"`
}

// parseSweep reads GET /sweep query parameters over the defaults.
func parseSweep(q url.Values) (report.SweepRequest, error) {
	attr, err := report.ParseAttribute(q.Get("attr"))
	if err != nil {
		return report.SweepRequest{}, err
	}
	req := report.DefaultSweep(attr)

	floats := map[string]*float64{"min": &req.Min, "max": &req.Max, "step": &req.Step, "fixed": &req.Fixed, "hbp_rate": &req.HBPRate}
	for key, dst := range floats {
		if raw := q.Get(key); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return report.SweepRequest{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = v
		}
	}
	ints := map[string]*int{"seasons": &req.Seasons, "pa": &req.PA}
	for key, dst := range ints {
		if raw := q.Get(key); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return report.SweepRequest{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = v
		}
	}
	if raw := q.Get("seed"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return report.SweepRequest{}, fmt.Errorf("invalid seed: %w", err)
		}
		req.Seed = v
	}
	return req, req.Validate()
}

// HandleSweep handles GET /sweep requests.
func (h *SweepHandler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	const op = "api.sweep"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	req, err := parseSweep(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rows, err := h.deps.Sweep(r.Context(), req)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sweepResponse{
		Attribute: req.Attribute,
		Fixed:     req.Fixed,
		Seasons:   req.Seasons,
		PA:        req.PA,
		Rows:      rows,
	})
}
