package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/batsim/internal/adapters/players"
	"github.com/okian/batsim/internal/domain/dedupe"
	"github.com/okian/batsim/internal/domain/model"
)

// CalibrateDependencies defines what the calibration handler needs.
type CalibrateDependencies interface {
	dedupe.Deduper
	Calibrate(ctx context.Context, anchor model.Attributes, target model.TargetProfile, ranges model.Ranges) (model.Calibration, error)
	Anchor(m players.Metrics) model.Attributes
	Ranges(a model.Attributes) model.Ranges
	Player(ctx context.Context, name string) (players.Player, error)
}

// CalibrateHandler runs calibrations synchronously.
type CalibrateHandler struct {
	deps CalibrateDependencies
}

// NewCalibrateHandler creates a new calibrate handler.
func NewCalibrateHandler(deps CalibrateDependencies) *CalibrateHandler {
	return &CalibrateHandler{deps: deps}
}

// calibrateRequest names a reference player, or carries a custom target with
// either an explicit anchor or the metrics to derive one from.
type calibrateRequest struct {
	Player  string               `json:"player"`
	Name    string               `json:"name"`
	Anchor  *model.Attributes    `json:"anchor"`
	Metrics *players.Metrics     `json:"metrics"`
	Ranges  *model.Ranges        `json:"ranges"`
	Target  *model.TargetProfile `json:"target"`
}

func (c calibrateRequest) validate() error {
	custom := c.Target != nil || c.Anchor != nil || c.Metrics != nil
	switch {
	case strings.TrimSpace(c.Player) != "" && custom:
		return errors.New("player cannot be combined with a custom target")
	case strings.TrimSpace(c.Player) != "":
		return nil
	case strings.TrimSpace(c.Name) == "":
		return errors.New("missing player or name")
	case c.Target == nil:
		return errors.New("missing target")
	case c.Anchor == nil && c.Metrics == nil:
		return errors.New("missing anchor or metrics")
	case c.Anchor != nil && c.Metrics != nil:
		return errors.New("anchor and metrics are mutually exclusive")
	case c.Target.PA < 0:
		return errors.New("target pa must not be negative")
	}
	if c.Ranges != nil {
		if err := validateRanges(*c.Ranges); err != nil {
			return err
		}
	}
	if c.Anchor != nil {
		return validateAttributes(*c.Anchor)
	}
	return nil
}

// resolve turns the request into calibration inputs.
func (h *CalibrateHandler) resolve(ctx context.Context, req calibrateRequest) (model.Attributes, model.TargetProfile, model.Ranges, error) {
	if req.Player != "" {
		p, err := h.deps.Player(ctx, req.Player)
		if err != nil {
			return model.Attributes{}, model.TargetProfile{}, model.Ranges{}, err
		}
		a := h.deps.Anchor(p.Metrics)
		return a, p.Target, h.deps.Ranges(a), nil
	}

	target := *req.Target
	target.Name = strings.TrimSpace(req.Name)
	var a model.Attributes
	if req.Anchor != nil {
		a = *req.Anchor
	} else {
		a = h.deps.Anchor(*req.Metrics)
	}
	ranges := h.deps.Ranges(a)
	if req.Ranges != nil {
		ranges = *req.Ranges
	}
	return a, target, ranges, nil
}

// HandleCalibrate handles POST /calibrate requests.
func (h *CalibrateHandler) HandleCalibrate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calibrate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req calibrateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	anchor, target, ranges, err := h.resolve(r.Context(), req)
	if err != nil {
		writeFailure(w, op, err)
		return
	}

	// One run per name at a time.
	key := dedupe.Key(target.Name)
	if h.deps.SeenAndRecord(r.Context(), key) {
		writeError(w, http.StatusConflict, "conflict", NewKind(op, ErrConflict))
		return
	}
	defer h.deps.Unrecord(context.WithoutCancel(r.Context()), key)

	cal, err := h.deps.Calibrate(r.Context(), anchor, target, ranges)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}
