package probability

import "github.com/okian/batsim/internal/domain/curve"

// LeagueHBPRate is used when a player's HBP rate is unknown.
const LeagueHBPRate = 0.010

// MaxHBPRate bounds any supplied HBP rate.
const MaxHBPRate = 0.05

// Bounds is an inclusive [Min, Max] clamp.
type Bounds struct {
	Min float64 `json:"min" koanf:"min"`
	Max float64 `json:"max" koanf:"max"`
}

func (b Bounds) clamp(v float64) float64 { return curve.Clamp(v, b.Min, b.Max) }

// Params holds every tunable of the probability model.
type Params struct {
	HRCurve    curve.SCurve
	BABIPCurve curve.SCurve
	BBCurve    curve.SCurve
	KEyeCurve  curve.SCurve

	HRMax  float64
	BABIP  Bounds
	BB     Bounds
	K      Bounds
	KMid   float64

	// KHitWeight is the share of K effectiveness driven by HIT. EYE gets the rest.
	KHitWeight float64
	KHit       curve.Modifier

	HREye curve.Modifier
	HRHit curve.Modifier

	DoubleShareMid float64
	DoubleShare    Bounds
	XBHPow         curve.Modifier
	XBHHit         curve.Modifier
	XBHPowWeight   float64
	XBHHitWeight   float64

	HBPDefault float64
}

// Anchor points of the default curves.
var (
	DefaultHRPoints = []curve.Point{
		{X: 0, Y: 0.0005}, {X: 30, Y: 0.003}, {X: 40, Y: 0.0067}, {X: 60, Y: 0.020},
		{X: 70, Y: 0.0333}, {X: 85, Y: 0.045}, {X: 99, Y: 0.0580}, {X: 115, Y: 0.072},
		{X: 130, Y: 0.0870}, {X: 140, Y: 0.098}, {X: 150, Y: 0.110},
	}
	DefaultBABIPPoints = []curve.Point{
		{X: 0, Y: 0.215}, {X: 30, Y: 0.245}, {X: 40, Y: 0.270}, {X: 60, Y: 0.295},
		{X: 70, Y: 0.305}, {X: 85, Y: 0.330}, {X: 99, Y: 0.350}, {X: 110, Y: 0.365},
		{X: 120, Y: 0.375}, {X: 130, Y: 0.385}, {X: 140, Y: 0.395}, {X: 150, Y: 0.405},
	}
	DefaultBBPoints = []curve.Point{
		{X: 0, Y: 0.030}, {X: 30, Y: 0.045}, {X: 40, Y: 0.062}, {X: 60, Y: 0.075},
		{X: 70, Y: 0.085}, {X: 85, Y: 0.105}, {X: 99, Y: 0.125}, {X: 115, Y: 0.145},
		{X: 130, Y: 0.160}, {X: 140, Y: 0.170}, {X: 150, Y: 0.180},
	}
	DefaultKEyePoints = []curve.Point{
		{X: 0, Y: 0.8}, {X: 30, Y: 0.5}, {X: 40, Y: 0.3}, {X: 60, Y: 0.1},
		{X: 70, Y: 0.0}, {X: 85, Y: -0.20}, {X: 99, Y: -0.40}, {X: 115, Y: -0.55},
		{X: 130, Y: -0.70}, {X: 140, Y: -0.75}, {X: 150, Y: -0.80},
	}
)

// DefaultParams returns the calibrated production model.
func DefaultParams() Params {
	const mid = 70.0
	return Params{
		HRCurve:    curve.MustNew(DefaultHRPoints...),
		BABIPCurve: curve.MustNew(DefaultBABIPPoints...),
		BBCurve:    curve.MustNew(DefaultBBPoints...),
		KEyeCurve:  curve.MustNew(DefaultKEyePoints...),

		HRMax: 0.20,
		BABIP: Bounds{Min: 0.190, Max: 0.450},
		BB:    Bounds{Min: 0.020, Max: 0.250},
		K:     Bounds{Min: 0.080, Max: 0.350},
		KMid:  0.220,

		KHitWeight: 0.5,
		KHit:       curve.Modifier{Midpoint: mid, Scale: 55},

		HREye: curve.Modifier{Midpoint: mid, Scale: 40, MaxImpact: 0.12},
		HRHit: curve.Modifier{Midpoint: mid, Scale: 40, MaxImpact: 0.18},

		DoubleShareMid: 0.31,
		DoubleShare:    Bounds{Min: 0.22, Max: 0.42},
		XBHPow:         curve.Modifier{Midpoint: mid, Scale: 48},
		XBHHit:         curve.Modifier{Midpoint: mid, Scale: 48},
		XBHPowWeight:   0.5,
		XBHHitWeight:   0.5,

		HBPDefault: LeagueHBPRate,
	}
}
