package model

import "time"

// Range is an inclusive search interval for one attribute.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Ranges holds the per-attribute search intervals.
type Ranges struct {
	POW Range `json:"pow"`
	HIT Range `json:"hit"`
	EYE Range `json:"eye"`
}

// StageSummary reports what one search stage did.
type StageSummary struct {
	Trials   int           `json:"trials"`
	Retained int           `json:"retained"`
	Seasons  int           `json:"seasons"`
	Duration time.Duration `json:"duration"`
}

// Calibration is the result of a two-stage search.
type Calibration struct {
	RunID    string       `json:"run_id"`
	Name     string       `json:"name"`
	Best     Attributes   `json:"best"`
	Error    float64      `json:"error"`
	Anchor   Attributes   `json:"anchor"`
	Ranges   Ranges       `json:"ranges"`
	StageOne StageSummary `json:"stage_one"`
	StageTwo StageSummary `json:"stage_two"`
	Stats    SeasonStats  `json:"stats"`
}
