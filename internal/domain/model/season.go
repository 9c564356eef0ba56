package model

// SeasonOutcome holds the event counts of one simulated season.
type SeasonOutcome struct {
	Counts [NumOutcomes]int
	H      int
	AB     int
	OUT    int
	PA     int
}

// Count returns the number of times o occurred.
func (s SeasonOutcome) Count(o Outcome) int { return s.Counts[o] }

// SeasonStats holds rate statistics plus the counts used for error scoring.
// Counts are float64 so averaged seasons can share the type.
type SeasonStats struct {
	BA     float64 `json:"ba"`
	OBP    float64 `json:"obp"`
	SLG    float64 `json:"slg"`
	OPS    float64 `json:"ops"`
	KRate  float64 `json:"k_rate"`
	BBRate float64 `json:"bb_rate"`

	HR      float64 `json:"hr"`
	Doubles float64 `json:"doubles"`
	Singles float64 `json:"singles"`
	BB      float64 `json:"bb"`
	HBP     float64 `json:"hbp"`
	K       float64 `json:"k"`
	H       float64 `json:"h"`
	AB      float64 `json:"ab"`
	PA      float64 `json:"pa"`
	OUT     float64 `json:"out"`
}

// TargetCounts are a real player's season counting stats.
type TargetCounts struct {
	HR      int `json:"hr" yaml:"hr"`
	BB      int `json:"bb" yaml:"bb"`
	K       int `json:"k" yaml:"k"`
	H       int `json:"h" yaml:"h"`
	Doubles int `json:"doubles" yaml:"doubles"`
	Singles int `json:"singles" yaml:"singles"`
	HBP     int `json:"hbp" yaml:"hbp"`
	AB      int `json:"ab" yaml:"ab"`
}

// TargetRatios are a real player's season rate stats.
type TargetRatios struct {
	BA     float64 `json:"ba" yaml:"ba"`
	OBP    float64 `json:"obp" yaml:"obp"`
	SLG    float64 `json:"slg" yaml:"slg"`
	OPS    float64 `json:"ops" yaml:"ops"`
	KRate  float64 `json:"k_rate" yaml:"k_rate"`
	BBRate float64 `json:"bb_rate" yaml:"bb_rate"`
}

// TargetProfile is the observed season a calibration tries to reproduce.
type TargetProfile struct {
	Name    string       `json:"name" yaml:"name"`
	PA      int          `json:"pa" yaml:"pa"`
	Counts  TargetCounts `json:"counts" yaml:"counts"`
	Ratios  TargetRatios `json:"ratios" yaml:"ratios"`
	HBPRate float64      `json:"hbp_rate" yaml:"hbp_rate"`
}
