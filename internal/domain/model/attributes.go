package model

import "fmt"

// Attribute domain bounds.
const (
	MinAttribute  = 1.0
	MaxAttribute  = 150.0
	DefaultAnchor = 70.0
)

// Attributes is a batter's latent ability triple.
type Attributes struct {
	POW float64 `json:"pow" yaml:"pow"`
	HIT float64 `json:"hit" yaml:"hit"`
	EYE float64 `json:"eye" yaml:"eye"`
}

// String renders the triple the way logs and the CLI print it.
func (a Attributes) String() string {
	return fmt.Sprintf("POW=%.2f HIT=%.2f EYE=%.2f", a.POW, a.HIT, a.EYE)
}

// Candidate pairs an attribute triple with its error score.
// Seq is the stage-1 trial index and breaks ties between equal errors.
type Candidate struct {
	Attributes Attributes
	Error      float64
	Seq        int
}

// Less orders candidates by ascending error, then by ascending Seq.
func (c Candidate) Less(o Candidate) bool {
	if c.Error != o.Error {
		return c.Error < o.Error
	}
	return c.Seq < o.Seq
}

// Trial is one unit of stage-1 work: a sampled triple and the seed its
// seasons are simulated with.
type Trial struct {
	Seq        int
	Attributes Attributes
	Seed       uint64
}
