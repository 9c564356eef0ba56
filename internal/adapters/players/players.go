// Package players serves the embedded reference seasons and league
// benchmarks used to anchor and check calibrations.
package players

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/batsim/internal/domain/anchor"
	"github.com/okian/batsim/internal/domain/model"
)

//go:embed players.yaml
var embedded []byte

// Metrics are a player's expected (contact-quality) batting metrics.
type Metrics struct {
	XBA   float64 `json:"xba" yaml:"xba"`
	XSLG  float64 `json:"xslg" yaml:"xslg"`
	XWOBA float64 `json:"xwoba" yaml:"xwoba"`
}

// Player is a real season to calibrate against.
type Player struct {
	Name    string              `json:"name" yaml:"name"`
	Season  int                 `json:"season" yaml:"season"`
	Metrics Metrics             `json:"metrics" yaml:"metrics"`
	Target  model.TargetProfile `json:"target" yaml:"target"`
}

// Anchor derives the player's starting abilities from their metrics.
func (p Player) Anchor(m anchor.Map) model.Attributes {
	return m.Abilities(p.Metrics.XBA, p.Metrics.XSLG, p.Metrics.XWOBA)
}

// Archetype is a synthetic batter with known abilities and expected output.
type Archetype struct {
	Name       string              `json:"name" yaml:"name"`
	Attributes model.Attributes    `json:"attributes" yaml:"attributes"`
	Target     model.TargetProfile `json:"target" yaml:"target"`
}

// Table is the full reference data set.
type Table struct {
	Benchmarks anchor.Map  `json:"benchmarks" yaml:"benchmarks"`
	Players    []Player    `json:"players" yaml:"players"`
	Archetypes []Archetype `json:"archetypes" yaml:"archetypes"`
}

// Load parses the embedded reference table.
func Load() (*Table, error) {
	return Parse(embedded)
}

// Parse decodes a reference table. Unknown fields are rejected and missing
// derived rates are filled from the counts.
func Parse(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Table
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}
	for i := range t.Players {
		p := &t.Players[i]
		if p.Target.Name == "" {
			p.Target.Name = p.Name
		}
		if err := complete(&p.Target); err != nil {
			return nil, fmt.Errorf("player %q: %w", p.Name, err)
		}
	}
	for i := range t.Archetypes {
		a := &t.Archetypes[i]
		if a.Target.Name == "" {
			a.Target.Name = a.Name
		}
		if err := complete(&a.Target); err != nil {
			return nil, fmt.Errorf("archetype %q: %w", a.Name, err)
		}
	}
	return &t, nil
}

func complete(t *model.TargetProfile) error {
	if t.PA <= 0 {
		return fmt.Errorf("%w: pa must be positive", ErrInvalidTable)
	}
	pa := float64(t.PA)
	if t.Ratios.KRate == 0 && t.Counts.K > 0 {
		t.Ratios.KRate = float64(t.Counts.K) / pa
	}
	if t.Ratios.BBRate == 0 && t.Counts.BB > 0 {
		t.Ratios.BBRate = float64(t.Counts.BB) / pa
	}
	if t.HBPRate == 0 && t.Counts.HBP > 0 {
		t.HBPRate = float64(t.Counts.HBP) / pa
	}
	return nil
}

// Player finds a player by full name or surname, ignoring case.
func (t *Table) Player(name string) (Player, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range t.Players {
		full := strings.ToLower(p.Name)
		parts := strings.Fields(full)
		if key == full || (len(parts) > 0 && key == parts[len(parts)-1]) {
			return p, nil
		}
	}
	return Player{}, fmt.Errorf("%q: %w", name, ErrNotFound)
}

// Archetype finds an archetype by name, ignoring case.
func (t *Table) Archetype(name string) (Archetype, error) {
	for _, a := range t.Archetypes {
		if strings.EqualFold(a.Name, strings.TrimSpace(name)) {
			return a, nil
		}
	}
	return Archetype{}, fmt.Errorf("%q: %w", name, ErrNotFound)
}
