package season

import "github.com/okian/batsim/internal/domain/model"

// Accumulator folds SeasonStats into a running sum. The zero value is ready
// to use. It is not safe for concurrent use; merge per-goroutine
// accumulators instead.
type Accumulator struct {
	sum model.SeasonStats
	n   int
}

// Add folds one season into the sum.
func (a *Accumulator) Add(s model.SeasonStats) {
	a.sum = add(a.sum, s)
	a.n++
}

// Merge folds another accumulator into a.
func (a *Accumulator) Merge(o Accumulator) {
	a.sum = add(a.sum, o.sum)
	a.n += o.n
}

// N returns the number of seasons folded.
func (a *Accumulator) N() int { return a.n }

// Mean returns the per-season average. An empty accumulator yields zeros.
func (a *Accumulator) Mean() model.SeasonStats {
	if a.n == 0 {
		return model.SeasonStats{}
	}
	return scale(a.sum, 1/float64(a.n))
}

func add(x, y model.SeasonStats) model.SeasonStats {
	return model.SeasonStats{
		BA: x.BA + y.BA, OBP: x.OBP + y.OBP, SLG: x.SLG + y.SLG, OPS: x.OPS + y.OPS,
		KRate: x.KRate + y.KRate, BBRate: x.BBRate + y.BBRate,
		HR: x.HR + y.HR, Doubles: x.Doubles + y.Doubles, Singles: x.Singles + y.Singles,
		BB: x.BB + y.BB, HBP: x.HBP + y.HBP, K: x.K + y.K,
		H: x.H + y.H, AB: x.AB + y.AB, PA: x.PA + y.PA, OUT: x.OUT + y.OUT,
	}
}

func scale(x model.SeasonStats, f float64) model.SeasonStats {
	return model.SeasonStats{
		BA: x.BA * f, OBP: x.OBP * f, SLG: x.SLG * f, OPS: x.OPS * f,
		KRate: x.KRate * f, BBRate: x.BBRate * f,
		HR: x.HR * f, Doubles: x.Doubles * f, Singles: x.Singles * f,
		BB: x.BB * f, HBP: x.HBP * f, K: x.K * f,
		H: x.H * f, AB: x.AB * f, PA: x.PA * f, OUT: x.OUT * f,
	}
}
