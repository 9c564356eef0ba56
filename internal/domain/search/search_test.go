package search_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/domain/search"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRangesAround(t *testing.T) {
	Convey("Given an anchor near the domain edges", t, func() {
		r := search.RangesAround(model.Attributes{POW: 140, HIT: 10, EYE: 70}, 30)

		So(r.POW, ShouldResemble, search.Range{Low: 110, High: 150})
		So(r.HIT, ShouldResemble, search.Range{Low: 1, High: 40})
		So(r.EYE, ShouldResemble, search.Range{Low: 40, High: 100})
	})

	Convey("Given a zero delta", t, func() {
		r := search.RangesAround(model.Attributes{POW: 64, HIT: 66, EYE: 68}, 0)
		So(r.POW, ShouldResemble, search.Range{Low: 64, High: 64})
		So(r.EYE, ShouldResemble, search.Range{Low: 68, High: 68})
	})

	Convey("Given an anchor outside the domain", t, func() {
		r := search.RangesAround(model.Attributes{POW: 200, HIT: -5, EYE: 70}, 0)
		So(r.POW, ShouldResemble, search.Range{Low: 150, High: 150})
		So(r.HIT, ShouldResemble, search.Range{Low: 1, High: 1})
	})
}

func TestClampRanges(t *testing.T) {
	Convey("Given ranges outside the attribute domain", t, func() {
		r, err := search.ClampRanges(search.Ranges{
			POW: search.Range{Low: 5000, High: 9000},
			HIT: search.Range{Low: -400, High: 60},
			EYE: search.Range{Low: 40, High: 100},
		})

		Convey("Then every bound is clamped into it", func() {
			So(err, ShouldBeNil)
			So(r.POW, ShouldResemble, search.Range{Low: 150, High: 150})
			So(r.HIT, ShouldResemble, search.Range{Low: 1, High: 60})
			So(r.EYE, ShouldResemble, search.Range{Low: 40, High: 100})
		})
	})

	Convey("Given an inverted range", t, func() {
		_, err := search.ClampRanges(search.Ranges{
			POW: search.Range{Low: 60, High: 80},
			HIT: search.Range{Low: 90, High: 10},
			EYE: search.Range{Low: 40, High: 100},
		})
		So(errors.Is(err, search.ErrInvalidRange), ShouldBeTrue)
	})

	Convey("Given a NaN bound", t, func() {
		_, err := search.ClampRanges(search.Ranges{EYE: search.Range{Low: math.NaN(), High: 10}})
		So(errors.Is(err, search.ErrInvalidRange), ShouldBeTrue)
	})
}

func TestRandomEven(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	Convey("Given a wide range", t, func() {
		r := search.Range{Low: 40.3, High: 99.7}

		Convey("Then every draw is an even integer inside it", func() {
			ok := true
			seen := map[float64]bool{}
			for range 2000 {
				v := search.RandomEven(rng, r)
				seen[v] = true
				if v < r.Low || v > r.High || int(v)%2 != 0 || v != float64(int(v)) {
					ok = false
				}
			}
			So(ok, ShouldBeTrue)
			So(seen[42], ShouldBeTrue)
			So(seen[98], ShouldBeTrue)
			So(len(seen), ShouldEqual, 29)
		})
	})

	Convey("Given a range holding a single odd integer", t, func() {
		So(search.RandomEven(rng, search.Range{Low: 67, High: 67}), ShouldEqual, 67.0)
		So(search.RandomEven(rng, search.Range{Low: 66.5, High: 67.5}), ShouldEqual, 67.0)
	})

	Convey("Given a range holding no integer", t, func() {
		So(search.RandomEven(rng, search.Range{Low: 66.2, High: 66.8}), ShouldEqual, 66.2)
		So(search.RandomEven(rng, search.Range{Low: 66.6, High: 66.8}), ShouldEqual, 66.8)
	})

	Convey("Given a degenerate even point", t, func() {
		So(search.RandomEven(rng, search.Range{Low: 70, High: 70}), ShouldEqual, 70.0)
	})
}

func TestSampler(t *testing.T) {
	ranges := search.RangesAround(model.Attributes{POW: 70, HIT: 70, EYE: 70}, 30)

	Convey("Given two samplers with the same seed", t, func() {
		a := search.NewSampler(42, ranges)
		b := search.NewSampler(42, ranges)

		Convey("Then they produce the same trials with increasing sequence numbers", func() {
			for i := range 50 {
				ta, tb := a.Next(), b.Next()
				So(ta, ShouldResemble, tb)
				So(ta.Seq, ShouldEqual, i)
				So(ta.Seed, ShouldEqual, uint64(42))
			}
		})
	})
}

func TestEvaluator(t *testing.T) {
	target := model.TargetProfile{
		Name:    "median",
		PA:      600,
		Counts:  model.TargetCounts{HR: 20, BB: 51, K: 132},
		Ratios:  model.TargetRatios{BA: 0.255, OBP: 0.325, SLG: 0.425, OPS: 0.750, KRate: 0.22, BBRate: 0.085},
		HBPRate: 0.010,
	}
	anchor := model.Attributes{POW: 70, HIT: 70, EYE: 70}
	ev := search.NewEvaluator(probability.Default(), target, anchor)
	stage := search.Stage{Seasons: 10, Weights: map[string]float64{"BA": 1, "HR": 1}, Penalty: 0.01}
	sc := stage.Scorer()

	Convey("Given a trial", t, func() {
		trial := model.Trial{Seq: 3, Attributes: anchor, Seed: 9}

		Convey("Then evaluation is reproducible", func() {
			a := ev.Trial(trial, stage, sc)
			b := ev.Trial(trial, stage, sc)
			So(a, ShouldResemble, b)
			So(a.Candidate.Seq, ShouldEqual, 3)
			So(a.Stats.PA, ShouldEqual, 600.0)
		})

		Convey("Then refinement draws from a different stream", func() {
			a := ev.Trial(trial, stage, sc)
			r := ev.Refine(a.Candidate, stage, sc, trial.Seed)
			So(r.Candidate.Attributes, ShouldResemble, anchor)
			So(r.Stats, ShouldNotResemble, a.Stats)
		})

		Convey("Then a distant triple scores worse", func() {
			near := ev.Evaluate(anchor, 0, 40, sc, 1)
			far := ev.Evaluate(model.Attributes{POW: 140, HIT: 20, EYE: 70}, 0, 40, sc, 1)
			So(far.Candidate.Error, ShouldBeGreaterThan, near.Candidate.Error)
		})
	})
}

func TestSelectBest(t *testing.T) {
	mk := func(seq int, e float64) search.Result {
		return search.Result{Candidate: model.Candidate{Seq: seq, Error: e}}
	}

	Convey("Given no results", t, func() {
		_, ok := search.SelectBest(nil)
		So(ok, ShouldBeFalse)
	})

	Convey("Given results with a tie for lowest error", t, func() {
		best, ok := search.SelectBest([]search.Result{mk(5, 0.4), mk(2, 0.1), mk(1, 0.1), mk(0, 0.3)})
		So(ok, ShouldBeTrue)
		So(best.Candidate.Seq, ShouldEqual, 2)
	})
}
