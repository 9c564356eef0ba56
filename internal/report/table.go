package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/batsim/internal/domain/model"
)

// Line is one statistic compared against its target. Target is NaN when the
// profile does not carry the statistic.
type Line struct {
	Stat   string
	Sim    float64
	Target float64
	Ratio  bool
}

// Diff returns Sim - Target, or NaN without a target.
func (l Line) Diff() float64 { return l.Sim - l.Target }

// Compare lines up simulated stats with a target profile.
func Compare(sim model.SeasonStats, target model.TargetProfile) []Line {
	orNaN := func(v float64) float64 {
		if v == 0 {
			return math.NaN()
		}
		return v
	}
	count := func(v int) float64 { return orNaN(float64(v)) }
	r, c := target.Ratios, target.Counts
	return []Line{
		{Stat: "BA", Sim: sim.BA, Target: orNaN(r.BA), Ratio: true},
		{Stat: "OBP", Sim: sim.OBP, Target: orNaN(r.OBP), Ratio: true},
		{Stat: "SLG", Sim: sim.SLG, Target: orNaN(r.SLG), Ratio: true},
		{Stat: "OPS", Sim: sim.OPS, Target: orNaN(r.OPS), Ratio: true},
		{Stat: "K%", Sim: sim.KRate, Target: orNaN(r.KRate), Ratio: true},
		{Stat: "BB%", Sim: sim.BBRate, Target: orNaN(r.BBRate), Ratio: true},
		{Stat: "HR", Sim: sim.HR, Target: count(c.HR)},
		{Stat: "2B", Sim: sim.Doubles, Target: count(c.Doubles)},
		{Stat: "1B", Sim: sim.Singles, Target: count(c.Singles)},
		{Stat: "BB", Sim: sim.BB, Target: count(c.BB)},
		{Stat: "HBP", Sim: sim.HBP, Target: count(c.HBP)},
		{Stat: "K", Sim: sim.K, Target: count(c.K)},
		{Stat: "H", Sim: sim.H, Target: count(c.H)},
		{Stat: "AB", Sim: sim.AB, Target: count(c.AB)},
	}
}

func format(v float64, ratio bool) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case ratio:
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
}

// WriteComparison renders a sim-vs-target table under a heading.
func WriteComparison(w io.Writer, heading string, a model.Attributes, sim model.SeasonStats, target model.TargetProfile) error {
	if _, err := fmt.Fprintf(w, "== %s (%s) ==\n", heading, a); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "stat\tsim\ttarget\tdiff\t")
	for _, l := range Compare(sim, target) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", l.Stat, format(l.Sim, l.Ratio), format(l.Target, l.Ratio), format(l.Diff(), l.Ratio))
	}
	return tw.Flush()
}

// WriteCalibration renders a calibration summary.
func WriteCalibration(w io.Writer, c model.Calibration) error {
	_, err := fmt.Fprintf(w,
		"== calibration %s ==\nrun:      %s\nanchor:   %s\nbest:     %s\nerror:    %.4f\nstage 1:  %s trials, %s kept, %d seasons each, %s\nstage 2:  %s candidates, %d seasons each, %s\n",
		c.Name, c.RunID, c.Anchor, c.Best, c.Error,
		humanize.Comma(int64(c.StageOne.Trials)), humanize.Comma(int64(c.StageOne.Retained)), c.StageOne.Seasons, c.StageOne.Duration.Round(time.Millisecond),
		humanize.Comma(int64(c.StageTwo.Trials)), c.StageTwo.Seasons, c.StageTwo.Duration.Round(time.Millisecond),
	)
	return err
}

var sweepHeader = []string{"value", "pow", "hit", "eye", "ba", "obp", "slg", "ops", "k_rate", "bb_rate", "hr", "doubles", "singles", "bb", "k"}

func sweepRecord(r SweepRow) []string {
	f3 := func(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
	f1 := func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
	s := r.Stats
	return []string{
		f1(r.Value), f1(r.Attributes.POW), f1(r.Attributes.HIT), f1(r.Attributes.EYE),
		f3(s.BA), f3(s.OBP), f3(s.SLG), f3(s.OPS), f3(s.KRate), f3(s.BBRate),
		f1(s.HR), f1(s.Doubles), f1(s.Singles), f1(s.BB), f1(s.K),
	}
}

// WriteSweep renders sweep rows as an aligned table.
func WriteSweep(w io.Writer, attr Attribute, rows []SweepRow) error {
	if _, err := fmt.Fprintf(w, "== %s sweep (%s points) ==\n", attr, humanize.Comma(int64(len(rows)))); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for i, h := range sweepHeader {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw, "\t")
	for _, r := range rows {
		for i, v := range sweepRecord(r) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, v)
		}
		fmt.Fprintln(tw, "\t")
	}
	return tw.Flush()
}

// WriteSweepCSV writes sweep rows as CSV with a header.
func WriteSweepCSV(w io.Writer, rows []SweepRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sweepHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(sweepRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
