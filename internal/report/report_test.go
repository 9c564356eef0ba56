package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseAttribute(t *testing.T) {
	Convey("Given attribute names", t, func() {
		a, err := report.ParseAttribute(" pow ")
		So(err, ShouldBeNil)
		So(a, ShouldEqual, report.POW)

		_, err = report.ParseAttribute("SPD")
		So(errors.Is(err, report.ErrUnknownAttribute), ShouldBeTrue)
	})
}

func TestSweepRequest(t *testing.T) {
	Convey("Given the default sweep", t, func() {
		req := report.DefaultSweep(report.HIT)

		Convey("Then it covers the whole domain", func() {
			pts := req.Points()
			So(req.Validate(), ShouldBeNil)
			So(pts, ShouldHaveLength, 150)
			So(pts[0], ShouldEqual, 1)
			So(pts[149], ShouldEqual, 150)
		})
	})

	Convey("Given malformed sweeps", t, func() {
		base := report.DefaultSweep(report.EYE)
		bad := []func(*report.SweepRequest){
			func(r *report.SweepRequest) { r.Step = 0 },
			func(r *report.SweepRequest) { r.Min, r.Max = 100, 50 },
			func(r *report.SweepRequest) { r.Seasons = 0 },
			func(r *report.SweepRequest) { r.PA = -1 },
			func(r *report.SweepRequest) { r.Step = 0.0001 },
		}
		for _, mutate := range bad {
			r := base
			mutate(&r)
			So(errors.Is(r.Validate(), report.ErrInvalidSweep), ShouldBeTrue)
		}
	})
}

func TestSweep(t *testing.T) {
	m := probability.Default()

	Convey("Given a POW sweep", t, func() {
		req := report.DefaultSweep(report.POW)
		req.Min, req.Max, req.Step = 20, 140, 40
		req.Seasons = 30
		req.Seed = 7

		rows, err := report.Sweep(context.Background(), m, req)

		Convey("Then one row is produced per point with the others fixed", func() {
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 4)
			for _, r := range rows {
				So(r.Attributes.POW, ShouldEqual, r.Value)
				So(r.Attributes.HIT, ShouldEqual, report.DefaultFixed)
				So(r.Attributes.EYE, ShouldEqual, report.DefaultFixed)
				So(r.Stats.PA, ShouldEqual, 600)
			}
		})

		Convey("Then home runs climb with power", func() {
			So(rows[3].Stats.HR, ShouldBeGreaterThan, rows[0].Stats.HR)
		})

		Convey("Then the same seed reproduces the rows", func() {
			again, err := report.Sweep(context.Background(), m, req)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, rows)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := report.Sweep(ctx, m, report.DefaultSweep(report.EYE))

		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestCompare(t *testing.T) {
	Convey("Given a target without a HBP count", t, func() {
		target := model.TargetProfile{
			PA:     600,
			Counts: model.TargetCounts{HR: 30, BB: 60},
			Ratios: model.TargetRatios{BA: 0.280},
		}
		sim := model.SeasonStats{BA: 0.270, HR: 33}

		lines := report.Compare(sim, target)

		Convey("Then missing targets are NaN", func() {
			byStat := map[string]report.Line{}
			for _, l := range lines {
				byStat[l.Stat] = l
			}
			So(byStat["BA"].Diff(), ShouldAlmostEqual, -0.010, 1e-12)
			So(byStat["HR"].Diff(), ShouldEqual, 3)
			So(math.IsNaN(byStat["HBP"].Target), ShouldBeTrue)
		})

		Convey("Then the table renders them as dashes", func() {
			var buf bytes.Buffer
			So(report.WriteComparison(&buf, "Test", model.Attributes{POW: 70, HIT: 70, EYE: 70}, sim, target), ShouldBeNil)
			out := buf.String()
			So(out, ShouldContainSubstring, "== Test")
			So(out, ShouldContainSubstring, "0.280")
			So(out, ShouldContainSubstring, "-")
		})
	})
}

func TestWriters(t *testing.T) {
	rows := []report.SweepRow{
		{Value: 10, Attributes: model.Attributes{POW: 10, HIT: 70, EYE: 70}, Stats: model.SeasonStats{BA: 0.25, HR: 4}},
		{Value: 20, Attributes: model.Attributes{POW: 20, HIT: 70, EYE: 70}, Stats: model.SeasonStats{BA: 0.26, HR: 8}},
	}

	Convey("Given sweep rows", t, func() {
		Convey("When written as CSV", func() {
			var buf bytes.Buffer
			So(report.WriteSweepCSV(&buf, rows), ShouldBeNil)

			records, err := csv.NewReader(&buf).ReadAll()

			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 3)
			So(records[0][0], ShouldEqual, "value")
			So(records[2][0], ShouldEqual, "20.0")
			So(records[2][4], ShouldEqual, "0.260")
		})

		Convey("When written as a table", func() {
			var buf bytes.Buffer
			So(report.WriteSweep(&buf, report.POW, rows), ShouldBeNil)
			So(buf.String(), ShouldStartWith, "== POW sweep (2 points) ==")
			So(strings.Count(buf.String(), "\n"), ShouldEqual, 4)
		})
	})

	Convey("Given a calibration", t, func() {
		var buf bytes.Buffer
		c := model.Calibration{
			Name:     "Test",
			Best:     model.Attributes{POW: 90, HIT: 80, EYE: 70},
			Error:    0.1234,
			StageOne: model.StageSummary{Trials: 1500, Retained: 100, Seasons: 15, Duration: 2 * time.Second},
			StageTwo: model.StageSummary{Trials: 100, Seasons: 40, Duration: time.Second},
		}

		So(report.WriteCalibration(&buf, c), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "1,500 trials")
		So(buf.String(), ShouldContainSubstring, "0.1234")
	})
}
