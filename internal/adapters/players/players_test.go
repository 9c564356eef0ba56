package players_test

import (
	"errors"
	"testing"

	"github.com/okian/batsim/internal/adapters/players"
	"github.com/okian/batsim/internal/domain/anchor"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given the embedded reference table", t, func() {
		tbl, err := players.Load()
		So(err, ShouldBeNil)

		Convey("Then it holds five players and four archetypes", func() {
			So(tbl.Players, ShouldHaveLength, 5)
			So(tbl.Archetypes, ShouldHaveLength, 4)
		})

		Convey("Then the benchmarks match the default map", func() {
			So(tbl.Benchmarks, ShouldResemble, anchor.DefaultMap())
		})

		Convey("Then derived rates are filled from counts", func() {
			judge, err := tbl.Player("Aaron Judge")
			So(err, ShouldBeNil)
			So(judge.Target.Name, ShouldEqual, "Aaron Judge")
			So(judge.Target.Ratios.KRate, ShouldAlmostEqual, 177.0/704, 1e-12)
			So(judge.Target.Ratios.BBRate, ShouldAlmostEqual, 133.0/704, 1e-12)
			So(judge.Target.HBPRate, ShouldAlmostEqual, 9.0/704, 1e-12)
		})

		Convey("Then explicit rates are kept", func() {
			arcia, err := tbl.Player("arcia")
			So(err, ShouldBeNil)
			So(arcia.Target.Ratios.KRate, ShouldEqual, 0.213)
		})

		Convey("Then anchors come from expected metrics", func() {
			judge, _ := tbl.Player("judge")
			a := judge.Anchor(tbl.Benchmarks)
			So(a.POW, ShouldBeGreaterThan, 99)
			So(a.HIT, ShouldBeGreaterThan, 90)
			So(a.EYE, ShouldBeGreaterThan, 99)
		})

		Convey("Then archetypes are found by name", func() {
			a, err := tbl.Archetype("pr50 (stat 70)")
			So(err, ShouldBeNil)
			So(a.Attributes.POW, ShouldEqual, 70.0)
			So(a.Target.HBPRate, ShouldEqual, 0.010)
		})

		Convey("Then unknown names are reported", func() {
			_, err := tbl.Player("Babe Ruth")
			So(errors.Is(err, players.ErrNotFound), ShouldBeTrue)
			_, err = tbl.Archetype("PR75")
			So(errors.Is(err, players.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given malformed tables", t, func() {
		Convey("When a field is unknown", func() {
			_, err := players.Parse([]byte("players:\n  - name: X\n    nickname: Y\n"))
			So(errors.Is(err, players.ErrInvalidTable), ShouldBeTrue)
		})

		Convey("When a target has no plate appearances", func() {
			_, err := players.Parse([]byte("players:\n  - name: X\n    target: {pa: 0}\n"))
			So(errors.Is(err, players.ErrInvalidTable), ShouldBeTrue)
		})
	})
}
