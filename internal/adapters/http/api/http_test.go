package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/batsim/internal/adapters/http/api"
	"github.com/okian/batsim/internal/adapters/players"
	"github.com/okian/batsim/internal/domain/dedupe"
	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/internal/domain/probability"
	"github.com/okian/batsim/internal/domain/search"
	"github.com/okian/batsim/internal/report"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies is an in-memory stand-in for the calibration service.
type mockDependencies struct {
	dedupe.Deduper

	model      *probability.Model
	table      []players.Player
	calibrated []model.TargetProfile
	calErr     error
	sweepReq   report.SweepRequest
	hbpSeen    float64
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		Deduper: dedupe.NewInMemoryDeduper(),
		model:   probability.Default(),
		table: []players.Player{{
			Name:    "Aaron Judge",
			Season:  2024,
			Metrics: players.Metrics{XBA: 0.300, XSLG: 0.700, XWOBA: 0.480},
			Target:  model.TargetProfile{Name: "Aaron Judge", PA: 704, Counts: model.TargetCounts{HR: 58}},
		}},
	}
}

func (m *mockDependencies) AtBat(ctx context.Context, a model.Attributes, hbp float64) (model.Outcome, model.Probabilities, error) {
	m.hbpSeen = hbp
	return model.HR, m.model.Probabilities(a.POW, a.HIT, a.EYE, hbp), nil
}

func (m *mockDependencies) Probabilities(ctx context.Context, a model.Attributes, hbp float64) (model.Probabilities, error) {
	m.hbpSeen = hbp
	return m.model.Probabilities(a.POW, a.HIT, a.EYE, hbp), nil
}

func (m *mockDependencies) Calibrate(ctx context.Context, anchor model.Attributes, target model.TargetProfile, ranges model.Ranges) (model.Calibration, error) {
	if m.calErr != nil {
		return model.Calibration{}, m.calErr
	}
	m.calibrated = append(m.calibrated, target)
	return model.Calibration{RunID: "run-1", Name: target.Name, Best: anchor, Anchor: anchor, Ranges: ranges, Error: 0.05}, nil
}

func (m *mockDependencies) Anchor(pm players.Metrics) model.Attributes {
	return model.Attributes{POW: pm.XSLG * 100, HIT: pm.XBA * 100, EYE: pm.XWOBA * 100}
}

func (m *mockDependencies) Ranges(a model.Attributes) model.Ranges {
	return model.Ranges{
		POW: model.Range{Low: a.POW - 10, High: a.POW + 10},
		HIT: model.Range{Low: a.HIT - 10, High: a.HIT + 10},
		EYE: model.Range{Low: a.EYE - 10, High: a.EYE + 10},
	}
}

func (m *mockDependencies) Players(ctx context.Context) ([]players.Player, error) {
	return m.table, nil
}

func (m *mockDependencies) Player(ctx context.Context, name string) (players.Player, error) {
	t := players.Table{Players: m.table}
	return t.Player(name)
}

func (m *mockDependencies) Sweep(ctx context.Context, req report.SweepRequest) ([]report.SweepRow, error) {
	m.sweepReq = req
	return []report.SweepRow{{Value: req.Min}}, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any { return m.stats }

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]any{"started": true}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDependencies())

		Convey("Then the health endpoint serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then wrong methods are not found", func() {
			So(do(mux, http.MethodGet, "/at-bat", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/calibrate", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/players", "{}").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "{}").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAtBatHandler(t *testing.T) {
	Convey("Given the at-bat endpoints", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When a valid at-bat is posted", func() {
			w := do(mux, http.MethodPost, "/at-bat", `{"pow":70,"hit":70,"eye":70,"hbp_rate":0.02}`)

			Convey("Then the outcome and distribution are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Outcome       string             `json:"outcome"`
					Probabilities map[string]float64 `json:"probabilities"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Outcome, ShouldEqual, "HR")
				So(body.Probabilities, ShouldHaveLength, model.NumOutcomes)
				So(body.Probabilities["K"], ShouldBeGreaterThan, 0)
				So(deps.hbpSeen, ShouldEqual, 0.02)
			})
		})

		Convey("When hbp_rate is omitted", func() {
			w := do(mux, http.MethodPost, "/probabilities", `{"pow":70,"hit":70,"eye":70}`)

			Convey("Then the league default is requested", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.hbpSeen, ShouldBeLessThan, 0)
				So(w.Body.String(), ShouldContainSubstring, `"attributes"`)
			})
		})

		Convey("When the body is invalid", func() {
			cases := []string{
				`{"pow":70,"hit":70}`,
				`{"pow":70,"hit":70,"eye":200}`,
				`{"pow":70,"hit":70,"eye":70,"hbp_rate":2}`,
				`{"pow":70,"hit":70,"eye":70,"speed":3}`,
				`not json`,
			}
			for _, body := range cases {
				w := do(mux, http.MethodPost, "/at-bat", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})
	})
}

func TestCalibrateHandler(t *testing.T) {
	Convey("Given the calibrate endpoint", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps, api.WithCalibrateLimit(1000, 1000))

		Convey("When a reference player is calibrated by surname", func() {
			w := do(mux, http.MethodPost, "/calibrate", `{"player":"judge"}`)

			Convey("Then the run uses the player's full target", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.calibrated, ShouldHaveLength, 1)
				So(deps.calibrated[0].Name, ShouldEqual, "Aaron Judge")
				So(w.Body.String(), ShouldContainSubstring, `"run_id":"run-1"`)
			})

			Convey("Then the in-flight guard is released", func() {
				So(deps.Size(), ShouldEqual, int64(0))
			})
		})

		Convey("When a custom target is posted with metrics", func() {
			body := `{"name":"Custom","metrics":{"xba":0.25,"xslg":0.40,"xwoba":0.32},"target":{"pa":600,"counts":{"hr":20}}}`
			w := do(mux, http.MethodPost, "/calibrate", body)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.calibrated[0].Name, ShouldEqual, "Custom")
			So(deps.calibrated[0].Counts.HR, ShouldEqual, 20)
		})

		Convey("When custom ranges fall outside the attribute domain", func() {
			anchor := `"anchor":{"pow":70,"hit":70,"eye":70},"target":{"pa":600}`
			cases := []string{
				`{"name":"X",` + anchor + `,"ranges":{"pow":{"low":5000,"high":9000},"hit":{"low":60,"high":80},"eye":{"low":60,"high":80}}}`,
				`{"name":"X",` + anchor + `,"ranges":{"pow":{"low":60,"high":80},"hit":{"low":-10,"high":80},"eye":{"low":60,"high":80}}}`,
				`{"name":"X",` + anchor + `,"ranges":{"pow":{"low":60,"high":80},"hit":{"low":60,"high":80},"eye":{"low":90,"high":10}}}`,
			}

			Convey("Then they are rejected before any run starts", func() {
				for _, body := range cases {
					w := do(mux, http.MethodPost, "/calibrate", body)
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(decodeError(w)["code"], ShouldEqual, "bad_request")
				}
				So(deps.calibrated, ShouldBeEmpty)
			})
		})

		Convey("When the service rejects the ranges", func() {
			deps.calErr = fmt.Errorf("calibrate: %w", search.ErrInvalidRange)
			w := do(mux, http.MethodPost, "/calibrate", `{"player":"Judge"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the same name is already running", func() {
			deps.SeenAndRecord(context.Background(), dedupe.Key("Aaron Judge"))
			w := do(mux, http.MethodPost, "/calibrate", `{"player":"Judge"}`)

			Convey("Then it is rejected with a conflict", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(w)["code"], ShouldEqual, "conflict")
				So(deps.calibrated, ShouldBeEmpty)
			})
		})

		Convey("When the player is unknown", func() {
			w := do(mux, http.MethodPost, "/calibrate", `{"player":"Nobody"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the request is malformed", func() {
			cases := []string{
				`{}`,
				`{"player":"Judge","target":{"pa":600}}`,
				`{"name":"X","target":{"pa":600}}`,
				`{"name":"X","anchor":{"pow":70,"hit":70,"eye":70}}`,
				`{"name":"X","anchor":{"pow":70,"hit":70,"eye":70},"metrics":{"xba":0.2},"target":{"pa":600}}`,
				`{"name":"X","anchor":{"pow":700,"hit":70,"eye":70},"target":{"pa":600}}`,
			}
			for _, body := range cases {
				So(do(mux, http.MethodPost, "/calibrate", body).Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the calibration fails", func() {
			deps.calErr = fmt.Errorf("stage one: %w", context.DeadlineExceeded)
			w := do(mux, http.MethodPost, "/calibrate", `{"player":"Judge"}`)

			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(deps.Size(), ShouldEqual, int64(0))
		})
	})

	Convey("Given a calibrate endpoint with a burst of one", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps, api.WithCalibrateLimit(0.001, 1))

		Convey("When two requests arrive back to back", func() {
			first := do(mux, http.MethodPost, "/calibrate", `{"player":"Judge"}`)
			second := do(mux, http.MethodPost, "/calibrate", `{"player":"Judge"}`)

			Convey("Then the second is throttled", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(second)["code"], ShouldEqual, "backpressure")
			})
		})
	})
}

func TestPlayersHandler(t *testing.T) {
	Convey("Given the players endpoints", t, func() {
		mux := newMux(newMockDependencies())

		Convey("When listing players", func() {
			w := do(mux, http.MethodGet, "/players", "")

			So(w.Code, ShouldEqual, http.StatusOK)
			var body []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body, ShouldHaveLength, 1)
			So(body[0]["name"], ShouldEqual, "Aaron Judge")
			So(body[0], ShouldContainKey, "anchor")
		})

		Convey("When fetching one player", func() {
			So(do(mux, http.MethodGet, "/players/judge", "").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/players/nobody", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/players/", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestSweepHandler(t *testing.T) {
	Convey("Given the sweep endpoint", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps)

		Convey("When sweeping with explicit parameters", func() {
			w := do(mux, http.MethodGet, "/sweep?attr=pow&min=10&max=50&step=20&seasons=5&pa=300&seed=9", "")

			Convey("Then they reach the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.sweepReq.Attribute, ShouldEqual, report.POW)
				So(deps.sweepReq.Min, ShouldEqual, 10.0)
				So(deps.sweepReq.Max, ShouldEqual, 50.0)
				So(deps.sweepReq.Step, ShouldEqual, 20.0)
				So(deps.sweepReq.Seasons, ShouldEqual, 5)
				So(deps.sweepReq.PA, ShouldEqual, 300)
				So(deps.sweepReq.Seed, ShouldEqual, uint64(9))
				So(w.Body.String(), ShouldContainSubstring, `"attribute":"POW"`)
			})
		})

		Convey("When the parameters are invalid", func() {
			for _, q := range []string{"", "?attr=SPD", "?attr=HIT&step=x", "?attr=HIT&min=100&max=10", "?attr=EYE&seasons=0"} {
				So(do(mux, http.MethodGet, "/sweep"+q, "").Code, ShouldEqual, http.StatusBadRequest)
			}
		})
	})
}
