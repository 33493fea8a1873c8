package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/dingerzone/seatfinder/internal/adapters/http/api"
	"github.com/dingerzone/seatfinder/internal/adapters/imagefetch"
	"github.com/dingerzone/seatfinder/internal/adapters/stadium"
	"github.com/dingerzone/seatfinder/internal/adapters/storage"
	service "github.com/dingerzone/seatfinder/internal/app"
	"github.com/dingerzone/seatfinder/internal/domain/density"
	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/internal/domain/teams"
	. "github.com/smartystreets/goconvey/convey"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

type mockDeps struct {
	got        service.Request
	predictErr error
	validated  bool
	artifacts  map[string][]byte
	stadiums   []string
}

func (m *mockDeps) Predict(_ context.Context, req service.Request) (*service.Prediction, error) {
	m.got = req
	if m.predictErr != nil {
		return nil, m.predictErr
	}
	return &service.Prediction{
		ID:       "abc",
		Result:   model.BestSeatResult{X: -120.456, Y: 330.5, Validated: m.validated},
		PNG:      pngBytes,
		Name:     "abc.png",
		Location: "output/abc.png",
	}, nil
}

func (m *mockDeps) Artifact(_ context.Context, name string) (io.ReadCloser, error) {
	if strings.Contains(name, "..") {
		return nil, storage.ErrInvalidName
	}
	data, ok := m.artifacts[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockDeps) Stadiums(context.Context) ([]string, error) { return m.stadiums, nil }

func (m *mockDeps) Teams() []string { return []string{"Boston Red Sox", "New York Yankees"} }

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newRouter(deps *mockDeps) *mux.Router {
	r := mux.NewRouter()
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	server.Register(context.Background(), r)
	return r
}

func postForm(r http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) (string, string) {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(w.Body).Decode(&body)
	return body.Code, body.Message
}

func validForm() url.Values {
	return url.Values{
		"team1": {"New York Yankees"},
		"team2": {"Boston Red Sox"},
		"venue": {"Fenway Park"},
	}
}

func TestPredictHandler(t *testing.T) {
	Convey("Given an API router", t, func() {
		deps := &mockDeps{validated: true}
		r := newRouter(deps)

		Convey("When a valid form is posted", func() {
			w := postForm(r, validForm())

			Convey("Then the PNG is returned with prediction headers", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(w.Body.Bytes(), ShouldResemble, pngBytes)
				So(w.Header().Get(api.HeaderBestSeatX), ShouldEqual, "-120.46")
				So(w.Header().Get(api.HeaderBestSeatY), ShouldEqual, "330.50")
				So(w.Header().Get(api.HeaderSource), ShouldEqual, "seat")
				So(w.Header().Get(api.HeaderLocation), ShouldEqual, "output/abc.png")
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(deps.got.Venue, ShouldEqual, "Fenway Park")
			})
		})

		Convey("When a multipart form is posted", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			for k, v := range validForm() {
				_ = mw.WriteField(k, v[0])
			}
			_ = mw.Close()
			req := httptest.NewRequest(http.MethodPost, "/predict", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.got.Team1, ShouldEqual, "New York Yankees")
			})
		})

		Convey("When valid JSON is posted", func() {
			w := postJSON(r, `{"team1":"New York Yankees","team2":"Boston Red Sox","venue":"Fenway Park"}`)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.got.Team2, ShouldEqual, "Boston Red Sox")
			})
		})

		Convey("When the prediction falls back", func() {
			deps.validated = false
			w := postForm(r, validForm())

			Convey("Then the source header says so", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get(api.HeaderSource), ShouldEqual, "fallback")
			})
		})

		Convey("When JSON is missing a field", func() {
			w := postJSON(r, `{"team1":"New York Yankees","venue":"Fenway Park"}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				code, msg := decodeError(w)
				So(code, ShouldEqual, "bad_request")
				So(msg, ShouldContainSubstring, "team2")
			})
		})

		Convey("When JSON carries unknown fields", func() {
			w := postJSON(r, `{"team1":"a","team2":"b","venue":"c","artifact":"x"}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is not JSON", func() {
			w := postJSON(r, `not json`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the media type is unsupported", func() {
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("team1"))
			req.Header.Set("Content-Type", "text/plain")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Convey("Then 415 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusUnsupportedMediaType)
			})
		})

		Convey("When the body is too large", func() {
			big := strings.Repeat("x", 2<<20)
			w := postJSON(r, fmt.Sprintf(`{"team1":"%s"}`, big))

			Convey("Then 413 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})

		Convey("When the OPTIONS preflight is sent", func() {
			req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Convey("Then CORS headers are returned without a body", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Header().Get("Access-Control-Allow-Methods"), ShouldContainSubstring, "POST")
				So(w.Header().Get("Access-Control-Expose-Headers"), ShouldContainSubstring, api.HeaderSource)
			})
		})
	})
}

func TestPredictErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"same teams", service.ErrSameTeams, http.StatusBadRequest, "same_teams"},
		{"unknown team", fmt.Errorf("%w: %q", teams.ErrUnknownTeam, "x"), http.StatusBadRequest, "bad_request"},
		{"unknown stadium", stadium.ErrUnknownStadium, http.StatusNotFound, "unknown_stadium"},
		{"too few points", fmt.Errorf("density fit over 1 points: %w", density.ErrTooFewPoints), http.StatusUnprocessableEntity, "insufficient_data"},
		{"degenerate", density.ErrDegenerate, http.StatusUnprocessableEntity, "insufficient_data"},
		{"image fetch", imagefetch.ErrFetch, http.StatusBadGateway, "upstream"},
		{"not started", service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
		{"other", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "internal"},
	}

	Convey("Given predictions that fail", t, func() {
		for _, tc := range cases {
			tc := tc
			Convey("When the failure is "+tc.name, func() {
				r := newRouter(&mockDeps{predictErr: tc.err})
				w := postForm(r, validForm())

				Convey("Then it maps to its status", func() {
					So(w.Code, ShouldEqual, tc.status)
					code, _ := decodeError(w)
					So(code, ShouldEqual, tc.code)
				})
			})
		}

		Convey("When the teams are the same", func() {
			r := newRouter(&mockDeps{predictErr: service.ErrSameTeams})
			w := postForm(r, validForm())

			Convey("Then the message matches the form contract", func() {
				_, msg := decodeError(w)
				So(msg, ShouldEqual, "Teams must be different")
			})
		})

		Convey("When the failure is internal", func() {
			r := newRouter(&mockDeps{predictErr: fmt.Errorf("secret path /var/x")})
			w := postForm(r, validForm())

			Convey("Then internal details are not leaked", func() {
				_, msg := decodeError(w)
				So(msg, ShouldNotContainSubstring, "secret")
			})
		})
	})
}

func TestReadRoutes(t *testing.T) {
	Convey("Given an API router with one stored artifact", t, func() {
		deps := &mockDeps{
			artifacts: map[string][]byte{"abc.png": pngBytes},
			stadiums:  []string{"Fenway Park", "Yankee Stadium"},
		}
		r := newRouter(deps)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		Convey("Then the artifact is served", func() {
			w := get("/images/abc.png")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(w.Body.Bytes(), ShouldResemble, pngBytes)
		})

		Convey("Then a missing artifact is 404", func() {
			So(get("/images/nope.png").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then stadiums are listed", func() {
			w := get("/stadiums")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body struct {
				Stadiums []string `json:"stadiums"`
			}
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body.Stadiums, ShouldResemble, []string{"Fenway Park", "Yankee Stadium"})
		})

		Convey("Then teams are listed", func() {
			w := get("/teams")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Boston Red Sox")
		})

		Convey("Then stats are served as JSON", func() {
			w := get("/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then healthz serves Prometheus metrics", func() {
			w := get("/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "seatfinder_")
		})

		Convey("Then GET /predict is not allowed", func() {
			So(get("/predict").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := fmt.Errorf("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause are reachable", func() {
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
			So(strings.Contains(api.NewKind("api.op", api.ErrUnsupportedMedia).Error(), "unsupported"), ShouldBeTrue)
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
