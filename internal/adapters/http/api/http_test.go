package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/maifilter/internal/adapters/http/api"
	"github.com/okian/maifilter/internal/adapters/source"
	service "github.com/okian/maifilter/internal/app"
	"github.com/okian/maifilter/internal/domain/query"
	"github.com/okian/maifilter/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records the last filter request and replays canned answers.
type mockDependencies struct {
	lastRequest service.Request
	filterResp  *service.Response
	filterErr   error
	reloadErr   error
	reloads     int
}

func (m *mockDependencies) Filter(_ context.Context, req service.Request) (*service.Response, error) {
	m.lastRequest = req
	if m.filterErr != nil {
		return nil, m.filterErr
	}
	return m.filterResp, nil
}

func (m *mockDependencies) Rating(ds, achv float64) (service.RatingResult, error) {
	if ds <= 0 {
		return service.RatingResult{}, service.ErrInvalidDifficulty
	}
	ra, rank := scoring.ComputeRa(ds, achv)
	return service.RatingResult{DS: ds, Achievement: achv, Rating: ra, Rank: rank}, nil
}

func (m *mockDependencies) Breakpoints(ds float64) ([]scoring.Breakpoint, error) {
	if ds <= 0 {
		return nil, service.ErrInvalidDifficulty
	}
	return scoring.Breakpoints(ds), nil
}

func (m *mockDependencies) ReloadCatalog(context.Context) error {
	m.reloads++
	return m.reloadErr
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.NewDecoder(w.Body).Decode(&out)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("Then the health endpoint should serve metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint should serve JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then the help endpoint should return the usage text", func() {
			w := do(mux, http.MethodGet, "/help", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]string
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["help"], ShouldEqual, service.HelpText)
		})

		Convey("Then wrong methods should be rejected", func() {
			So(do(mux, http.MethodGet, "/filter50", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/rating", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/catalog/reload", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestFilterHandler(t *testing.T) {
	Convey("Given a filter endpoint", t, func() {
		deps := &mockDependencies{filterResp: &service.Response{RequestID: "r-1", Nickname: "Alice", Rating: 542}}
		mux := newMux(deps)

		Convey("When posting tokens and chat args", func() {
			w := do(mux, http.MethodPost, "/filter50", `{"tokens":["diff13"],"args":"star=1  rev","qq":10001}`)

			Convey("Then the service should see every token in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastRequest.Tokens, ShouldResemble, []string{"diff13", "star=1", "rev"})
				So(deps.lastRequest.QQ, ShouldEqual, int64(10001))
				var resp service.Response
				So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
				So(resp.Nickname, ShouldEqual, "Alice")
				So(resp.Rating, ShouldEqual, 542)
			})
		})

		Convey("When the body is malformed", func() {
			w := do(mux, http.MethodPost, "/filter50", `{"tokens":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("When the query cannot be parsed", func() {
			deps.filterErr = &query.ParseError{Token: "bogus", Reason: query.ReasonUnknownArgument}
			w := do(mux, http.MethodPost, "/filter50", `{"args":"bogus","qq":1}`)

			Convey("Then the message should be passed through verbatim", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "parse_error")
				So(body["message"], ShouldEqual, "unknown argument: bogus")
			})
		})

		Convey("When the service reports data errors", func() {
			cases := []struct {
				err    error
				status int
				code   string
			}{
				{source.ErrNoAccount, http.StatusBadRequest, "bad_request"},
				{source.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
				{source.ErrQueryDisabled, http.StatusForbidden, "query_disabled"},
				{fmt.Errorf("%w: prober status 500", source.ErrUnavailable), http.StatusBadGateway, "upstream_unavailable"},
				{service.ErrNotStarted, http.StatusServiceUnavailable, "unavailable"},
				{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
			}
			for _, tc := range cases {
				deps.filterErr = tc.err
				w := do(mux, http.MethodPost, "/filter50", `{"qq":1}`)
				So(w.Code, ShouldEqual, tc.status)
				So(decodeError(w)["code"], ShouldEqual, tc.code)
			}
		})

		Convey("When the user is unknown", func() {
			deps.filterErr = source.ErrUserNotFound
			w := do(mux, http.MethodPost, "/filter50", `{"username":"ghost"}`)
			So(decodeError(w)["message"], ShouldEqual, "user not found")
			So(deps.lastRequest.Username, ShouldEqual, "ghost")
		})
	})
}

func TestInstrumentedRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{filterErr: source.ErrQueryDisabled}
		mux := newMux(deps)

		Convey("When requests fail with and without an error body", func() {
			So(do(mux, http.MethodPost, "/filter50", `{"qq":1}`).Code, ShouldEqual, http.StatusForbidden)
			So(do(mux, http.MethodPost, "/rating", "").Code, ShouldEqual, http.StatusNotFound)
			body := do(mux, http.MethodGet, "/healthz", "").Body.String()

			Convey("Then errors should be labelled by route and written code", func() {
				So(body, ShouldContainSubstring,
					`maifilter_filter50_errors_by_endpoint_total{endpoint="filter50",error_type="query_disabled",method="POST"}`)
				So(body, ShouldContainSubstring,
					`maifilter_filter50_errors_by_endpoint_total{endpoint="rating",error_type="not_found",method="POST"}`)
				So(body, ShouldContainSubstring,
					`maifilter_filter50_http_requests_total{endpoint="filter50",method="POST",status_code="403"}`)
			})
		})
	})
}

func TestScoringHandler(t *testing.T) {
	Convey("Given the scoring endpoints", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When asking for a rating", func() {
			w := do(mux, http.MethodGet, "/rating?ds=14&achv=100", "")

			Convey("Then the rating and rank should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res service.RatingResult
				So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
				So(res.Rating, ShouldEqual, 302)
				So(res.Rank, ShouldEqual, "SSS")
			})
		})

		Convey("When parameters are missing or invalid", func() {
			w := do(mux, http.MethodGet, "/rating?ds=14", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "missing achv")

			w = do(mux, http.MethodGet, "/breakpoints?ds=abc", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "invalid ds")

			w = do(mux, http.MethodGet, "/rating?ds=0&achv=100", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When asking for breakpoints", func() {
			w := do(mux, http.MethodGet, "/breakpoints?ds=13.5", "")

			Convey("Then the full ladder should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					DS          float64              `json:"ds"`
					Breakpoints []scoring.Breakpoint `json:"breakpoints"`
				}
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body.DS, ShouldEqual, 13.5)
				So(body.Breakpoints, ShouldNotBeEmpty)
				So(body.Breakpoints[len(body.Breakpoints)-1].Achievement, ShouldEqual, 100.5)
			})
		})
	})
}

func TestCatalogHandler(t *testing.T) {
	Convey("Given the reload endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When the reload succeeds", func() {
			w := do(mux, http.MethodPost, "/catalog/reload", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.reloads, ShouldEqual, 1)
		})

		Convey("When the reload fails", func() {
			deps.reloadErr = errors.New("disk gone")
			w := do(mux, http.MethodPost, "/catalog/reload", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["message"], ShouldContainSubstring, "api.catalog_reload")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("cause")

		Convey("Then kinds and causes should both match", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: cause")
		})

		Convey("Then the short forms should render the op", func() {
			So(api.NewKind("api.op", api.ErrNotFound).Error(), ShouldEqual, "api.op: not found")
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: cause")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
