package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpapi "github.com/surfguard/surfguard/internal/adapters/httpapi"
	"github.com/surfguard/surfguard/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeSystem implements the handler dependency contract with canned
// state so transport behavior can be asserted in isolation.
type fakeSystem struct {
	running   bool
	paused    bool
	startOK   bool
	exportErr error

	starts  int
	stops   int
	pauses  int
	resumes int
}

func (f *fakeSystem) Start(context.Context) bool {
	f.starts++
	f.running = f.startOK
	return f.startOK
}

func (f *fakeSystem) Stop(context.Context) {
	f.stops++
	f.running = false
}

func (f *fakeSystem) Pause(context.Context)  { f.pauses++; f.paused = true }
func (f *fakeSystem) Resume(context.Context) { f.resumes++; f.paused = false }
func (f *fakeSystem) Running() bool          { return f.running }
func (f *fakeSystem) Paused() bool           { return f.paused }

func (f *fakeSystem) Metrics() app.MetricsSnapshot {
	return app.MetricsSnapshot{FrameCount: 42, BlurActive: true}
}

func (f *fakeSystem) ExportReport(_ context.Context, path string) (string, error) {
	if f.exportErr != nil {
		return "", f.exportErr
	}
	if path == "" {
		path = "logs/detection_logs_20250601_100000.json"
	}
	return path, nil
}

func newTestServer(deps httpapi.Dependencies) *httptest.Server {
	mux := http.NewServeMux()
	httpapi.NewServer(deps).Register(mux)
	return httptest.NewServer(mux)
}

func TestStatusEndpoint(t *testing.T) {
	Convey("Given the status endpoint", t, func() {
		sys := &fakeSystem{running: true, paused: true}
		srv := newTestServer(sys)
		defer srv.Close()

		Convey("When querying with GET", func() {
			resp, err := http.Get(srv.URL + "/status")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the lifecycle state is reported", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body struct {
					Running bool `json:"running"`
					Paused  bool `json:"paused"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Running, ShouldBeTrue)
				So(body.Paused, ShouldBeTrue)
			})
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Post(srv.URL+"/status", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestMetricsEndpoint(t *testing.T) {
	Convey("Given the metrics endpoint", t, func() {
		srv := newTestServer(&fakeSystem{})
		defer srv.Close()

		Convey("When querying with GET", func() {
			resp, err := http.Get(srv.URL + "/metrics.json")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the snapshot is returned as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldStartWith, "application/json")

				var snapshot app.MetricsSnapshot
				So(json.NewDecoder(resp.Body).Decode(&snapshot), ShouldBeNil)
				So(snapshot.FrameCount, ShouldEqual, 42)
				So(snapshot.BlurActive, ShouldBeTrue)
			})
		})
	})
}

func TestControlEndpoint(t *testing.T) {
	Convey("Given the control endpoint", t, func() {
		post := func(srv *httptest.Server, body string) *http.Response {
			resp, err := http.Post(srv.URL+"/control", "application/json", strings.NewReader(body))
			So(err, ShouldBeNil)
			return resp
		}

		Convey("When requesting start", func() {
			sys := &fakeSystem{startOK: true}
			srv := newTestServer(sys)
			defer srv.Close()

			resp := post(srv, `{"action":"start"}`)
			defer resp.Body.Close()

			Convey("Then the system starts and reports ok", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(sys.starts, ShouldEqual, 1)

				var body struct {
					Action string `json:"action"`
					OK     bool   `json:"ok"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Action, ShouldEqual, "start")
				So(body.OK, ShouldBeTrue)
			})
		})

		Convey("When start is rejected by the system", func() {
			sys := &fakeSystem{startOK: false}
			srv := newTestServer(sys)
			defer srv.Close()

			resp := post(srv, `{"action":"start"}`)
			defer resp.Body.Close()

			Convey("Then ok is false but the request succeeds", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body struct {
					OK bool `json:"ok"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.OK, ShouldBeFalse)
			})
		})

		Convey("When requesting stop, pause and resume", func() {
			sys := &fakeSystem{running: true}
			srv := newTestServer(sys)
			defer srv.Close()

			for _, action := range []string{"pause", "resume", "stop"} {
				resp := post(srv, `{"action":"`+action+`"}`)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				resp.Body.Close()
			}

			Convey("Then each action reaches the system once", func() {
				So(sys.pauses, ShouldEqual, 1)
				So(sys.resumes, ShouldEqual, 1)
				So(sys.stops, ShouldEqual, 1)
			})
		})

		Convey("When the action is unknown", func() {
			srv := newTestServer(&fakeSystem{})
			defer srv.Close()

			resp := post(srv, `{"action":"reboot"}`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the body is malformed", func() {
			srv := newTestServer(&fakeSystem{})
			defer srv.Close()

			resp := post(srv, `{"action":`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using GET", func() {
			srv := newTestServer(&fakeSystem{})
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/control")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the method is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestExportEndpoint(t *testing.T) {
	Convey("Given the report export endpoint", t, func() {
		Convey("When exporting with an explicit path", func() {
			srv := newTestServer(&fakeSystem{})
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/report/export", "application/json",
				strings.NewReader(`{"path":"out/report.json"}`))
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the written path is echoed back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body struct {
					Path string `json:"path"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Path, ShouldEqual, "out/report.json")
			})
		})

		Convey("When exporting with an empty body", func() {
			srv := newTestServer(&fakeSystem{})
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/report/export", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then a derived path is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body struct {
					Path string `json:"path"`
				}
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body.Path, ShouldNotBeEmpty)
			})
		})

		Convey("When the export fails", func() {
			srv := newTestServer(&fakeSystem{exportErr: errors.New("disk full")})
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/report/export", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then a server error is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		srv := newTestServer(&fakeSystem{})
		defer srv.Close()

		Convey("When querying with GET", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the metrics registry is served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
