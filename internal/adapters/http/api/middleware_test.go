package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/okian/xgxt/internal/adapters/session"
	"github.com/okian/xgxt/pkg/logger"
	"github.com/okian/xgxt/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// httpErrors reads the error counter for endpoint and kind from the registry.
func httpErrors(endpoint, kind string) float64 {
	mfs, err := metrics.GetRegistry().Gather()
	So(err, ShouldBeNil)
	for _, mf := range mfs {
		if mf.GetName() != "xgxt_web_http_errors_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["endpoint"] == endpoint && labels["kind"] == kind {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestGetErrorType(t *testing.T) {
	Convey("Given error status codes", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(413), ShouldEqual, "too_large")
		So(getErrorType(422), ShouldEqual, "invalid_file")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(405), ShouldEqual, "client_error")
		So(getErrorType(200), ShouldEqual, "unknown")
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a router with the logging and recover middleware", t, func() {
		var logs bytes.Buffer
		log := logger.New(logger.WithFormat("json"), logger.WithWriter(&logs))
		r := mux.NewRouter()
		r.Use(LoggingMiddleware(log), RecoverMiddleware(log))
		r.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })
		r.HandleFunc("/missing", MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		}, "mw_test"))

		Convey("When a handler panics", func() {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

			Convey("Then a JSON 500 is returned and logged", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				var body errorResponse
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "internal")
				So(logs.String(), ShouldContainSubstring, "kaboom")
				So(logs.String(), ShouldContainSubstring, `"status":500`)
			})
		})

		Convey("When a wrapped handler returns an error status", func() {
			before := httpErrors("mw_test", "not_found")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

			Convey("Then the error is counted", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				after := httpErrors("mw_test", "not_found")
				So(after-before, ShouldEqual, 1)
			})
		})
	})
}

func TestSessionCookies(t *testing.T) {
	Convey("Given the session cookie helper", t, func() {
		c := sessionCookies{secure: true}

		Convey("When a request has no cookie", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			So(c.id(req), ShouldEqual, "")
			id := c.ensure(rec, req)

			Convey("Then a new id is issued as a cookie", func() {
				So(session.ValidID(id), ShouldBeTrue)
				set := rec.Header().Get("Set-Cookie")
				So(set, ShouldContainSubstring, SessionCookie+"="+id)
				So(set, ShouldContainSubstring, "HttpOnly")
				So(set, ShouldContainSubstring, "Secure")
				So(strings.ToLower(set), ShouldContainSubstring, "samesite=lax")
			})
		})

		Convey("When a request carries a valid cookie", func() {
			id := session.NewID()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
			rec := httptest.NewRecorder()

			So(c.ensure(rec, req), ShouldEqual, id)
			So(rec.Header().Get("Set-Cookie"), ShouldBeEmpty)
		})

		Convey("When a request carries a forged cookie", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc"})
			So(c.id(req), ShouldEqual, "")
		})
	})
}
