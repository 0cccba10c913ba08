package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/batisback/loyverse-daily-sync/internal/adapters/http/api"
	"github.com/batisback/loyverse-daily-sync/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOpsEndpoints(t *testing.T) {
	Convey("Given the ops handlers", t, func() {
		Convey("When probing liveness", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			api.HandleHealth(rec, req)

			Convey("Then it should report ok as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json")
				So(rec.Body.String(), ShouldContainSubstring, `"ok"`)
			})
		})

		Convey("When scraping metrics", func() {
			metrics.RecordRun("success")
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

			Convey("Then sync metrics should be exposed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "attendance_sync_runs_total")
			})
		})
	})
}
