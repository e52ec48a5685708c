package metrics

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.uploads.WithLabelValues(string(UploadAccepted)).Inc()

			Convey("Then its metrics live on that registry", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_uploads_total")
				So(names, ShouldContain, "test_unit_active_sessions")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording uploads", func() {
			before := testutil.ToFloat64(globalManager.uploads.WithLabelValues(string(UploadRejected)))
			RecordUpload(UploadRejected)

			Convey("Then the matching counter moves", func() {
				after := testutil.ToFloat64(globalManager.uploads.WithLabelValues(string(UploadRejected)))
				So(after-before, ShouldEqual, 1)
			})

			Convey("And unknown results are counted as failed", func() {
				failed := testutil.ToFloat64(globalManager.uploads.WithLabelValues(string(UploadFailed)))
				RecordUpload(UploadResult("maybe"))
				So(testutil.ToFloat64(globalManager.uploads.WithLabelValues(string(UploadFailed)))-failed, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.uploads.WithLabelValues("maybe")), ShouldEqual, 0)
			})
		})

		Convey("When recording rows", func() {
			acc := testutil.ToFloat64(globalManager.rowsAccepted)
			rej := testutil.ToFloat64(globalManager.rowsRejected)
			RecordRows(10, 2, 3)
			RecordRows(-1, -1, -1)

			Convey("Then negative counts are ignored", func() {
				So(testutil.ToFloat64(globalManager.rowsAccepted)-acc, ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.rowsRejected)-rej, ShouldEqual, 2)
			})
		})

		Convey("When recording renders and sessions", func() {
			So(func() {
				RecordRender("dataset", 1.5)
				RecordRenderError("dataset")
				UpdateActiveSessions(3)
				RecordSessionEvicted()
				RecordHTTPRequest("/", "GET", "200")
				RecordHTTPRequestDuration("/", "GET", "200", 2)
				RecordHTTPError("/upload", "POST", "validation")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.activeSessions), ShouldEqual, 3)
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		RecordRender("xg-shots", 1)
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		Convey("Then rendered figures are exported with their label", func() {
			found := false
			for _, f := range families {
				if f.GetName() != "xgxt_web_renders_total" {
					continue
				}
				for _, m := range f.GetMetric() {
					for _, l := range m.GetLabel() {
						if l.GetName() == "figure" && strings.EqualFold(l.GetValue(), "xg-shots") {
							found = true
						}
					}
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					RecordRender("dataset", float64(j))
					RecordHTTPRequest("/figure.svg", "GET", "200")
				}
			}()
		}
		wg.Wait()
		So(testutil.CollectAndCount(globalManager.renders), ShouldBeGreaterThan, 0)
	})
}
