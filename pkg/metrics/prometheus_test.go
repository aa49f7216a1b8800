package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	metrics "github.com/seedevk8s/scms-competency/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGlobalManager(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording a sample of each metric family", func() {
			metrics.RecordAssessmentRecorded()
			metrics.RecordAssessmentRejected()
			metrics.RecordSubmissionDuplicate()
			metrics.RecordReportGenerated()
			metrics.RecordReportLatency(1.5)
			metrics.RecordRecommendationServed()
			metrics.RecordRecommendationLatency(0.5)
			metrics.RecordIngestLatency(2.0)
			metrics.RecordIngestError()
			metrics.UpdateQueueSize(3)
			metrics.UpdateQueueCapacity(100)
			metrics.RecordQueueEnqueue()
			metrics.RecordQueueDequeue()
			metrics.RecordQueueEnqueueError()
			metrics.UpdateWorkerCount(4)
			metrics.UpdateStoreRecordsTotal(7)
			metrics.RecordStoreUpdateLatency(0.1)
			metrics.RecordStoreQueryLatency(0.1)
			metrics.RecordHTTPRequest("assessments", "POST", "201")
			metrics.RecordHTTPRequestDuration("assessments", "POST", "201", 1.2)

			families, err := metrics.GetRegistry().Gather()

			Convey("Then the registry exposes the competency families", func() {
				So(err, ShouldBeNil)

				names := make(map[string]struct{}, len(families))
				for _, f := range families {
					names[f.GetName()] = struct{}{}
				}
				for _, want := range []string{
					"scms_competency_assessments_recorded_total",
					"scms_competency_reports_generated_total",
					"scms_competency_recommendations_served_total",
					"scms_competency_queue_size",
					"scms_competency_http_requests_total",
				} {
					_, ok := names[want]
					So(ok, ShouldBeTrue)
				}
			})
		})
	})
}

func TestNewManagerOptions(t *testing.T) {
	Convey("Given a manager with a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("unit"),
			metrics.WithHistogramBuckets([]float64{1, 5, 10}),
			metrics.WithMetricsEnabled(true),
			metrics.WithPrometheusRegistry(registry),
		)

		Convey("Then metrics register under the custom names", func() {
			So(m, ShouldNotBeNil)

			families, err := registry.Gather()
			So(err, ShouldBeNil)
			// gauges register eagerly even before first update
			found := false
			for _, f := range families {
				if f.GetName() == "test_unit_queue_size" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})
}
