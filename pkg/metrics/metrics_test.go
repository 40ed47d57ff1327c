package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "mergington")
				So(manager.subsystem, ShouldEqual, "activities")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("school"),
				WithSubsystem("clubs"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "school")
				So(manager.subsystem, ShouldEqual, "clubs")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
			})

			Convey("And collectors should use the custom names", func() {
				manager.signups.WithLabelValues("Chess Club").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "school_clubs_signups_total")
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "mergington")
				So(manager.subsystem, ShouldEqual, "activities")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRegistryMetrics(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording signups and unregistrations", func() {
			before := testutil.ToFloat64(globalManager.signups.WithLabelValues("Metrics Club"))
			RecordSignup("Metrics Club")
			RecordSignup("Metrics Club")
			RecordUnregistration("Metrics Club")

			Convey("Then the counters should move", func() {
				So(testutil.ToFloat64(globalManager.signups.WithLabelValues("Metrics Club")), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.unregistrations.WithLabelValues("Metrics Club")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When updating enrolment", func() {
			UpdateEnrolment("Metrics Club", 3, 12)
			UpdateTotals(9, 21)

			Convey("Then the gauges should hold the values", func() {
				So(testutil.ToFloat64(globalManager.enrolment.WithLabelValues("Metrics Club")), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.capacity.WithLabelValues("Metrics Club")), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.totalActivities), ShouldEqual, 9)
				So(testutil.ToFloat64(globalManager.totalParticipants), ShouldEqual, 21)
			})
		})

		Convey("When recording rejections and latencies", func() {
			So(func() {
				RecordRejectedMutation("signup", "activity_full")
				RecordRejectedMutation("unregister", "not_registered")
				RecordRegistryOperation("signup", 0.02)
				RecordRosterChangeApplied("signup")
			}, ShouldNotPanic)
		})
	})
}

func TestOperationalMetrics(t *testing.T) {
	Convey("Given operational recorders", t, func() {
		Convey("Then HTTP metrics should record without panicking", func() {
			So(func() {
				RecordHTTPRequest("activities", "GET", "200")
				RecordHTTPRequestDuration("activities", "GET", "200", 1.5)
				RecordErrorByEndpoint("signup", "POST", "not_found")
				RecordErrorByType("client_error", "medium")
			}, ShouldNotPanic)
		})

		Convey("And queue and worker metrics should record", func() {
			UpdateQueueCapacity(64)
			UpdateQueueSize(5)
			UpdateWorkerCount(2)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 5)
			So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 2)
			So(func() {
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError("full")
				RecordWorkerError()
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
			}, ShouldNotPanic)
		})

		Convey("And the exported registry should expose service metrics", func() {
			RecordSignup("Exposition Club")
			count, err := testutil.GatherAndCount(GetRegistry(), "mergington_activities_signups_total")
			So(err, ShouldBeNil)
			So(count, ShouldBeGreaterThan, 0)
		})
	})
}
