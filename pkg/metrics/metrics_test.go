package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with an isolated registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			So(manager, ShouldNotBeNil)
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRegistry(registry),
			)

			So(manager, ShouldNotBeNil)
			So(manager.namespace, ShouldEqual, "test-namespace")
			So(manager.subsystem, ShouldEqual, "test-subsystem")
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording domain events", func() {
			// Helpers must not panic against the package registry.
			RecordAnswerRecorded()
			RecordAnswerDuplicate()
			RecordAnswerRejected()
			RecordStatsQuery()
			RecordLogAppendLatency(1.5)
			RecordLogScanLatency(2.5)
			UpdateQueueDepth(3)
			RecordQueueEnqueue()
			RecordQueueAcknowledged()
			RecordQueueDropped()
			RecordReconcileRun()
			RecordReconcileFailure()
			RecordReconcileLatency(10)
			RecordCacheHit("static")
			RecordCacheMiss("dynamic")
			UpdateCacheEntries("static", 4)
			RecordSyntheticFallback()
			UpdateConnectivity(true)
			RecordConnectivityFlip()
			RecordHTTPRequest("stats", "GET", "200")
			RecordHTTPRequestDuration("stats", "GET", "200", 12.5)

			Convey("Then the registry gathers without error", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
