package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// find returns the first metric of family name whose labels include want.
func find(reg *prometheus.Registry, name string, want map[string]string) *dto.Metric {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue next
				}
			}
			return m
		}
	}
	return nil
}

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(reg),
			WithNamespace("test"),
			WithCustomLabels(map[string]string{"env": "test"}),
		)

		Convey("When assessments are recorded", func() {
			m.RecordAssessment(OutcomeSuccess, 724.95)
			m.RecordAssessment("invalid_profile", 0)

			Convey("Then outcomes are counted and only successful scores observed", func() {
				So(find(reg, "test_assessments_total", map[string]string{"outcome": "success", "env": "test"}).GetCounter().GetValue(), ShouldEqual, 1)
				So(find(reg, "test_assessments_total", map[string]string{"outcome": "invalid_profile"}).GetCounter().GetValue(), ShouldEqual, 1)
				So(find(reg, "test_credit_score", nil).GetHistogram().GetSampleCount(), ShouldEqual, 1)
				So(find(reg, "test_credit_score", nil).GetHistogram().GetSampleSum(), ShouldEqual, 724.95)
			})
		})

		Convey("When simulations and history appends are recorded", func() {
			m.RecordSimulation("salary_increase", OutcomeSuccess, 12.87)
			m.RecordSimulation("house_purchase", "insufficient_funds", 0)
			m.RecordHistoryAppend("")
			m.RecordHistoryAppend("storage_unavailable")

			Convey("Then each series carries its labels", func() {
				So(find(reg, "test_simulations_total", map[string]string{"scenario": "salary_increase", "outcome": "success"}), ShouldNotBeNil)
				So(find(reg, "test_simulations_total", map[string]string{"scenario": "house_purchase", "outcome": "insufficient_funds"}), ShouldNotBeNil)
				So(find(reg, "test_simulation_score_change", nil).GetHistogram().GetSampleCount(), ShouldEqual, 1)
				So(find(reg, "test_history_appends_total", nil).GetCounter().GetValue(), ShouldEqual, 1)
				So(find(reg, "test_history_append_errors_total", map[string]string{"kind": "storage_unavailable"}).GetCounter().GetValue(), ShouldEqual, 1)
			})
		})

		Convey("When service gauges are updated", func() {
			m.UpdateDedupeEntries(42)
			m.UpdateHistoryRecords(7)
			So(find(reg, "test_dedupe_entries", nil).GetGauge().GetValue(), ShouldEqual, 42)
			So(find(reg, "test_history_records", nil).GetGauge().GetValue(), ShouldEqual, 7)
		})

		Convey("When the manager is disabled", func() {
			reg2 := prometheus.NewRegistry()
			off := NewManager(WithPrometheusRegistry(reg2), WithMetricsEnabled(false))
			off.RecordAssessment(OutcomeSuccess, 700)
			So(find(reg2, "creditsim_assessments_total", nil), ShouldBeNil)
		})

		Convey("When custom buckets are given", func() {
			reg3 := prometheus.NewRegistry()
			b := NewManager(
				WithPrometheusRegistry(reg3),
				WithScoreBuckets([]float64{500, 700}),
				WithLatencyBuckets([]float64{10, 5}),
			)
			b.RecordAssessment(OutcomeSuccess, 650)
			b.RecordStoreOperation("history", "append", 3)

			Convey("Then increasing buckets apply and unordered ones are ignored", func() {
				So(find(reg3, "creditsim_credit_score", nil).GetHistogram().GetBucket(), ShouldHaveLength, 2)
				So(len(find(reg3, "creditsim_store_operation_duration_milliseconds", nil).GetHistogram().GetBucket()), ShouldEqual, 12)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global registry", t, func() {
		So(GetRegistry(), ShouldNotBeNil)

		Convey("When package-level recorders are used", func() {
			So(func() {
				RecordAssessment(OutcomeSuccess, 650)
				RecordSimulation("debt_reduction", OutcomeSuccess, 3)
				RecordHistoryAppend("")
				RecordTransactionIngested()
				RecordTransactionDuplicate()
				RecordStoreOperation("history", "append", 1.5)
				RecordStoreError("ledger", "timeout")
				RecordStoreRetry("get_profile")
				RecordHTTPRequest("/api/v1/credit/assess", "POST", "200")
				RecordHTTPRequestDuration("/api/v1/credit/assess", "POST", "200", 4.2)
				RecordErrorByComponent("service", "storage_unavailable")
				RecordErrorByEndpoint("/api/v1/simulation/scenario", "POST", "invalid_parameters")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)

			Convey("Then the series are exported", func() {
				So(find(GetRegistry(), "creditsim_transactions_duplicate_total", nil), ShouldNotBeNil)
				So(find(GetRegistry(), "creditsim_store_errors_total", map[string]string{"store": "ledger", "kind": "timeout"}), ShouldNotBeNil)
				So(find(GetRegistry(), "creditsim_system_goroutines", nil).GetGauge().GetValue(), ShouldEqual, 12)
			})
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
					RecordTransactionIngested()
					RecordHTTPRequest("/test", "GET", "200")
					RecordStoreOperation("profiles", "get", float64(j))
				}
			}()
		}
		wg.Wait()
		So(find(GetRegistry(), "creditsim_transactions_ingested_total", nil).GetCounter().GetValue(), ShouldBeGreaterThanOrEqualTo, 1000)
	})
}
