package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Wall-clock duration of one full reconciliation run
	ReconcileRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_reconcile_run_duration_seconds",
		Help:    "Duration of one reconciliation run",
		Buckets: prometheus.DefBuckets,
	})

	ReconcileRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_reconcile_runs_total",
		Help: "Total number of reconciliation runs",
	})

	// Per-group catalog resolution outcomes, labelled matched/not_found/error
	GroupOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_group_outcomes_total",
			Help: "URL groups processed by match outcome",
		},
		[]string{"outcome"},
	)

	OracleBatchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_oracle_batch_failures_total",
		Help: "Enrichment oracle batches that exhausted all retries",
	})

	RemoteCatalogLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_remote_catalog_lookups_total",
			Help: "Remote catalog fallback lookups by result",
		},
		[]string{"result"},
	)
)

func Init() {
	prometheus.MustRegister(
		ReconcileRunDuration,
		ReconcileRunsTotal,
		GroupOutcomesTotal,
		OracleBatchFailuresTotal,
		RemoteCatalogLookupsTotal,
	)
}
