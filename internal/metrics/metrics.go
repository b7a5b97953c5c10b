package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_runs_total",
		Help: "Total number of scoring runs, labelled by outcome (ok, input_error).",
	}, []string{"outcome"})

	RowsRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_rows_read_total",
		Help: "Total number of attendance rows read from input.",
	})

	RowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_rows_dropped_total",
		Help: "Total number of rows dropped for an unparseable date or empty person id.",
	})

	PersonsScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_persons_scored_total",
		Help: "Total number of persons scored, labelled by risk tier.",
	}, []string{"tier"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_run_duration_ms",
		Help:    "End-to-end scoring run latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000},
	})
)
