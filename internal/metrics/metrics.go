// Package metrics provides Prometheus metrics for channel sync runs.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ChannelSync/internal/domain"
)

const namespace = "channelsync"

// Recorder owns a private registry so one-shot runs can dump it to a
// textfile and watch mode can serve it.
type Recorder struct {
	registry *prometheus.Registry

	messagesFetched *prometheus.CounterVec
	groupsRejected  *prometheus.CounterVec
	articles        *prometheus.CounterVec
	runDuration     prometheus.Histogram
	lastSuccess     prometheus.Gauge
	runsTotal       *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		messagesFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_fetched_total",
				Help:      "Raw messages read from channel sources",
			},
			[]string{"channel"},
		),
		groupsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "groups_rejected_total",
				Help:      "Message groups dropped by the substance check",
			},
			[]string{"channel"},
		),
		articles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "articles_total",
				Help:      "Articles by sync outcome",
			},
			[]string{"channel", "outcome"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of full sync passes",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last pass without errors",
			},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Sync passes by status",
			},
			[]string{"status"},
		),
	}
}

// ObserveChannel records one channel's fetch and sync outcome.
func (r *Recorder) ObserveChannel(channel string, fetched, rejected int, stats domain.SyncStats) {
	r.messagesFetched.WithLabelValues(channel).Add(float64(fetched))
	r.groupsRejected.WithLabelValues(channel).Add(float64(rejected))
	for outcome, n := range map[string]int{
		"inserted": stats.Inserted,
		"updated":  stats.Updated,
		"skipped":  stats.Skipped,
		"deleted":  stats.Deleted,
		"error":    stats.Errors,
	} {
		r.articles.WithLabelValues(channel, outcome).Add(float64(n))
	}
}

// ObserveRun records a finished pass.
func (r *Recorder) ObserveRun(started time.Time, err error) {
	r.runDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		r.runsTotal.WithLabelValues("failed").Inc()
		return
	}
	r.runsTotal.WithLabelValues("ok").Inc()
	r.lastSuccess.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
