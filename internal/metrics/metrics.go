package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScanRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kolscan_scan_runs_total",
		Help: "Total channel scan runs",
	})
	ScanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kolscan_scan_errors_total",
		Help: "Total channel scan errors",
	})
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "kolscan_scan_duration_seconds",
		Help:    "Channel scan duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	UsersAnalyzed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kolscan_users_analyzed_total",
		Help: "Total participants run through the metrics calculator",
	})
	KOLsFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kolscan_kols_found_total",
		Help: "Total qualifying KOLs across scans",
	})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolscan_api_retries_total",
		Help: "Total gateway API retry attempts",
	}, []string{"endpoint"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolscan_command_runs_total",
		Help: "Total CLI command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kolscan_command_errors_total",
		Help: "Total CLI command errors",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(ScanRuns, ScanErrors, ScanDuration, UsersAnalyzed,
		KOLsFound, APIRetries, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveScanDuration records one scan's duration.
func ObserveScanDuration(start time.Time) {
	ScanDuration.Observe(time.Since(start).Seconds())
}

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

// IncCommandRun and IncCommandError track CLI usage.
func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
