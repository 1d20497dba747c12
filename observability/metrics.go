package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, status code, and host
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosolc_http_requests_total",
			Help: "Total number of HTTP requests by method and status",
		},
		[]string{"method", "status_code", "host"},
	)

	// HTTPRequestDuration tracks HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gosolc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		},
		[]string{"method", "host"},
	)

	// IndexLookupsTotal counts release index lookups by outcome (hit, miss, stale, offline)
	IndexLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosolc_index_lookups_total",
			Help: "Release index lookups by cache outcome",
		},
		[]string{"outcome"},
	)

	// DownloadsTotal counts artifact downloads by status
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosolc_downloads_total",
			Help: "Total number of compiler downloads by status",
		},
		[]string{"status"},
	)

	// DownloadBytes tracks downloaded artifact sizes
	DownloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gosolc_download_bytes",
			Help:    "Size of downloaded compiler artifacts",
			Buckets: prometheus.ExponentialBuckets(1<<20, 2, 8), // 1MiB to 128MiB
		},
	)

	// InstallsTotal counts install, uninstall and repair operations by result
	InstallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosolc_installs_total",
			Help: "Installer operations by kind and result",
		},
		[]string{"operation", "result"},
	)

	// VerificationsTotal counts checksum verifications by status
	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosolc_verifications_total",
			Help: "Installed compiler verifications by status",
		},
		[]string{"status"},
	)

	// ResolutionsTotal counts pragma resolutions by result
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gosolc_resolutions_total",
			Help: "Pragma resolutions by result",
		},
		[]string{"result"},
	)
)

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for pickup by a node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// GetCounterValue retrieves the current value of a counter metric with the given labels.
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}
	return 0, nil
}
