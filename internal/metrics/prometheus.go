package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exports pipeline metrics on its own registry.
type Recorder struct {
	registry      *prometheus.Registry
	fetchTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	storeTotal    *prometheus.CounterVec
	rowsStored    *prometheus.GaugeVec
	macroTotal    *prometheus.CounterVec
}

// New creates a Recorder with Go runtime collectors attached.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terminal_fetch_total",
				Help: "Market data fetches by result",
			},
			[]string{"result"},
		),
		fetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "terminal_fetch_duration_seconds",
				Help:    "Duration of market data fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		storeTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terminal_store_writes_total",
				Help: "Historical table writes by result",
			},
			[]string{"result"},
		),
		rowsStored: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "terminal_rows_stored",
				Help: "Rows in the last successful write of a table",
			},
			[]string{"table"},
		),
		macroTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "terminal_macro_fetch_total",
				Help: "Macro observation requests by series and result",
			},
			[]string{"series", "result"},
		),
	}
}

// ObserveFetch records one market data fetch.
func (r *Recorder) ObserveFetch(_ string, elapsed time.Duration, err error) {
	r.fetchTotal.WithLabelValues(result(err)).Inc()
	r.fetchDuration.Observe(elapsed.Seconds())
}

// ObserveStore records one table write.
func (r *Recorder) ObserveStore(table string, rows int, err error) {
	r.storeTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		r.rowsStored.WithLabelValues(table).Set(float64(rows))
	}
}

// ObserveMacro records one macro observation request.
func (r *Recorder) ObserveMacro(series string, err error) {
	r.macroTotal.WithLabelValues(series, result(err)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
