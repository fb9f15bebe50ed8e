package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InstrumentsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "instruments_scanned_total", Help: "Instruments evaluated, labeled by outcome"},
		[]string{"outcome"},
	)
	FetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fetch_errors_total", Help: "Upstream bar fetches abandoned after retries"},
	)
	AlertsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "alerts_sent_total", Help: "Alerts dispatched to the notification channel"},
		[]string{"label"},
	)
	NotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "notify_failures_total", Help: "Notification deliveries that failed"},
	)
)

func init() {
	prometheus.MustRegister(InstrumentsScanned, FetchErrors, AlertsSent, NotifyFailures)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
