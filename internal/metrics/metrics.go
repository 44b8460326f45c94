package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"

	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (o Outcome) String() string {
	return string(o)
}

var (
	once     sync.Once
	registry = prometheus.NewRegistry()

	actionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_console_actions_total",
			Help: "User actions by name and outcome.",
		},
		[]string{"action", "outcome", "kind"},
	)
	contractReadLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stake_console_contract_read_duration_seconds",
			Help:    "Latency of eth_call reads by contract method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"contract", "method", "outcome"},
	)
	tickFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stake_console_tick_failures_total",
			Help: "Countdown ticks that failed to read contract state.",
		},
	)
	txConfirmLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stake_console_tx_confirm_duration_seconds",
			Help:    "Time from submission to receipt by transaction kind.",
			Buckets: []float64{1, 3, 5, 10, 20, 40, 80, 160},
		},
		[]string{"tx", "outcome"},
	)
)

// Registry exposes the collectors registered by Init.
func Registry() *prometheus.Registry { return registry }

// Init registers the collectors and, when port > 0, serves /metrics.
func Init(port int) *http.Server {
	var srv *http.Server
	once.Do(func() {
		registry.MustRegister(actionCounter, contractReadLatency, tickFailures, txConfirmLatency)
		if port > 0 {
			srv = serve(port)
		}
	})
	return srv
}

func serve(port int) *http.Server {
	router := chi.NewRouter()
	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		WriteTimeout: MetricRequestTimeout,
		ReadTimeout:  MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}
	go func() {
		log.Info().Msgf("starting metrics server on port %d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return srv
}

// Shutdown stops a server returned by Init; nil is ignored.
func Shutdown(ctx context.Context, srv *http.Server) {
	if srv == nil {
		return
	}
	_ = srv.Shutdown(ctx)
}

func outcomeOf(err error) Outcome {
	if err != nil {
		return Error
	}
	return Success
}

// RecordAction counts one finished user action. kind is empty on success.
func RecordAction(action string, kind string, err error) {
	actionCounter.WithLabelValues(action, outcomeOf(err).String(), kind).Inc()
}

// ObserveRead records the latency of a single contract read.
func ObserveRead(contract, method string, start time.Time, err error) {
	contractReadLatency.WithLabelValues(contract, method, outcomeOf(err).String()).Observe(time.Since(start).Seconds())
}

// ObserveConfirm records how long a transaction took to confirm.
func ObserveConfirm(tx string, start time.Time, err error) {
	txConfirmLatency.WithLabelValues(tx, outcomeOf(err).String()).Observe(time.Since(start).Seconds())
}

// TickFailed counts a failed countdown tick.
func TickFailed() { tickFailures.Inc() }
