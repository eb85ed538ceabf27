package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fixora",
			Name:      "store_operations_total",
			Help:      "Entity store operations by outcome",
		},
		[]string{"entity", "op", "status"},
	)
	storeOpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fixora",
			Name:      "store_operation_duration_seconds",
			Help:      "Entity store operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"entity", "op"},
	)
	optimisticResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fixora",
			Name:      "optimistic_resolutions_total",
			Help:      "Optimistic create placeholders confirmed or rolled back",
		},
		[]string{"entity", "outcome"},
	)
	realtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fixora",
			Name:      "realtime_events_total",
			Help:      "Push events applied into entity stores",
		},
		[]string{"entity", "action"},
	)
	realtimeState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fixora",
			Name:      "realtime_state",
			Help:      "Reconciliation channel state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting)",
		},
	)
	realtimeReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fixora",
			Name:      "realtime_reconnects_total",
			Help:      "Reconnect attempts of the reconciliation channel",
		},
	)
	metricsRegistered bool
)

// RegisterCollectors registers the metric vectors on reg, or on the
// default registry when reg is nil. Safe to call more than once.
func RegisterCollectors(reg *prometheus.Registry) {
	if metricsRegistered {
		return
	}
	cs := []prometheus.Collector{
		storeOps, storeOpLatency, optimisticResolutions,
		realtimeEvents, realtimeState, realtimeReconnects,
	}
	if reg != nil {
		reg.MustRegister(cs...)
	} else {
		prometheus.MustRegister(cs...)
	}
	metricsRegistered = true
}

// InitMetrics launches a /metrics HTTP endpoint if addr not empty.
func InitMetrics(service, addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	RegisterCollectors(nil)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", addr), zap.String("service", service))
	return srv
}

// ObserveStoreOp records one store operation.
func ObserveStoreOp(entity, op string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	storeOps.WithLabelValues(entity, op, status).Inc()
	storeOpLatency.WithLabelValues(entity, op).Observe(elapsed.Seconds())
}

// ObserveOptimistic records a placeholder outcome ("confirmed",
// "rolled_back" or "discarded" for stale generations).
func ObserveOptimistic(entity, outcome string) {
	optimisticResolutions.WithLabelValues(entity, outcome).Inc()
}

// ObserveRealtimeEvent records one applied push event.
func ObserveRealtimeEvent(entity, action string) {
	realtimeEvents.WithLabelValues(entity, action).Inc()
}

// SetRealtimeState publishes the channel state gauge.
func SetRealtimeState(v float64) { realtimeState.Set(v) }

// ObserveReconnect counts one reconnect attempt.
func ObserveReconnect() { realtimeReconnects.Inc() }
