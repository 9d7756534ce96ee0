// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every collector unless configured otherwise.
const DefaultNamespace = "embody"

// Metrics exposes Prometheus collectors that report scheduler activity. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	interactions  *prometheus.CounterVec
	actions       *prometheus.CounterVec
	queueDepth    *prometheus.GaugeVec
	frames        prometheus.Counter
	frameDuration prometheus.Histogram
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Collectors that are already registered with an identical description are
// reused so several engines can share one registry. Any other registration
// error panics.
func MustNewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "interaction",
				Name:      "finished_total",
				Help:      "Interactions that reached a terminal outcome.",
			},
			[]string{"effector", "kind", "outcome"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "agent",
				Name:      "actions_finished_total",
				Help:      "Actions archived by agent queues, by terminal state.",
			},
			[]string{"kind", "state"},
		),
		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "agent",
				Name:      "queue_depth",
				Help:      "Actions waiting behind the current one.",
			},
			[]string{"agent"},
		),
		frames: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "frames_total",
				Help:      "Simulation frames stepped.",
			},
		),
		frameDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "frame_duration_seconds",
				Help:      "Wall-clock time spent stepping one frame.",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
	}

	m.interactions = register(reg, m.interactions)
	m.actions = register(reg, m.actions)
	m.queueDepth = register(reg, m.queueDepth)
	m.frames = register(reg, m.frames)
	m.frameDuration = register(reg, m.frameDuration)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveInteraction counts one finished interaction.
func (m *Metrics) ObserveInteraction(effector, kind, outcome string) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(effector, kind, outcome).Inc()
}

// ObserveAction counts one archived action.
func (m *Metrics) ObserveAction(kind, state string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind, state).Inc()
}

// SetQueueDepth records the pending queue length of an agent.
func (m *Metrics) SetQueueDepth(agent string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(agent).Set(float64(depth))
}

// ObserveFrame counts one stepped frame and how long it took.
func (m *Metrics) ObserveFrame(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameDuration.Observe(elapsed.Seconds())
}
