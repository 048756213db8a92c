package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StorytellerCollector bundles Prometheus metrics for the storytelling
// cycle and provides a ready-made /metrics handler.
type StorytellerCollector struct {
	gatherer prometheus.Gatherer

	Cycles          prometheus.Counter
	TellerDurations *prometheus.HistogramVec
	MapQueries      *prometheus.CounterVec

	StoryTransitions *prometheus.CounterVec
	ActiveStories    prometheus.Gauge
}

// NewStorytellerCollector registers storyteller Prometheus metrics against
// the provided registerer, defaulting to the global Prometheus registry
// when nil.
func NewStorytellerCollector(reg prometheus.Registerer) (*StorytellerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	cycles, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storyteller_cycles_total",
		Help: "Total number of completed storytelling update cycles.",
	}), "storyteller_cycles_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storyteller_teller_duration_seconds",
		Help:    "Per-cycle teller update latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"teller"})
	durations, err = registerHistogramVec(reg, durations, "storyteller_teller_duration_seconds")
	if err != nil {
		return nil, err
	}

	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storyteller_map_queries_total",
		Help: "Total number of HD-map region queries, labeled by junction kind and result.",
	}, []string{"kind", "result"})
	queries, err = registerCounterVec(reg, queries, "storyteller_map_queries_total")
	if err != nil {
		return nil, err
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storyteller_story_transitions_total",
		Help: "Total number of story state transitions, labeled by direction (enter or exit).",
	}, []string{"direction"})
	transitions, err = registerCounterVec(reg, transitions, "storyteller_story_transitions_total")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "storyteller_active_stories",
		Help: "Current number of active story records.",
	}), "storyteller_active_stories")
	if err != nil {
		return nil, err
	}

	return &StorytellerCollector{
		gatherer:         gatherer,
		Cycles:           cycles,
		TellerDurations:  durations,
		MapQueries:       queries,
		StoryTransitions: transitions,
		ActiveStories:    active,
	}, nil
}

// RecordCycle satisfies the engine's metrics interface.
func (c *StorytellerCollector) RecordCycle() {
	if c == nil || c.Cycles == nil {
		return
	}
	c.Cycles.Inc()
}

// ObserveTellerDuration satisfies the engine's metrics interface.
func (c *StorytellerCollector) ObserveTellerDuration(teller string, seconds float64) {
	if c == nil || c.TellerDurations == nil {
		return
	}
	c.TellerDurations.WithLabelValues(teller).Observe(seconds)
}

// RecordMapQuery satisfies the scanner's query recorder interface.
func (c *StorytellerCollector) RecordMapQuery(kind, result string) {
	if c == nil || c.MapQueries == nil {
		return
	}
	c.MapQueries.WithLabelValues(kind, result).Inc()
}

// RecordStoryTransition satisfies the story store's metrics recorder so
// enter/exit transitions are counted at the source of truth.
func (c *StorytellerCollector) RecordStoryTransition(direction string) {
	if c == nil || c.StoryTransitions == nil {
		return
	}
	c.StoryTransitions.WithLabelValues(direction).Inc()
}

// SetActiveStories satisfies the story store's metrics recorder.
func (c *StorytellerCollector) SetActiveStories(n int) {
	if c == nil || c.ActiveStories == nil {
		return
	}
	c.ActiveStories.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *StorytellerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
