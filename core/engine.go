package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/driveframe/storyteller/internal/logging"
)

const tracerName = "github.com/driveframe/storyteller/core"

// Teller is one unit of story production, driven once per cycle by the
// engine. Init runs once before the first Update.
type Teller interface {
	Name() string
	Init() error
	Update(ctx context.Context) error
}

// EngineMetrics records cycle-level observability. Implemented by the
// observability collector; nil disables recording.
type EngineMetrics interface {
	RecordCycle()
	ObserveTellerDuration(teller string, seconds float64)
}

// StoryEngine drives the registered tellers through the per-cycle update.
// A teller failing one cycle does not stop the others: not-ready is logged
// at warn, everything else at error.
type StoryEngine struct {
	tellers []Teller
	log     logging.Logger
	metrics EngineMetrics
	tracer  trace.Tracer
}

// NewStoryEngine constructs an engine. log and metrics may be nil.
func NewStoryEngine(log logging.Logger, metrics EngineMetrics) *StoryEngine {
	if log == nil {
		log = logging.Noop()
	}
	return &StoryEngine{
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// RegisterTeller adds a teller to the cycle. Registration order is the
// update order.
func (e *StoryEngine) RegisterTeller(t Teller) {
	e.tellers = append(e.tellers, t)
}

// InitTellers initialises every registered teller. The first failure
// aborts: a teller that cannot register its subscriptions must not run.
func (e *StoryEngine) InitTellers() error {
	for _, t := range e.tellers {
		if err := t.Init(); err != nil {
			return fmt.Errorf("init teller %q: %w", t.Name(), err)
		}
	}
	return nil
}

// RunCycle runs one update cycle over all tellers.
func (e *StoryEngine) RunCycle(ctx context.Context, cycle int) {
	ctx, span := e.tracer.Start(ctx, "story_cycle",
		trace.WithAttributes(attribute.Int("cycle", cycle)))
	defer span.End()

	for _, t := range e.tellers {
		e.runTeller(ctx, t)
	}
	if e.metrics != nil {
		e.metrics.RecordCycle()
	}
}

func (e *StoryEngine) runTeller(ctx context.Context, t Teller) {
	ctx, span := e.tracer.Start(ctx, "teller_update",
		trace.WithAttributes(attribute.String("teller", t.Name())))
	defer span.End()

	start := time.Now()
	err := t.Update(ctx)
	if e.metrics != nil {
		e.metrics.ObserveTellerDuration(t.Name(), time.Since(start).Seconds())
	}

	switch {
	case err == nil:
	case errors.Is(err, ErrTrajectoryNotReady):
		e.log.Warn(ctx, "teller skipped: trajectory not ready",
			logging.String("teller", t.Name()))
	default:
		span.RecordError(err)
		e.log.Error(ctx, "teller update failed",
			logging.String("teller", t.Name()),
			logging.String("error", err.Error()),
		)
	}
}
