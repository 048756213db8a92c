package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubTeller struct {
	name    string
	initErr error
	updates int
	err     error
}

func (s *stubTeller) Name() string { return s.name }
func (s *stubTeller) Init() error  { return s.initErr }
func (s *stubTeller) Update(context.Context) error {
	s.updates++
	return s.err
}

type recordingMetrics struct {
	cycles    int
	durations map[string]int
}

func (m *recordingMetrics) RecordCycle() { m.cycles++ }
func (m *recordingMetrics) ObserveTellerDuration(teller string, _ float64) {
	if m.durations == nil {
		m.durations = map[string]int{}
	}
	m.durations[teller]++
}

func TestEngineRunsAllTellersDespiteFailures(t *testing.T) {
	notReady := &stubTeller{name: "not-ready", err: ErrTrajectoryNotReady}
	failing := &stubTeller{name: "failing", err: errors.New("boom")}
	healthy := &stubTeller{name: "healthy"}

	metrics := &recordingMetrics{}
	engine := NewStoryEngine(nil, metrics)
	engine.RegisterTeller(notReady)
	engine.RegisterTeller(failing)
	engine.RegisterTeller(healthy)

	engine.RunCycle(context.Background(), 0)
	engine.RunCycle(context.Background(), 1)

	for _, teller := range []*stubTeller{notReady, failing, healthy} {
		if teller.updates != 2 {
			t.Errorf("teller %q updates = %d, want 2", teller.name, teller.updates)
		}
	}
	if metrics.cycles != 2 {
		t.Errorf("cycles recorded = %d, want 2", metrics.cycles)
	}
	if metrics.durations["healthy"] != 2 {
		t.Errorf("healthy durations = %d, want 2", metrics.durations["healthy"])
	}
}

func TestEngineInitTellersStopsOnFirstFailure(t *testing.T) {
	first := &stubTeller{name: "first"}
	broken := &stubTeller{name: "broken", initErr: fmt.Errorf("no feed")}
	last := &stubTeller{name: "last"}

	engine := NewStoryEngine(nil, nil)
	engine.RegisterTeller(first)
	engine.RegisterTeller(broken)
	engine.RegisterTeller(last)

	if err := engine.InitTellers(); err == nil {
		t.Fatalf("InitTellers should propagate the broken teller's error")
	}
}
