package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// stubUnit is a ports.Unit backed by a function.
type stubUnit struct {
	name     string
	run      func(ctx context.Context, state domain.State) (domain.State, error)
	validate error
	calls    int
	mu       sync.Mutex
}

func (s *stubUnit) Name() string { return s.name }

func (s *stubUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.run == nil {
		return state, nil
	}
	return s.run(ctx, state)
}

func (s *stubUnit) Validate() error { return s.validate }

func (s *stubUnit) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	mu       sync.Mutex
	pre      []int
	post     []int
	postErrs []error
}

func (r *recordingObserver) PreCheck(ctx context.Context, members int, _ GroupLimit) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pre = append(r.pre, members)
	return ctx
}

func (r *recordingObserver) PostCheck(_ context.Context, members int, _ GroupLimit, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.post = append(r.post, members)
	r.postErrs = append(r.postErrs, err)
}

// recordingMetrics is an in-memory ports.MetricsCollector.
type recordingMetrics struct {
	mu         sync.Mutex
	latencies  []string
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *recordingMetrics) RecordLatency(operation string, _ time.Duration, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies = append(m.latencies, operation)
}

func (m *recordingMetrics) RecordCounter(metric string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metric] += value
}

func (m *recordingMetrics) RecordGauge(metric string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[metric] = value
}

func (m *recordingMetrics) RecordHistogram(metric string, value float64, _ map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[metric] = append(m.histograms[metric], value)
}

func membersState(n int) domain.State {
	members := make([]domain.MemberAnswers, n)
	for i := range members {
		members[i] = domain.MemberAnswers{ID: string(rune('a' + i%26))}
	}
	return domain.With(domain.NewState(), domain.KeyMembers, members)
}
