// Package health polls the grading backend and tracks whether it is online.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/gradedesk/gradedesk/internal/model"
	"github.com/rs/zerolog"
)

// Checker performs a single health call.
type Checker interface {
	CheckHealth(ctx context.Context) (*model.HealthResponse, error)
}

// Options controls the polling cadence.
type Options struct {
	// Interval between polling cycles. The first cycle runs immediately.
	Interval time.Duration
	// Retries is the number of extra attempts after a failed one, per cycle.
	Retries int
	// RetryDelay separates attempts within a cycle.
	RetryDelay time.Duration
}

// DefaultOptions polls every 30s, retrying a failed call 3 times 1s apart.
var DefaultOptions = Options{
	Interval:   30 * time.Second,
	Retries:    3,
	RetryDelay: time.Second,
}

// Monitor is a timer-driven state machine over {checking, online, offline}.
// Each cycle enters checking, then settles on online or offline. While checking,
// Online keeps the value settled by the previous cycle.
type Monitor struct {
	checker Checker
	opts    Options
	log     zerolog.Logger

	mu     sync.RWMutex
	status model.ServerStatus
	subs   map[chan model.ServerStatus]struct{}
}

// NewMonitor creates a Monitor. Zero-valued options fall back to DefaultOptions.
func NewMonitor(checker Checker, opts Options, log zerolog.Logger) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultOptions.Interval
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultOptions.RetryDelay
	}

	return &Monitor{
		checker: checker,
		opts:    opts,
		log:     log.With().Str("component", "health_monitor").Logger(),
		status:  model.ServerStatus{State: model.ServerStateChecking},
		subs:    make(map[chan model.ServerStatus]struct{}),
	}
}

// Run polls until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info().
		Dur("interval", m.opts.Interval).
		Int("retries", m.opts.Retries).
		Msg("Health monitor started")

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	m.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Health monitor stopped")
			return
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

// Status returns the current snapshot.
func (m *Monitor) Status() model.ServerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Online reports whether the last settled cycle found the backend healthy.
func (m *Monitor) Online() bool {
	return m.Status().Online
}

// Subscribe returns a channel receiving every status change, starting with the
// current one. Slow readers only see the latest pending status. The returned
// func unsubscribes and closes the channel.
func (m *Monitor) Subscribe() (<-chan model.ServerStatus, func()) {
	ch := make(chan model.ServerStatus, 1)

	m.mu.Lock()
	m.subs[ch] = struct{}{}
	ch <- m.status
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, ch)
			close(ch)
			m.mu.Unlock()
		})
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	m.setState(model.ServerStateChecking, nil)

	online := m.probe(ctx)
	if ctx.Err() != nil {
		return
	}

	now := time.Now().UTC()
	if online {
		m.setState(model.ServerStateOnline, &now)
	} else {
		m.setState(model.ServerStateOffline, &now)
	}
}

// probe runs up to 1+Retries attempts. A received response settles the cycle
// immediately; only failed calls are retried.
func (m *Monitor) probe(ctx context.Context) bool {
	for attempt := 0; attempt <= m.opts.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(m.opts.RetryDelay):
			}
		}

		res, err := m.checker.CheckHealth(ctx)
		if err == nil {
			if !res.Healthy() {
				m.log.Warn().Str("status", res.Status).Msg("Backend reported unhealthy status")
			}
			return res.Healthy()
		}

		m.log.Warn().Err(err).Int("attempt", attempt+1).Msg("Health check failed")
	}
	return false
}

func (m *Monitor) setState(state model.ServerState, checkedAt *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.status
	next := model.ServerStatus{State: state, Online: prev.Online, CheckedAt: prev.CheckedAt}
	if checkedAt != nil {
		next.Online = state == model.ServerStateOnline
		next.CheckedAt = checkedAt
	}
	m.status = next

	if prev.State != next.State {
		m.log.Debug().
			Str("from", string(prev.State)).
			Str("to", string(next.State)).
			Msg("Backend status changed")
	}

	for ch := range m.subs {
		select {
		case ch <- next:
		default:
			// Replace the stale pending value with the latest one.
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
}
