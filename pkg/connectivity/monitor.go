// Package connectivity reports network reachability changes.
package connectivity

import (
	"context"
	"sync"
	"time"

	"sales-copilot-be/internal/pkg/logger"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Monitor emits reachability changes to subscribers.
type Monitor interface {
	Subscribe(onChange func(reachable bool)) (unsubscribe func())
	Run(ctx context.Context)
}

// Probe reports whether the network is currently reachable.
type Probe func(ctx context.Context) bool

// ProbeMonitor polls a Probe and notifies subscribers only when the result
// changes. The first observation is always delivered.
type ProbeMonitor struct {
	probe    Probe
	interval time.Duration
	timeout  time.Duration
	logger   logger.ILogger

	mu        sync.Mutex
	listeners map[int]func(bool)
	nextID    int
	known     bool
	last      bool
}

// DefaultInterval replaces a non-positive polling interval.
const DefaultInterval = 5 * time.Second

func NewProbeMonitor(probe Probe, interval time.Duration, log logger.ILogger) *ProbeMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &ProbeMonitor{
		probe:     probe,
		interval:  interval,
		timeout:   interval / 2,
		logger:    log,
		listeners: make(map[int]func(bool)),
	}
}

func (m *ProbeMonitor) Subscribe(onChange func(reachable bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = onChange
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Run polls until ctx is done.
func (m *ProbeMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check runs the probe once and notifies on change.
func (m *ProbeMonitor) Check(ctx context.Context) {
	probeCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	reachable := m.probe(probeCtx)

	m.mu.Lock()
	if m.known && m.last == reachable {
		m.mu.Unlock()
		return
	}
	m.known = true
	m.last = reachable
	listeners := make([]func(bool), 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	m.logger.Info("Connectivity", "Reachability changed", map[string]interface{}{"reachable": reachable})
	for _, l := range listeners {
		l(reachable)
	}
}

// NatsProbe is reachable while the connection is up.
func NatsProbe(nc *nats.Conn) Probe {
	return func(context.Context) bool {
		return nc != nil && nc.IsConnected()
	}
}

// RedisProbe is reachable when PING succeeds.
func RedisProbe(rdb *redis.Client) Probe {
	return func(ctx context.Context) bool {
		return rdb != nil && rdb.Ping(ctx).Err() == nil
	}
}

// AnyOf is reachable when at least one probe is.
func AnyOf(probes ...Probe) Probe {
	return func(ctx context.Context) bool {
		for _, p := range probes {
			if p(ctx) {
				return true
			}
		}
		return false
	}
}
