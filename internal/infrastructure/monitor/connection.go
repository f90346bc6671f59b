package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe pings one dependency.
type Probe func(ctx context.Context) error

// BufferSizer reports the pending write backlog.
type BufferSizer interface {
	Size() (int, error)
}

type Probes struct {
	Postgres Probe
	Redis    Probe
	Buffer   BufferSizer
}

const probeTimeout = 3 * time.Second

// Monitor polls the stores on an interval so the write path can decide
// between Postgres and the local buffer without pinging per request.
type Monitor struct {
	probes   Probes
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func New(probes Probes, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one check synchronously, then keeps polling in the background.
func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

// Stop halts polling and waits for the loop to exit.
func (m *Monitor) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stopCh) })
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Online()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once and publishes the result.
func (m *Monitor) Refresh() Status {
	bufferOK, bufferSize := m.checkBuffer()
	next := Status{
		PostgreSQL: m.check("postgres", m.probes.Postgres),
		Redis:      m.check("redis", m.probes.Redis),
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	prev := m.status
	m.status = next
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.Online() != next.Online() {
		m.logger.Warn("store connectivity changed",
			zap.Bool("online", next.Online()),
			zap.Bool("postgresql", next.PostgreSQL),
			zap.Bool("redis", next.Redis),
			zap.Int("buffered", next.BufferSize))
	}
	return next
}

func (m *Monitor) check(name string, probe Probe) bool {
	if probe == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := probe(ctx); err != nil {
		m.logger.Debug("probe failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.probes.Buffer == nil {
		return false, 0
	}
	size, err := m.probes.Buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
