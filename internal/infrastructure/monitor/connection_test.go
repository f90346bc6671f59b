package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedSize int

func (f fixedSize) Size() (int, error) { return int(f), nil }

func TestMonitor_Refresh(t *testing.T) {
	var pgDown atomic.Bool
	mon := New(Probes{
		Postgres: func(context.Context) error {
			if pgDown.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
		Redis:  func(context.Context) error { return nil },
		Buffer: fixedSize(3),
	}, time.Hour, nil)

	status := mon.Refresh()
	assert.True(t, status.Online())
	assert.True(t, status.Buffer)
	assert.Equal(t, 3, status.BufferSize)
	assert.True(t, mon.IsOnline())

	pgDown.Store(true)
	mon.Refresh()
	assert.False(t, mon.IsOnline())
	assert.True(t, mon.GetStatus().Redis)
}

func TestMonitor_MissingProbesAreOffline(t *testing.T) {
	mon := New(Probes{}, time.Hour, nil)
	status := mon.Refresh()
	assert.False(t, status.Online())
	assert.False(t, status.Buffer)
}

func TestMonitor_StartStop(t *testing.T) {
	var calls atomic.Int32
	mon := New(Probes{
		Postgres: func(context.Context) error { calls.Add(1); return nil },
		Redis:    func(context.Context) error { return nil },
	}, 5*time.Millisecond, nil)

	mon.Start()
	assert.True(t, mon.IsOnline(), "first check runs before Start returns")
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, mon.Stop(ctx))
	require.NoError(t, mon.Stop(ctx), "stop is idempotent")
}
