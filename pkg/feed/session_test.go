package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchResult struct {
	items []Item
	err   error
}

type pendingFetch struct {
	scope   Scope
	filters Filters
	ctx     context.Context
	reply   chan fetchResult
}

// scriptedSource parks every Fetch until the test replies to it.
type scriptedSource struct {
	mu      sync.Mutex
	pending []*pendingFetch
	started chan *pendingFetch
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{started: make(chan *pendingFetch, 8)}
}

func (s *scriptedSource) Fetch(ctx context.Context, scope Scope, filters Filters, creds Credentials) ([]Item, error) {
	p := &pendingFetch{scope: scope, filters: filters, ctx: ctx, reply: make(chan fetchResult, 1)}
	s.mu.Lock()
	s.pending = append(s.pending, p)
	s.mu.Unlock()
	s.started <- p
	res := <-p.reply
	return res.items, res.err
}

func (s *scriptedSource) next(t *testing.T) *pendingFetch {
	t.Helper()
	select {
	case p := <-s.started:
		return p
	case <-time.After(time.Second):
		t.Fatal("fetch was not started")
		return nil
	}
}

// staticSource answers immediately.
type staticSource struct {
	items []Item
	err   error
	calls int
	last  Filters
}

func (s *staticSource) Fetch(ctx context.Context, scope Scope, filters Filters, creds Credentials) ([]Item, error) {
	s.calls++
	s.last = filters
	return s.items, s.err
}

func TestSession_StartsIdle(t *testing.T) {
	s := NewSession(&staticSource{}, SessionConfig{Now: testNow}, nil)

	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, DefaultFilters(), snap.Filters)
	assert.Empty(t, snap.Groups)
}

func TestSession_RefreshReady(t *testing.T) {
	src := &staticSource{items: sampleItems()}
	s := NewSession(src, SessionConfig{Now: testNow, Filters: Filters{Time: TimeWeek}}, nil)

	snap, err := s.Refresh(context.Background(), Scope{GroupID: "fam-1"}, Credentials{UserID: "ana", Token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, uint64(1), snap.Token)
	assert.Equal(t, TimeWeek, src.last.Time, "filters are passed to the source")
	assert.Equal(t, 7, snap.Fetched)
	assert.Equal(t, 4, snap.Visible, "pipeline re-enforces the time window")
	assert.Equal(t, []string{"Today", "Thursday, May 30", "Sunday, May 26"}, labels(snap.Groups))
	assert.NoError(t, snap.Err)
}

func TestSession_EmptyResultIsReady(t *testing.T) {
	s := NewSession(&staticSource{}, SessionConfig{Now: testNow}, nil)

	snap, err := s.Refresh(context.Background(), Scope{GroupID: "fam-1"}, Credentials{Token: "tok"})

	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	assert.Empty(t, snap.Groups)
	assert.Zero(t, snap.Visible)
}

func TestSession_ErrorThenRecover(t *testing.T) {
	src := &staticSource{err: newError(KindNetwork, "offline", nil)}
	s := NewSession(src, SessionConfig{Now: testNow}, nil)

	snap, err := s.Refresh(context.Background(), Scope{GroupID: "fam-1"}, Credentials{Token: "tok"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
	assert.Equal(t, StateError, snap.State)
	assert.Equal(t, err, snap.Err)

	src.err = nil
	src.items = sampleItems()[:2]
	snap, err = s.Refresh(context.Background(), Scope{GroupID: "fam-1"}, Credentials{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	assert.NoError(t, snap.Err)
	assert.Equal(t, 2, snap.Visible)
}

func TestSession_LastRequestWins(t *testing.T) {
	src := newScriptedSource()
	s := NewSession(src, SessionConfig{Now: testNow}, nil)
	creds := Credentials{UserID: "ana", Token: "tok"}

	type outcome struct {
		snap Snapshot
		err  error
	}
	resultA := make(chan outcome, 1)
	go func() {
		snap, err := s.Refresh(context.Background(), Scope{GroupID: "group-a"}, creds)
		resultA <- outcome{snap, err}
	}()
	fetchA := src.next(t)
	assert.Equal(t, StateLoading, s.Snapshot().State)

	resultB := make(chan outcome, 1)
	go func() {
		snap, err := s.Refresh(context.Background(), Scope{GroupID: "group-b"}, creds)
		resultB <- outcome{snap, err}
	}()
	fetchB := src.next(t)

	select {
	case <-fetchA.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded fetch was not cancelled")
	}

	fetchB.reply <- fetchResult{items: []Item{moodItem("from-b", june(1, 9, 0), "ben")}}
	b := <-resultB
	require.NoError(t, b.err)

	// A resolves after B with data of its own; it must not overwrite B.
	fetchA.reply <- fetchResult{items: []Item{moodItem("from-a", june(1, 9, 0), "ana")}}
	a := <-resultA
	assert.ErrorIs(t, a.err, ErrStale)

	snap := s.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, uint64(2), snap.Token)
	assert.Equal(t, "group-b", snap.Scope.GroupID)
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, []string{"from-b"}, ids(snap.Groups[0].Items))
}

func TestSession_StaleErrorDoesNotOverrideReady(t *testing.T) {
	src := newScriptedSource()
	s := NewSession(src, SessionConfig{Now: testNow}, nil)
	creds := Credentials{Token: "tok"}

	errA := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background(), Scope{GroupID: "a"}, creds)
		errA <- err
	}()
	fetchA := src.next(t)

	done := make(chan struct{})
	go func() {
		_, _ = s.Refresh(context.Background(), Scope{GroupID: "b"}, creds)
		close(done)
	}()
	fetchB := src.next(t)
	fetchB.reply <- fetchResult{}
	<-done

	fetchA.reply <- fetchResult{err: newError(KindNetwork, "request cancelled", context.Canceled)}
	assert.ErrorIs(t, <-errA, ErrStale)
	assert.Equal(t, StateReady, s.Snapshot().State)
}

func TestSession_SetFilters(t *testing.T) {
	src := &staticSource{items: sampleItems()}
	s := NewSession(src, SessionConfig{Now: testNow}, nil)

	snap, needsFetch := s.SetFilters(Filters{Activity: ActivityTask})
	assert.False(t, needsFetch, "nothing fetched yet")
	assert.Equal(t, StateIdle, snap.State)

	_, err := s.Refresh(context.Background(), Scope{GroupID: "fam-1"}, Credentials{UserID: "ana", Token: "tok"})
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	snap, needsFetch = s.SetFilters(Filters{Activity: ActivityTask, Actor: ActorSelf})
	assert.False(t, needsFetch, "narrowing works on cached items")
	assert.Equal(t, 1, snap.Visible)

	snap, needsFetch = s.SetFilters(Filters{})
	assert.True(t, needsFetch, "tasks-only payload cannot show moods")
	assert.Equal(t, 7, snap.Visible)
	assert.Equal(t, 1, src.calls, "SetFilters never fetches")
}

func TestCovers(t *testing.T) {
	tests := []struct {
		fetched Filters
		want    Filters
		ok      bool
	}{
		{DefaultFilters(), Filters{Time: TimeToday, Activity: ActivityMood, Actor: ActorSelf}, true},
		{Filters{Time: TimeWeek, Activity: ActivityAll, Actor: ActorAll}, Filters{Time: TimeToday, Activity: ActivityAll, Actor: ActorAll}, true},
		{Filters{Time: TimeMonth, Activity: ActivityAll, Actor: ActorAll}, Filters{Time: TimeWeek, Activity: ActivityAll, Actor: ActorAll}, false},
		{Filters{Time: TimeToday, Activity: ActivityAll, Actor: ActorAll}, Filters{Time: TimeAll, Activity: ActivityAll, Actor: ActorAll}, false},
		{Filters{Time: TimeAll, Activity: ActivityAll, Actor: ActorSelf}, Filters{Time: TimeAll, Activity: ActivityAll, Actor: ActorAll}, false},
		{Filters{Time: TimeAll, Activity: ActivityMood, Actor: ActorAll}, Filters{Time: TimeAll, Activity: ActivityMood, Actor: ActorSelf}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, covers(tt.fetched, tt.want), "%+v -> %+v", tt.fetched, tt.want)
	}
}

func TestSession_CloseCancelsOutstanding(t *testing.T) {
	src := newScriptedSource()
	s := NewSession(src, SessionConfig{Now: testNow}, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background(), Scope{GroupID: "a"}, Credentials{Token: "tok"})
		errCh <- err
	}()
	p := src.next(t)

	s.Close()
	<-p.ctx.Done()
	p.reply <- fetchResult{err: p.ctx.Err()}

	err := <-errCh
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StateError, s.Snapshot().State)
}
