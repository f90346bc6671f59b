package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of a Session.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

var transitions = map[State][]State{
	StateIdle:    {StateLoading},
	StateLoading: {StateLoading, StateReady, StateError},
	StateReady:   {StateLoading},
	StateError:   {StateLoading},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrStale is returned by Refresh when a newer Refresh started before this
// one completed. Its result has been discarded.
var ErrStale = errors.New("feed: superseded by a newer request")

// Snapshot is an immutable view of a Session.
type Snapshot struct {
	State   State
	Token   uint64
	Scope   Scope
	Filters Filters
	Groups  []DateGroup
	// Visible counts the items across Groups.
	Visible int
	// Fetched counts the items returned by the last successful fetch.
	Fetched   int
	Err       error
	UpdatedAt time.Time
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Filters Filters
	Now     func() time.Time
}

// Session holds one view's feed: its filters, the last fetched items and the
// groups derived from them. Refresh is last-request-wins: every call takes a
// new token, cancels the request it supersedes and drops late results.
type Session struct {
	source Source
	now    func() time.Time
	logger *zap.Logger

	mu          sync.Mutex
	state       State
	token       uint64
	cancel      context.CancelFunc
	scope       Scope
	viewerID    string
	filters     Filters
	fetchedWith Filters
	items       []Item
	groups      []DateGroup
	visible     int
	err         error
	updatedAt   time.Time
}

// NewSession creates an idle session over source.
func NewSession(source Source, cfg SessionConfig, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Session{
		source:  source,
		now:     cfg.Now,
		logger:  logger,
		state:   StateIdle,
		filters: cfg.Filters.Normalized(),
	}
}

// Refresh fetches the feed for scope and re-derives the groups. It returns
// ErrStale when superseded; the session then reflects the newer request.
func (s *Session) Refresh(ctx context.Context, scope Scope, creds Credentials) (Snapshot, error) {
	s.mu.Lock()
	s.token++
	token := s.token
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.transition(StateLoading)
	s.scope = scope
	s.viewerID = creds.UserID
	filters := s.filters
	s.mu.Unlock()

	items, err := s.source.Fetch(fetchCtx, scope, filters, creds)

	s.mu.Lock()
	defer s.mu.Unlock()
	cancel()

	if token != s.token {
		s.logger.Debug("discarding stale feed result",
			zap.Uint64("token", token),
			zap.Uint64("current", s.token))
		return s.snapshot(), ErrStale
	}
	s.cancel = nil
	s.updatedAt = s.now()

	if err != nil {
		s.transition(StateError)
		s.err = err
		s.items, s.groups, s.visible = nil, nil, 0
		s.logger.Warn("feed refresh failed", zap.String("group_id", scope.GroupID), zap.Error(err))
		return s.snapshot(), err
	}

	s.transition(StateReady)
	s.err = nil
	s.items = items
	s.fetchedWith = filters
	s.derive()
	return s.snapshot(), nil
}

// SetFilters replaces the filter state and re-derives the groups from the
// cached items. needsFetch is true when the cached items were narrowed
// server-side more tightly than the new filters allow.
func (s *Session) SetFilters(f Filters) (snap Snapshot, needsFetch bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = f.Normalized()
	if s.state == StateReady {
		needsFetch = !covers(s.fetchedWith, s.filters)
		s.derive()
	}
	return s.snapshot(), needsFetch
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Close cancels any outstanding fetch.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) derive() {
	now := s.now()
	visible := ApplyFilters(s.items, s.filters, Viewer{UserID: s.viewerID, Now: now})
	s.groups = GroupByDate(visible, now)
	s.visible = len(visible)
}

func (s *Session) transition(to State) {
	if !canTransition(s.state, to) {
		s.logger.Error("invalid feed state transition",
			zap.String("from", string(s.state)),
			zap.String("to", string(to)))
	}
	s.state = to
}

func (s *Session) snapshot() Snapshot {
	groups := make([]DateGroup, len(s.groups))
	copy(groups, s.groups)
	return Snapshot{
		State:     s.state,
		Token:     s.token,
		Scope:     s.scope,
		Filters:   s.filters,
		Groups:    groups,
		Visible:   s.visible,
		Fetched:   len(s.items),
		Err:       s.err,
		UpdatedAt: s.updatedAt,
	}
}

// covers reports whether items fetched under fetched are a superset of what
// want can show.
func covers(fetched, want Filters) bool {
	if fetched.Activity != ActivityAll && fetched.Activity != want.Activity {
		return false
	}
	if fetched.Actor == ActorSelf && want.Actor != ActorSelf {
		return false
	}
	switch fetched.Time {
	case TimeAll:
		return true
	case want.Time:
		return true
	case TimeWeek, TimeMonth:
		return want.Time == TimeToday
	default:
		return false
	}
}
