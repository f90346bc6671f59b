// Package usecasetest provides in-memory repositories for use case tests.
package usecasetest

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
)

// ErrDown simulates an unreachable store.
var ErrDown = errors.New("store unavailable")

type Users struct {
	mu    sync.Mutex
	users map[string]domain.User
	Fail  bool
}

func NewUsers(users ...domain.User) *Users {
	r := &Users{users: make(map[string]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Users) Upsert(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrDown
	}
	r.users[user.ID] = *user
	return nil
}

type Sessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[string]domain.Session)}
}

func (r *Sessions) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *Sessions) Save(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *Sessions) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *Sessions) Extend(_ context.Context, id string, ttlSeconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	r.sessions[id] = s
	return nil
}

// Groups implements both GroupRepository and MembershipRepository.
type Groups struct {
	mu      sync.Mutex
	seq     int
	groups  map[string]domain.Group
	members map[string]map[string]domain.Membership
}

func NewGroups() *Groups {
	return &Groups{
		groups:  make(map[string]domain.Group),
		members: make(map[string]map[string]domain.Membership),
	}
}

// Seed registers a group owned by ownerID plus extra plain members.
func (r *Groups) Seed(id, ownerID string, members ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[id] = domain.Group{ID: id, Name: id, OwnerID: ownerID, InviteCode: strings.ToUpper("code-" + id)}
	r.members[id] = map[string]domain.Membership{
		ownerID: {GroupID: id, UserID: ownerID, Role: domain.MemberRoleOwner},
	}
	for _, m := range members {
		r.members[id][m] = domain.Membership{GroupID: id, UserID: m, Role: domain.MemberRoleMember}
	}
}

func (r *Groups) GetByID(_ context.Context, id string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return &g, nil
}

func (r *Groups) GetByInviteCode(_ context.Context, code string) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.InviteCode == code {
			return &g, nil
		}
	}
	return nil, domain.ErrGroupNotFound
}

func (r *Groups) ListForUser(_ context.Context, userID string) ([]domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Group
	for id, members := range r.members {
		if _, ok := members[userID]; ok {
			out = append(out, r.groups[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Groups) Create(_ context.Context, group *domain.Group) (*domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	created := *group
	created.ID = "g" + strconv.Itoa(r.seq)
	r.groups[created.ID] = created
	r.members[created.ID] = map[string]domain.Membership{
		created.OwnerID: {GroupID: created.ID, UserID: created.OwnerID, Role: domain.MemberRoleOwner},
	}
	return &created, nil
}

func (r *Groups) Get(_ context.Context, groupID, userID string) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[groupID][userID]
	if !ok {
		return nil, domain.ErrNotMember
	}
	return &m, nil
}

func (r *Groups) List(_ context.Context, groupID string) ([]domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Membership, 0, len(r.members[groupID]))
	for _, m := range r.members[groupID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *Groups) Add(_ context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.GroupID][m.UserID]; ok {
		return domain.ErrAlreadyMember
	}
	if r.members[m.GroupID] == nil {
		r.members[m.GroupID] = make(map[string]domain.Membership)
	}
	r.members[m.GroupID][m.UserID] = *m
	return nil
}

func (r *Groups) Remove(_ context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[groupID][userID]; !ok {
		return domain.ErrNotMember
	}
	delete(r.members[groupID], userID)
	return nil
}

// Authorize mirrors the group use case check for tests of dependent use cases.
func (r *Groups) Authorize(ctx context.Context, groupID, userID string) (*domain.Membership, error) {
	if _, err := r.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return r.Get(ctx, groupID, userID)
}

type Tasks struct {
	mu     sync.Mutex
	seq    int
	tasks  map[string]domain.Task
	Events []domain.TaskEvent
	Fail   bool
}

func NewTasks() *Tasks {
	return &Tasks{tasks: make(map[string]domain.Task)}
}

func (r *Tasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *Tasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, t := range r.tasks {
		if filter.GroupID != "" && t.GroupID != filter.GroupID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Tasks) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return nil, ErrDown
	}
	r.seq++
	created := *task
	if created.ID == "" {
		created.ID = "t" + strconv.Itoa(r.seq)
	}
	r.tasks[created.ID] = created
	return &created, nil
}

func (r *Tasks) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrDown
	}
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *Tasks) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrDown
	}
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *Tasks) AppendEvent(_ context.Context, event *domain.TaskEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return ErrDown
	}
	r.Events = append(r.Events, *event)
	return nil
}

type Statuses struct {
	mu      sync.Mutex
	seq     int
	Entries []domain.StatusEntry
	Fail    bool
}

func (r *Statuses) Create(_ context.Context, entry *domain.StatusEntry) (*domain.StatusEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail {
		return nil, ErrDown
	}
	r.seq++
	created := *entry
	if created.ID == "" {
		created.ID = "s" + strconv.Itoa(r.seq)
	}
	r.Entries = append(r.Entries, created)
	return &created, nil
}

func (r *Statuses) List(_ context.Context, filter repository.StatusFilter) ([]domain.StatusEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.StatusEntry
	for _, e := range r.Entries {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.GroupID != "" && e.GroupID != filter.GroupID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Buffer records buffered operations.
type Buffer struct {
	mu       sync.Mutex
	Profiles []string
	Tasks    []string
	Statuses int
	Fail     bool
}

func (b *Buffer) BufferProfile(_ context.Context, operation string, _ *domain.User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail {
		return ErrDown
	}
	b.Profiles = append(b.Profiles, operation)
	return nil
}

func (b *Buffer) BufferTask(_ context.Context, operation, _ string, _ *domain.Task) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail {
		return ErrDown
	}
	b.Tasks = append(b.Tasks, operation)
	return nil
}

func (b *Buffer) BufferStatus(_ context.Context, _ *domain.StatusEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Fail {
		return ErrDown
	}
	b.Statuses++
	return nil
}

// Activities is a canned ActivitySource that records the filter it saw.
type Activities struct {
	mu     sync.Mutex
	Items  []domain.Activity
	Err    error
	Calls  int
	Filter repository.ActivityFilter
}

func (a *Activities) Activities(_ context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls++
	a.Filter = filter
	if a.Err != nil {
		return nil, a.Err
	}
	return append([]domain.Activity(nil), a.Items...), nil
}
