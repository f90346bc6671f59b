package handler_test

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/carecircle/api/handler"
	"github.com/fastygo/carecircle/api/transport"
	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/internal/infrastructure/monitor"
	"github.com/fastygo/carecircle/internal/middleware"
	"github.com/fastygo/carecircle/internal/router"
	"github.com/fastygo/carecircle/pkg/feed"
	"github.com/fastygo/carecircle/pkg/httpcontext"
	activityUC "github.com/fastygo/carecircle/usecase/activity"
	authUC "github.com/fastygo/carecircle/usecase/auth"
	groupUC "github.com/fastygo/carecircle/usecase/group"
	profileUC "github.com/fastygo/carecircle/usecase/profile"
	statusUC "github.com/fastygo/carecircle/usecase/status"
	taskUC "github.com/fastygo/carecircle/usecase/task"
	"github.com/fastygo/carecircle/usecase/usecasetest"
)

const (
	secret  = "handler-test"
	baseURL = "http://carecircle.test"
)

type fixedStatus monitor.Status

func (f fixedStatus) GetStatus() monitor.Status { return monitor.Status(f) }

type server struct {
	client *fasthttp.Client
}

func newServer(t *testing.T) *server {
	t.Helper()
	users := usecasetest.NewUsers()
	sessions := usecasetest.NewSessions()
	groups := usecasetest.NewGroups()
	groups.Seed("fam", "alice", "bob")
	tasks := usecasetest.NewTasks()
	statuses := &usecasetest.Statuses{}

	now := time.Now()
	moodFeed := &usecasetest.Activities{Items: []domain.Activity{{
		ID: "s1", Kind: domain.ActivityMood, GroupID: "fam", OccurredAt: now.Add(-time.Hour),
		Actor: domain.Actor{ID: "bob", DisplayName: "Bob"},
		Mood:  &domain.MoodActivity{Moods: []string{"happy"}, Feelings: []string{}},
	}}}
	taskFeed := &usecasetest.Activities{Items: []domain.Activity{{
		ID: "e1", Kind: domain.ActivityTask, GroupID: "fam", OccurredAt: now.Add(-time.Minute),
		Actor: domain.Actor{ID: "alice", DisplayName: "Alice"},
		Task:  &domain.TaskActivity{TaskID: "t1", Title: "Refill meds", Status: "done", Priority: "high"},
	}}}

	adapter := httpcontext.NewAdapter(time.Second)
	groupService := groupUC.New(groups, groups, nil)
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authUC.New(users, sessions, middleware.NewJWTIssuer(secret, "test"), nil), adapter, nil, time.Hour),
		Profile: handler.NewProfileHandler(profileUC.New(users, nil, nil), adapter, nil),
		Group:   handler.NewGroupHandler(groupService, adapter, nil),
		Task:    handler.NewTaskHandler(taskUC.New(tasks, groupService, nil, nil), adapter, nil),
		Status:  handler.NewStatusHandler(statusUC.New(statuses, groupService, nil, nil), adapter, nil),
		Feed: handler.NewFeedHandler(activityUC.New(moodFeed, taskFeed, groupService,
			activityUC.Config{DefaultLimit: 50, MaxLimit: 100}, nil), adapter, nil),
		Health: handler.NewHealthHandler(fixedStatus{PostgreSQL: true, Redis: true, Buffer: true}, adapter, nil),
	}
	r := router.New(handlers, middleware.JWTAuth(secret, sessions, nil))

	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: r.Handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	return &server{client: &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}}
}

type reply struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
}

func (s *server) do(t *testing.T, method, path, token, body string) (int, reply) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(baseURL + path)
	req.Header.SetMethod(method)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	require.NoError(t, s.client.DoTimeout(req, resp, 2*time.Second))

	var r reply
	if len(resp.Body()) > 0 {
		require.NoError(t, json.Unmarshal(resp.Body(), &r))
	}
	return resp.StatusCode(), r
}

func (s *server) login(t *testing.T, userID string) string {
	t.Helper()
	status, r := s.do(t, fasthttp.MethodPost, "/api/v1/auth/login", "",
		`{"user_id":"`+userID+`","display_name":"`+userID+`"}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	var session transport.SessionResponse
	require.NoError(t, json.Unmarshal(r.Data, &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestFeedEndpoint_ServesFetcher(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "alice")

	fetcher := feed.NewFetcher(feed.FetcherConfig{BaseURL: baseURL, Client: s.client, Timeout: 2 * time.Second}, nil)
	creds := feed.Credentials{UserID: "alice", Token: token}
	ctx := context.Background()

	items, err := fetcher.Fetch(ctx, feed.Scope{GroupID: "fam"}, feed.DefaultFilters(), creds)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "e1", items[0].ID, "newest first")
	assert.Equal(t, "Refill meds", items[0].Task.Title)
	assert.Equal(t, []string{"happy"}, items[1].Mood.Moods)
	assert.Equal(t, "Bob", items[1].Actor.DisplayName)

	moods, err := fetcher.Fetch(ctx, feed.Scope{GroupID: "fam"}, feed.Filters{Activity: feed.ActivityMood}, creds)
	require.NoError(t, err)
	require.Len(t, moods, 1)
	assert.Equal(t, feed.KindMood, moods[0].Kind)

	_, err = fetcher.Fetch(ctx, feed.Scope{GroupID: "ghost"}, feed.DefaultFilters(), creds)
	assert.True(t, feed.IsKind(err, feed.KindScope))

	_, err = fetcher.Fetch(ctx, feed.Scope{GroupID: "fam"}, feed.DefaultFilters(), feed.Credentials{UserID: "alice", Token: "forged"})
	assert.True(t, feed.IsKind(err, feed.KindAuth))

	outsider := s.login(t, "mallory")
	_, err = fetcher.Fetch(ctx, feed.Scope{GroupID: "fam"}, feed.DefaultFilters(), feed.Credentials{UserID: "mallory", Token: outsider})
	assert.True(t, feed.IsKind(err, feed.KindScope))
}

func TestFeedEndpoint_RejectsBadSince(t *testing.T) {
	s := newServer(t)
	token := s.login(t, "alice")

	status, r := s.do(t, fasthttp.MethodGet, "/api/v1/groups/fam/feed?since=yesterday", token, "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, string(domain.ErrCodeInvalid), r.Code)
}

func TestGroupAndTaskEndpoints(t *testing.T) {
	s := newServer(t)
	alice := s.login(t, "alice")

	status, r := s.do(t, fasthttp.MethodPost, "/api/v1/groups/fam/tasks", alice, `{"title":"Groceries","priority":"high"}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	var task domain.Task
	require.NoError(t, json.Unmarshal(r.Data, &task))
	assert.Equal(t, domain.TaskStatusPending, task.Status)

	status, _ = s.do(t, fasthttp.MethodPut, "/api/v1/tasks/"+task.ID, alice, `{"status":"blocked"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _ = s.do(t, fasthttp.MethodPut, "/api/v1/tasks/"+task.ID, alice, `{"status":"done"}`)
	assert.Equal(t, fasthttp.StatusOK, status)

	status, _ = s.do(t, fasthttp.MethodPost, "/api/v1/groups/fam/tasks", alice, `{"title":"x","due_date":"tomorrow"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, r = s.do(t, fasthttp.MethodDelete, "/api/v1/groups/fam/members/me", alice, "")
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, string(domain.ErrCodeConflict), r.Code)

	status, _ = s.do(t, fasthttp.MethodGet, "/api/v1/groups/fam/members", alice, "")
	assert.Equal(t, fasthttp.StatusOK, status)
}

func TestJoinAndStatusEndpoints(t *testing.T) {
	s := newServer(t)
	carol := s.login(t, "carol")

	status, _ := s.do(t, fasthttp.MethodPost, "/api/v1/groups/fam/statuses", carol, `{"moods":["happy"]}`)
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, _ = s.do(t, fasthttp.MethodPost, "/api/v1/groups/join", carol, `{"invite_code":"code-fam","role":"caregiver"}`)
	require.Equal(t, fasthttp.StatusCreated, status)

	status, _ = s.do(t, fasthttp.MethodPost, "/api/v1/groups/fam/statuses", carol, `{"moods":["happy"],"feelings":["sore"]}`)
	assert.Equal(t, fasthttp.StatusCreated, status)

	status, _ = s.do(t, fasthttp.MethodPost, "/api/v1/groups/fam/statuses", carol, `{"moods":["grumpy"]}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, r := s.do(t, fasthttp.MethodGet, "/api/v1/statuses", carol, "")
	require.Equal(t, fasthttp.StatusOK, status)
	var entries []domain.StatusEntry
	require.NoError(t, json.Unmarshal(r.Data, &entries))
	assert.Len(t, entries, 1)
}

func TestAuthAndHealthEndpoints(t *testing.T) {
	s := newServer(t)

	status, _ := s.do(t, fasthttp.MethodGet, "/api/v1/profile", "", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	status, _ = s.do(t, fasthttp.MethodPost, "/api/v1/auth/login", "", `{"user_id":"ghost"}`)
	assert.Equal(t, fasthttp.StatusNotFound, status)

	status, _ = s.do(t, fasthttp.MethodPost, "/api/v1/auth/login", "", `not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	token := s.login(t, "dana")
	status, r := s.do(t, fasthttp.MethodPut, "/api/v1/profile", token, `{"avatar_url":"https://img/d.png"}`)
	require.Equal(t, fasthttp.StatusOK, status)
	var user domain.User
	require.NoError(t, json.Unmarshal(r.Data, &user))
	assert.Equal(t, "dana", user.DisplayName)
	assert.Equal(t, "https://img/d.png", user.AvatarURL)

	status, r = s.do(t, fasthttp.MethodGet, "/health", "", "")
	assert.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, "success", r.Status)
}
