package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	// DefaultLimit caps a feed request when the caller does not set one.
	DefaultLimit = 50
	// DefaultTimeout bounds a request whose context has no deadline.
	DefaultTimeout = 30 * time.Second
)

// Scope is the boundary a feed query is restricted to. GroupID is required;
// ActorID optionally narrows the feed to one member of the group.
type Scope struct {
	GroupID string
	ActorID string
}

// Credentials identify the caller. They are attached to each request and
// never stored by the Fetcher.
type Credentials struct {
	UserID string
	Token  string
}

// Source is anything that can produce feed items for a scope.
type Source interface {
	Fetch(ctx context.Context, scope Scope, filters Filters, creds Credentials) ([]Item, error)
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	BaseURL string
	// Timeout applies when ctx carries no deadline. Zero means DefaultTimeout.
	Timeout time.Duration
	Limit   int
	Client  *fasthttp.Client
	// Now is the viewer's clock; its location drives the since bound.
	Now func() time.Time
}

// Fetcher queries the backend feed endpoint and normalizes its records.
type Fetcher struct {
	baseURL string
	timeout time.Duration
	limit   int
	client  *fasthttp.Client
	now     func() time.Time
	logger  *zap.Logger
}

// NewFetcher builds a Fetcher. A nil client gets a fasthttp.Client with
// default settings.
func NewFetcher(cfg FetcherConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &fasthttp.Client{Name: "carecircle-feed"}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Fetcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		limit:   cfg.Limit,
		client:  cfg.Client,
		now:     cfg.Now,
		logger:  logger,
	}
}

var _ Source = (*Fetcher)(nil)

type roundTrip struct {
	status int
	body   []byte
	err    error
}

// Fetch performs exactly one GET against the feed endpoint. Server-side
// filtering is requested for every active filter but is not trusted; run
// ApplyFilters over the result.
func (f *Fetcher) Fetch(ctx context.Context, scope Scope, filters Filters, creds Credentials) ([]Item, error) {
	if strings.TrimSpace(scope.GroupID) == "" {
		return nil, ErrNoScope
	}
	if creds.Token == "" {
		return nil, newError(KindAuth, "missing credentials", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(KindNetwork, "request cancelled", err)
	}

	uri := f.requestURI(scope, filters.Normalized(), creds)
	// The request goroutine outlives a cancelled ctx; it always needs a deadline.
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(f.timeout)
	}

	done := make(chan roundTrip, 1)
	go func() {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(uri)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+creds.Token)

		err := f.client.DoDeadline(req, resp, deadline)
		done <- roundTrip{
			status: resp.StatusCode(),
			body:   append([]byte(nil), resp.Body()...),
			err:    err,
		}
	}()

	var rt roundTrip
	select {
	case rt = <-done:
	case <-ctx.Done():
		return nil, newError(KindNetwork, "request cancelled", ctx.Err())
	}

	if rt.err != nil {
		return nil, newError(KindNetwork, "feed request failed", rt.err)
	}
	if err := classifyStatus(rt.status, rt.body); err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(rt.body, &env); err != nil {
		return nil, newError(KindProtocol, "decode feed response", err)
	}
	var records []record
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			return nil, newError(KindProtocol, "decode feed records", err)
		}
	}

	items := make([]Item, 0, len(records))
	dropped := 0
	for _, rec := range records {
		item, ok := rec.normalize()
		if !ok {
			dropped++
			continue
		}
		items = append(items, item)
	}
	if dropped > 0 {
		f.logger.Warn("dropped malformed feed records",
			zap.String("group_id", scope.GroupID),
			zap.Int("dropped", dropped),
			zap.Int("kept", len(items)))
	}
	f.logger.Debug("feed fetched",
		zap.String("group_id", scope.GroupID),
		zap.Int("items", len(items)))
	return items, nil
}

func (f *Fetcher) requestURI(scope Scope, filters Filters, creds Credentials) string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)

	args.Set("timeFilter", string(filters.Time))
	args.Set("activityFilter", string(filters.Activity))
	args.Set("limit", strconv.Itoa(f.limit))

	actor := scope.ActorID
	if filters.Actor == ActorSelf {
		actor = creds.UserID
	}
	if actor != "" {
		args.Set("userID", actor)
	}
	if since := Since(filters.Time, f.now()); !since.IsZero() {
		args.Set("since", since.UTC().Format(time.RFC3339))
	}

	return f.baseURL + "/api/v1/groups/" + url.PathEscape(scope.GroupID) + "/feed?" + args.String()
}

func classifyStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := errorMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	cause := errors.New(strconv.Itoa(status) + " " + http.StatusText(status))
	switch {
	case status == http.StatusUnauthorized:
		return newError(KindAuth, msg, cause)
	case status == http.StatusForbidden, status == http.StatusNotFound:
		return newError(KindScope, msg, cause)
	case status == http.StatusTooManyRequests, status >= 500:
		return newError(KindNetwork, msg, cause)
	default:
		return newError(KindProtocol, msg, cause)
	}
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  json.RawMessage `json:"error"`
}

func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return ""
	}
	var msg string
	if err := json.Unmarshal(env.Error, &msg); err != nil {
		return string(env.Error)
	}
	return msg
}

type record struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Actor      struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
	} `json:"actor"`
	Mood *struct {
		Moods    []string `json:"moods"`
		Feelings []string `json:"feelings"`
	} `json:"mood"`
	Task *struct {
		Title    string `json:"title"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
	} `json:"task"`
}

// normalize reshapes a backend record into an Item, rejecting records that
// would break the Item invariants downstream.
func (r record) normalize() (Item, bool) {
	if r.ID == "" || r.OccurredAt.IsZero() || r.Actor.ID == "" {
		return Item{}, false
	}
	item := Item{
		ID:        r.ID,
		Kind:      Kind(r.Kind),
		Timestamp: r.OccurredAt,
		Actor: Actor{
			ID:          r.Actor.ID,
			DisplayName: r.Actor.DisplayName,
			AvatarURL:   r.Actor.AvatarURL,
		},
	}
	switch item.Kind {
	case KindMood:
		payload := &MoodPayload{Moods: []string{}, Feelings: []string{}}
		if r.Mood != nil {
			payload.Moods = knownTags(r.Mood.Moods, knownMoods)
			payload.Feelings = knownTags(r.Mood.Feelings, knownFeelings)
		}
		item.Mood = payload
	case KindTask:
		if r.Task == nil {
			return Item{}, false
		}
		if _, ok := knownStatuses[r.Task.Status]; !ok {
			return Item{}, false
		}
		if _, ok := knownPriorities[r.Task.Priority]; !ok {
			return Item{}, false
		}
		item.Task = &TaskPayload{Title: r.Task.Title, Status: r.Task.Status, Priority: r.Task.Priority}
	default:
		return Item{}, false
	}
	return item, true
}

func knownTags(tags []string, known map[string]struct{}) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := known[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
