// Package activity serves the merged group feed the feed Fetcher consumes.
package activity

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/pkg/feed"
	"github.com/fastygo/carecircle/repository"
	"github.com/fastygo/carecircle/usecase"
)

// Query is a feed request as parsed from the wire.
type Query struct {
	GroupID  string
	UserID   string
	Time     feed.TimeFilter
	Activity feed.ActivityFilter
	Since    time.Time
	Limit    int
}

type Config struct {
	DefaultLimit int
	MaxLimit     int
}

type UseCase struct {
	statuses repository.ActivitySource
	tasks    repository.ActivitySource
	groups   usecase.GroupAuthorizer
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(statuses, tasks repository.ActivitySource, groups usecase.GroupAuthorizer, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = feed.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	return &UseCase{
		statuses: statuses,
		tasks:    tasks,
		groups:   groups,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Feed returns the group's activity newest first. Status entries and task
// events are read concurrently and merged.
func (uc *UseCase) Feed(ctx context.Context, viewerID string, q Query) ([]domain.Activity, error) {
	if _, err := uc.groups.Authorize(ctx, q.GroupID, viewerID); err != nil {
		return nil, err
	}

	limit := q.Limit
	switch {
	case limit <= 0:
		limit = uc.cfg.DefaultLimit
	case limit > uc.cfg.MaxLimit:
		limit = uc.cfg.MaxLimit
	}
	since := q.Since
	if since.IsZero() {
		since = feed.Since(feed.ParseTimeFilter(string(q.Time)), uc.now().UTC())
	}
	filter := repository.ActivityFilter{
		GroupID: q.GroupID,
		UserID:  q.UserID,
		Since:   since,
		Limit:   limit,
	}

	activity := feed.ParseActivityFilter(string(q.Activity))
	var moods, tasks []domain.Activity
	g, gctx := errgroup.WithContext(ctx)
	if activity != feed.ActivityTask {
		g.Go(func() error {
			var err error
			moods, err = uc.statuses.Activities(gctx, filter)
			return err
		})
	}
	if activity != feed.ActivityMood {
		g.Go(func() error {
			var err error
			tasks, err = uc.tasks.Activities(gctx, filter)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		uc.logger.Error("feed query failed", zap.String("group_id", q.GroupID), zap.Error(err))
		return nil, err
	}

	merged := merge(moods, tasks, limit)
	uc.logger.Debug("feed served",
		zap.String("group_id", q.GroupID),
		zap.Int("items", len(merged)))
	return merged, nil
}

// merge combines both streams newest first and caps the result at limit.
// Equal timestamps keep status entries ahead of task events.
func merge(moods, tasks []domain.Activity, limit int) []domain.Activity {
	out := make([]domain.Activity, 0, len(moods)+len(tasks))
	out = append(out, moods...)
	out = append(out, tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
