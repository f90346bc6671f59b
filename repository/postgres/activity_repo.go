package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
)

type statusActivitySource struct {
	pool *pgxpool.Pool
}

// NewStatusActivitySource projects status entries into feed activities.
func NewStatusActivitySource(pool *pgxpool.Pool) repository.ActivitySource {
	return &statusActivitySource{pool: pool}
}

func (s *statusActivitySource) Activities(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	const query = `
	SELECT s.id, s.group_id, s.user_id, s.moods, s.feelings, s.created_at, u.display_name, u.avatar_url
	FROM status_entries s
	JOIN users u ON u.id = s.user_id
	WHERE s.group_id = $1
	  AND ($2 = '' OR s.user_id = $2)
	  AND ($3::timestamptz IS NULL OR s.created_at >= $3)
	ORDER BY s.created_at DESC
	LIMIT $4
	`
	rows, err := s.pool.Query(ctx, query, filter.GroupID, filter.UserID, nullTime(filter.Since), clampLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var (
			entry domain.StatusEntry
			actor domain.Actor
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.GroupID,
			&entry.UserID,
			&entry.Moods,
			&entry.Feelings,
			&entry.CreatedAt,
			&actor.DisplayName,
			&actor.AvatarURL,
		); err != nil {
			return nil, err
		}
		actor.ID = entry.UserID
		activities = append(activities, domain.ActivityFromStatus(entry, actor))
	}
	return activities, rows.Err()
}

type taskActivitySource struct {
	pool *pgxpool.Pool
}

// NewTaskActivitySource projects task lifecycle events into feed activities.
func NewTaskActivitySource(pool *pgxpool.Pool) repository.ActivitySource {
	return &taskActivitySource{pool: pool}
}

func (s *taskActivitySource) Activities(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	const query = `
	SELECT e.id, e.task_id, e.group_id, e.user_id, e.title, e.status, e.priority, e.created_at, u.display_name, u.avatar_url
	FROM task_events e
	JOIN users u ON u.id = e.user_id
	WHERE e.group_id = $1
	  AND ($2 = '' OR e.user_id = $2)
	  AND ($3::timestamptz IS NULL OR e.created_at >= $3)
	ORDER BY e.created_at DESC
	LIMIT $4
	`
	rows, err := s.pool.Query(ctx, query, filter.GroupID, filter.UserID, nullTime(filter.Since), clampLimit(filter.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var (
			event domain.TaskEvent
			actor domain.Actor
		)
		if err := rows.Scan(
			&event.ID,
			&event.TaskID,
			&event.GroupID,
			&event.UserID,
			&event.Title,
			&event.Status,
			&event.Priority,
			&event.CreatedAt,
			&actor.DisplayName,
			&actor.AvatarURL,
		); err != nil {
			return nil, err
		}
		actor.ID = event.UserID
		activities = append(activities, domain.ActivityFromTaskEvent(event, actor))
	}
	return activities, rows.Err()
}
