package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
)

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository returns a Postgres-backed StatusRepository.
func NewStatusRepository(pool *pgxpool.Pool) repository.StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) Create(ctx context.Context, entry *domain.StatusEntry) (*domain.StatusEntry, error) {
	if entry == nil {
		return nil, domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO status_entries (id, group_id, user_id, moods, feelings, note, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.GroupID,
		entry.UserID,
		nonNil(entry.Moods),
		nonNil(entry.Feelings),
		entry.Note,
		nullTime(entry.CreatedAt),
	).Scan(&entry.CreatedAt); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *statusRepository) List(ctx context.Context, filter repository.StatusFilter) ([]domain.StatusEntry, error) {
	const query = `
	SELECT id, group_id, user_id, moods, feelings, note, created_at
	FROM status_entries
	WHERE ($1 = '' OR group_id = $1)
	  AND ($2 = '' OR user_id = $2)
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.GroupID, filter.UserID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.StatusEntry
	for rows.Next() {
		var e domain.StatusEntry
		if err := rows.Scan(&e.ID, &e.GroupID, &e.UserID, &e.Moods, &e.Feelings, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
