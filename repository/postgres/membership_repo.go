package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
)

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository returns a Postgres-backed MembershipRepository.
func NewMembershipRepository(pool *pgxpool.Pool) repository.MembershipRepository {
	return &membershipRepository{pool: pool}
}

func (r *membershipRepository) Get(ctx context.Context, groupID, userID string) (*domain.Membership, error) {
	const query = `
	SELECT group_id, user_id, role, joined_at
	FROM memberships
	WHERE group_id = $1 AND user_id = $2
	`
	var m domain.Membership
	if err := r.pool.QueryRow(ctx, query, groupID, userID).Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotMember
		}
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) List(ctx context.Context, groupID string) ([]domain.Membership, error) {
	const query = `
	SELECT m.group_id, m.user_id, m.role, m.joined_at, u.display_name, u.avatar_url
	FROM memberships m
	JOIN users u ON u.id = m.user_id
	WHERE m.group_id = $1
	ORDER BY m.joined_at ASC
	`
	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt, &m.DisplayName, &m.AvatarURL); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipRepository) Add(ctx context.Context, m *domain.Membership) error {
	if m == nil || m.GroupID == "" || m.UserID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO memberships (group_id, user_id, role, joined_at)
	VALUES ($1, $2, $3, COALESCE($4, NOW()))
	RETURNING joined_at
	`
	if err := r.pool.QueryRow(ctx, query, m.GroupID, m.UserID, m.Role, nullTime(m.JoinedAt)).Scan(&m.JoinedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *membershipRepository) Remove(ctx context.Context, groupID, userID string) error {
	const query = `DELETE FROM memberships WHERE group_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, groupID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotMember
	}
	return nil
}
