package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
)

const uniqueViolation = "23505"

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository returns a Postgres-backed GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) repository.GroupRepository {
	return &groupRepository{pool: pool}
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	const query = `
	SELECT id, name, owner_id, invite_code, created_at, updated_at
	FROM groups
	WHERE id = $1
	`
	return scanGroup(r.pool.QueryRow(ctx, query, id))
}

func (r *groupRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Group, error) {
	const query = `
	SELECT id, name, owner_id, invite_code, created_at, updated_at
	FROM groups
	WHERE invite_code = $1
	`
	return scanGroup(r.pool.QueryRow(ctx, query, code))
}

func (r *groupRepository) ListForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	const query = `
	SELECT g.id, g.name, g.owner_id, g.invite_code, g.created_at, g.updated_at
	FROM groups g
	JOIN memberships m ON m.group_id = g.id
	WHERE m.user_id = $1
	ORDER BY m.joined_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, rows.Err()
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) (*domain.Group, error) {
	if group == nil {
		return nil, domain.ErrInvalidPayload
	}
	if group.ID == "" {
		group.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertGroup = `
	INSERT INTO groups (id, name, owner_id, invite_code)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, insertGroup,
		group.ID,
		group.Name,
		group.OwnerID,
		group.InviteCode,
	).Scan(&group.CreatedAt, &group.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.WrapError(domain.ErrCodeConflict, "group already exists", err)
		}
		return nil, err
	}

	const insertOwner = `
	INSERT INTO memberships (group_id, user_id, role, joined_at)
	VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, insertOwner, group.ID, group.OwnerID, domain.MemberRoleOwner, group.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return group, nil
}

func scanGroup(row scanner) (*domain.Group, error) {
	var group domain.Group
	if err := row.Scan(
		&group.ID,
		&group.Name,
		&group.OwnerID,
		&group.InviteCode,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}
