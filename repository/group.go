package repository

import (
	"context"

	"github.com/fastygo/carecircle/domain"
)

type GroupRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	GetByInviteCode(ctx context.Context, code string) (*domain.Group, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Group, error)
	Create(ctx context.Context, group *domain.Group) (*domain.Group, error)
}

type MembershipRepository interface {
	Get(ctx context.Context, groupID, userID string) (*domain.Membership, error)
	List(ctx context.Context, groupID string) ([]domain.Membership, error)
	Add(ctx context.Context, membership *domain.Membership) error
	Remove(ctx context.Context, groupID, userID string) error
}
