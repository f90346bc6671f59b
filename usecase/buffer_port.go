package usecase

import (
	"context"

	"github.com/fastygo/carecircle/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferTask(ctx context.Context, operation, actorID string, task *domain.Task) error
	BufferStatus(ctx context.Context, entry *domain.StatusEntry) error
}

// GroupAuthorizer resolves a caller's membership in a group.
// Unknown groups yield ErrGroupNotFound, non-members ErrNotMember.
type GroupAuthorizer interface {
	Authorize(ctx context.Context, groupID, userID string) (*domain.Membership, error)
}
