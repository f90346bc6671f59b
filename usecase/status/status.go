package status

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
	"github.com/fastygo/carecircle/usecase"
)

type UseCase struct {
	statuses repository.StatusRepository
	groups   usecase.GroupAuthorizer
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
}

func New(statuses repository.StatusRepository, groups usecase.GroupAuthorizer, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		statuses: statuses,
		groups:   groups,
		buffer:   buffer,
		logger:   logger,
	}
}

// CreateEntry shares a mood check-in with a group the actor belongs to.
func (uc *UseCase) CreateEntry(ctx context.Context, actorID string, entry *domain.StatusEntry) (*domain.StatusEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.groups.Authorize(ctx, entry.GroupID, actorID); err != nil {
		return nil, err
	}
	entry.UserID = actorID
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Moods == nil {
		entry.Moods = []string{}
	}
	if entry.Feelings == nil {
		entry.Feelings = []string{}
	}

	created, err := uc.statuses.Create(ctx, entry)
	if err != nil {
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferStatus(ctx, entry); bufErr != nil {
				uc.logger.Error("failed to buffer status entry", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("status entry buffered due to repository error", zap.Error(err))
			return entry, nil
		}
		return nil, err
	}
	return created, nil
}

func (uc *UseCase) ListMine(ctx context.Context, userID string, limit, offset int) ([]domain.StatusEntry, error) {
	return uc.statuses.List(ctx, repository.StatusFilter{UserID: userID, Limit: limit, Offset: offset})
}
