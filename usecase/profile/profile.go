package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
	"github.com/fastygo/carecircle/usecase"
)

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile merges the editable fields onto the stored user.
func (uc *UseCase) UpdateProfile(ctx context.Context, update *domain.User) (*domain.User, error) {
	if update == nil || update.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	user, err := uc.users.GetByID(ctx, update.ID)
	switch {
	case err == nil:
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		user = &domain.User{ID: update.ID, Role: "member", Status: "active"}
	default:
		return nil, err
	}

	if update.Email != "" {
		user.Email = update.Email
	}
	if update.DisplayName != "" {
		user.DisplayName = update.DisplayName
	}
	if update.AvatarURL != "" {
		user.AvatarURL = update.AvatarURL
	}
	if update.Metadata != nil {
		user.Metadata = update.Metadata
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}
