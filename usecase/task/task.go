package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
	"github.com/fastygo/carecircle/usecase"
)

type UseCase struct {
	tasks  repository.TaskRepository
	groups usecase.GroupAuthorizer
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, groups usecase.GroupAuthorizer, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		groups: groups,
		buffer: buffer,
		logger: logger,
	}
}

// ListTasks lists a group's tasks on behalf of a member.
func (uc *UseCase) ListTasks(ctx context.Context, userID string, filter repository.TaskFilter) ([]domain.Task, error) {
	if _, err := uc.groups.Authorize(ctx, filter.GroupID, userID); err != nil {
		return nil, err
	}
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.groups.Authorize(ctx, task.GroupID, userID); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, actorID string, task *domain.Task) (*domain.Task, error) {
	if err := task.Normalize(); err != nil {
		return nil, err
	}
	if _, err := uc.groups.Authorize(ctx, task.GroupID, actorID); err != nil {
		return nil, err
	}
	task.UserID = actorID
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, actorID, task) {
			return task, nil
		}
		return nil, err
	}
	uc.recordEvent(ctx, actorID, created)
	return created, nil
}

// UpdateTask applies the non-empty fields of patch to the stored task.
func (uc *UseCase) UpdateTask(ctx context.Context, actorID string, patch *domain.Task) (*domain.Task, error) {
	if patch == nil || patch.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	task, err := uc.GetTask(ctx, actorID, patch.ID)
	if err != nil {
		return nil, err
	}

	if patch.Title != "" {
		task.Title = patch.Title
	}
	if patch.Description != "" {
		task.Description = patch.Description
	}
	if patch.Status != "" {
		task.Status = patch.Status
	}
	if patch.Priority != "" {
		task.Priority = patch.Priority
	}
	if patch.AssigneeID != "" {
		task.AssigneeID = patch.AssigneeID
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Metadata != nil {
		task.Metadata = patch.Metadata
	}
	if err := task.Normalize(); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationUpdate, actorID, task) {
			return task, nil
		}
		return nil, err
	}
	uc.recordEvent(ctx, actorID, task)
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, actorID, id string) error {
	task, err := uc.GetTask(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, actorID, task) {
			return nil
		}
		return err
	}
	return nil
}

// recordEvent appends to the lifecycle log. The task write already
// succeeded, so a failed append is logged rather than returned.
func (uc *UseCase) recordEvent(ctx context.Context, actorID string, task *domain.Task) {
	event := task.EventFor(actorID)
	if err := uc.tasks.AppendEvent(ctx, &event); err != nil {
		uc.logger.Error("failed to append task event",
			zap.String("task_id", task.ID),
			zap.Error(err))
	}
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation, actorID string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, actorID, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation))
	return true
}
