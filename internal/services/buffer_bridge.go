package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/internal/infrastructure/buffer"
	"github.com/fastygo/carecircle/usecase"
)

// BufferBridge adapts use case writes into buffer items.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.Item{
		UserID:    user.ID,
		Entity:    buffer.EntityProfile,
		Operation: operation,
	}, user)
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation, actorID string, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.Item{
		UserID:    actorID,
		Entity:    buffer.EntityTask,
		Operation: operation,
	}, task)
}

func (b *BufferBridge) BufferStatus(ctx context.Context, entry *domain.StatusEntry) error {
	if entry == nil {
		return domain.ErrInvalidPayload
	}
	return b.enqueue(ctx, buffer.Item{
		UserID:    entry.UserID,
		Entity:    buffer.EntityStatus,
		Operation: buffer.OperationCreate,
	}, entry)
}

func (b *BufferBridge) enqueue(ctx context.Context, item buffer.Item, payload interface{}) error {
	if b == nil || b.processor == nil {
		return domain.NewError(domain.ErrCodeInternal, "write buffer not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	item.Data = data
	return b.processor.BufferOperation(ctx, item)
}
