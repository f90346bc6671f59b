package repository

import (
	"context"

	"github.com/fastygo/carecircle/domain"
)

type StatusFilter struct {
	GroupID string
	UserID  string
	Limit   int
	Offset  int
}

type StatusRepository interface {
	Create(ctx context.Context, entry *domain.StatusEntry) (*domain.StatusEntry, error)
	List(ctx context.Context, filter StatusFilter) ([]domain.StatusEntry, error)
}
