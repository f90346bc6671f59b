package repository

import (
	"context"
	"time"

	"github.com/fastygo/carecircle/domain"
)

// ActivityFilter narrows a feed query. Zero values mean "no constraint".
type ActivityFilter struct {
	GroupID string
	UserID  string
	Since   time.Time
	Limit   int
}

// ActivitySource yields feed projections, newest first, actor columns joined in.
type ActivitySource interface {
	Activities(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
}
