package repositories

import (
	"context"

	"scholarship-fund.backend/internal/domain/entities"
)

type FundEventRepository interface {
	Create(ctx context.Context, event *entities.FundEvent) error
	List(ctx context.Context, filter entities.FundEventFilter, offset, limit int) ([]*entities.FundEvent, int64, error)
}
