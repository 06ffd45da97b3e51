package usecases

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/domain/repositories"
	"scholarship-fund.backend/pkg/utils"
)

// EventSubscriber delivers events published after commit
type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan *entities.FundEvent, error)
}

// EventQuery is a listing request as received from a client
type EventQuery struct {
	Type    string
	Address string
	Offset  int64
	Limit   int64
}

// EventUsecase reads the persisted event log and the live stream
type EventUsecase struct {
	repo       repositories.FundEventRepository
	subscriber EventSubscriber
}

// NewEventUsecase creates the event usecase. subscriber may be nil, which disables streaming.
func NewEventUsecase(repo repositories.FundEventRepository, subscriber EventSubscriber) *EventUsecase {
	return &EventUsecase{repo: repo, subscriber: subscriber}
}

// ListEvents returns one page of the event log, oldest first
func (u *EventUsecase) ListEvents(ctx context.Context, q EventQuery) ([]*entities.FundEvent, utils.PaginationMeta, error) {
	filter, err := parseEventFilter(q)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	page := utils.GetPaginationParams(q.Offset, q.Limit)
	events, total, err := u.repo.List(ctx, filter, int(page.Offset), int(page.Limit))
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return events, utils.CalculateMeta(total, page.Offset, page.Limit, len(events)), nil
}

// Stream subscribes to live events until ctx ends
func (u *EventUsecase) Stream(ctx context.Context) (<-chan *entities.FundEvent, error) {
	if u.subscriber == nil {
		return nil, domainerrors.ErrStreamUnavailable
	}
	return u.subscriber.Subscribe(ctx)
}

func parseEventFilter(q EventQuery) (entities.FundEventFilter, error) {
	var filter entities.FundEventFilter
	if t := strings.TrimSpace(q.Type); t != "" {
		filter.Type = entities.FundEventType(t)
		if !filter.Type.Valid() {
			return filter, domainerrors.BadRequest("unknown event type " + t)
		}
	}
	if a := strings.TrimSpace(q.Address); a != "" {
		if !common.IsHexAddress(a) {
			return filter, domainerrors.BadRequest("address must be a 20-byte hex string")
		}
		addr := common.HexToAddress(a)
		filter.Address = &addr
	}
	return filter, nil
}
