package repositories

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"scholarship-fund.backend/internal/domain/entities"
	"scholarship-fund.backend/internal/infrastructure/models"
	"scholarship-fund.backend/pkg/utils"
)

// FundEventRepository implements the event outbox
type FundEventRepository struct {
	db *gorm.DB
}

// NewFundEventRepository creates a new fund event repository
func NewFundEventRepository(db *gorm.DB) *FundEventRepository {
	return &FundEventRepository{db: db}
}

// Create persists the event and sets its ID (if empty) and Sequence
func (r *FundEventRepository) Create(ctx context.Context, event *entities.FundEvent) error {
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		return err
	}
	if event.ID == uuid.Nil {
		event.ID = utils.GenerateUUIDv7()
	}

	m := &models.FundEvent{
		ID:        event.ID,
		EventType: string(event.Type),
		Address:   event.Address.Hex(),
		Payload:   datatypes.JSON(payload),
		TxHash:    event.TxHash,
		CreatedAt: event.CreatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return err
	}
	event.Sequence = m.Sequence
	event.CreatedAt = m.CreatedAt
	return nil
}

// List returns matching events oldest first and the total match count
func (r *FundEventRepository) List(ctx context.Context, filter entities.FundEventFilter, offset, limit int) ([]*entities.FundEvent, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.FundEvent{})
	if filter.Type != "" {
		query = query.Where("event_type = ?", string(filter.Type))
	}
	if filter.Address != nil {
		query = query.Where("address = ?", filter.Address.Hex())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.FundEvent
	if err := query.Order("sequence ASC").Offset(offset).Limit(limit).Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	events := make([]*entities.FundEvent, 0, len(ms))
	for _, m := range ms {
		event := &entities.FundEvent{
			ID:        m.ID,
			Sequence:  m.Sequence,
			Type:      entities.FundEventType(m.EventType),
			Address:   common.HexToAddress(m.Address),
			TxHash:    m.TxHash,
			CreatedAt: m.CreatedAt,
		}
		var payload entities.EventPayload
		if len(m.Payload) > 0 {
			if err := json.Unmarshal(m.Payload, &payload); err != nil {
				return nil, 0, err
			}
		}
		event.ApplyPayload(payload)
		events = append(events, event)
	}
	return events, total, nil
}
