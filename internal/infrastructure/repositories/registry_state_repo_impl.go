package repositories

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/infrastructure/models"
)

// RegistryStateRepository implements the singleton registry row
type RegistryStateRepository struct {
	db *gorm.DB
}

// NewRegistryStateRepository creates a new registry state repository
func NewRegistryStateRepository(db *gorm.DB) *RegistryStateRepository {
	return &RegistryStateRepository{db: db}
}

// Get returns the registry row, locked when ctx came from UnitOfWork.WithLock
func (r *RegistryStateRepository) Get(ctx context.Context) (*entities.RegistryState, error) {
	var m models.RegistryState
	if err := GetDB(ctx, r.db).Where("id = ?", models.RegistryStateID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	balance, ok := new(big.Int).SetString(m.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("registry state: corrupt balance %q", m.Balance)
	}
	return &entities.RegistryState{
		Owner:        common.HexToAddress(m.Owner),
		Paused:       m.Paused,
		Balance:      balance,
		NextPosition: m.NextPosition,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

// Create inserts the registry row
func (r *RegistryStateRepository) Create(ctx context.Context, state *entities.RegistryState) error {
	now := time.Now()
	return GetDB(ctx, r.db).Create(&models.RegistryState{
		ID:           models.RegistryStateID,
		Owner:        state.Owner.Hex(),
		Paused:       state.Paused,
		Balance:      entities.AmountString(state.Balance),
		NextPosition: state.NextPosition,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
}

// Update overwrites every mutable column of the registry row
func (r *RegistryStateRepository) Update(ctx context.Context, state *entities.RegistryState) error {
	result := GetDB(ctx, r.db).Model(&models.RegistryState{}).
		Where("id = ?", models.RegistryStateID).
		Updates(map[string]interface{}{
			"owner":         state.Owner.Hex(),
			"paused":        state.Paused,
			"balance":       entities.AmountString(state.Balance),
			"next_position": state.NextPosition,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
