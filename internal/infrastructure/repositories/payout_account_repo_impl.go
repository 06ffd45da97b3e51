package repositories

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/infrastructure/models"
)

// PayoutAccountRepository implements the payout ledger
type PayoutAccountRepository struct {
	db *gorm.DB
}

// NewPayoutAccountRepository creates a new payout account repository
func NewPayoutAccountRepository(db *gorm.DB) *PayoutAccountRepository {
	return &PayoutAccountRepository{db: db}
}

// Credit adds amount to the account, creating it on first credit
func (r *PayoutAccountRepository) Credit(ctx context.Context, address common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: credit amount must be non-negative", domainerrors.ErrInvalidInput)
	}
	db := GetDB(ctx, r.db)

	var m models.PayoutAccount
	err := db.Where("address = ?", address.Hex()).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&models.PayoutAccount{
			Address: address.Hex(),
			Balance: amount.String(),
		}).Error
	}
	if err != nil {
		return err
	}

	current, ok := new(big.Int).SetString(m.Balance, 10)
	if !ok {
		return fmt.Errorf("payout account %s: corrupt balance %q", m.Address, m.Balance)
	}
	return db.Model(&models.PayoutAccount{}).
		Where("address = ?", m.Address).
		Updates(map[string]interface{}{
			"balance":    current.Add(current, amount).String(),
			"updated_at": time.Now(),
		}).Error
}

// GetBalance returns the account balance, zero for unknown accounts
func (r *PayoutAccountRepository) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	var m models.PayoutAccount
	err := GetDB(ctx, r.db).Where("address = ?", address.Hex()).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, err
	}
	balance, ok := new(big.Int).SetString(m.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("payout account %s: corrupt balance %q", m.Address, m.Balance)
	}
	return balance, nil
}
