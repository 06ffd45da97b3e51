package models

import "time"

// PayoutAccount is the external balance ledger credited by claims and withdrawals
type PayoutAccount struct {
	Address   string `gorm:"type:varchar(42);primaryKey"`
	Balance   string `gorm:"type:varchar(78);not null;default:'0'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayoutAccount) TableName() string {
	return "payout_accounts"
}
