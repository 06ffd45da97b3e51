package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Student is a registered scholarship row. Amounts are base-10 strings of wei.
type Student struct {
	WalletAddress string    `gorm:"type:varchar(42);primaryKey"`
	Name          string    `gorm:"type:varchar(256);not null;default:''"`
	Amount        string    `gorm:"type:varchar(78);not null;default:'0'"`
	HasClaimed    bool      `gorm:"not null;default:false"`
	Position      int64     `gorm:"not null;uniqueIndex"`
	ClaimedAt     null.Time `gorm:"type:timestamp"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Student) TableName() string {
	return "students"
}
