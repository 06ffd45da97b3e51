package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/datatypes"
)

// FundEvent is the outbox row for one emitted registry event
type FundEvent struct {
	Sequence  int64          `gorm:"primaryKey;autoIncrement"`
	ID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	EventType string         `gorm:"type:varchar(40);not null;index"`
	Address   string         `gorm:"type:varchar(42);not null;index"`
	Payload   datatypes.JSON `gorm:"not null"`
	TxHash    null.String    `gorm:"type:varchar(66)"`
	CreatedAt time.Time      `gorm:"index"`
}

func (FundEvent) TableName() string {
	return "fund_events"
}
