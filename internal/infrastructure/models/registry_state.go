package models

import "time"

// RegistryStateID is the key of the only registry_state row
const RegistryStateID = 1

type RegistryState struct {
	ID           int    `gorm:"primaryKey;autoIncrement:false"`
	Owner        string `gorm:"type:varchar(42);not null"`
	Paused       bool   `gorm:"not null;default:false"`
	Balance      string `gorm:"type:varchar(78);not null;default:'0'"`
	NextPosition int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (RegistryState) TableName() string {
	return "registry_state"
}
