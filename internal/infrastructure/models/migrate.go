package models

import "gorm.io/gorm"

// All lists every table owned by the service
func All() []interface{} {
	return []interface{}{
		&Student{},
		&RegistryState{},
		&FundEvent{},
		&PayoutAccount{},
	}
}

// AutoMigrate creates or updates every table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
