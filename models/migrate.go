package models

import "gorm.io/gorm"

// AllModels lists every persisted model in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Address{},
		&Store{},
		&Product{},
		&Topping{},
		&News{},
		&Setting{},
		&Order{},
		&OrderItem{},
		&OrderSequence{},
	}
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
