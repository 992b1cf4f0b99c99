package models

import (
	"time"

	"gorm.io/gorm"
)

// Store is a physical shop where pickup orders are collected
type Store struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Address      string         `gorm:"not null" json:"address"`
	Phone        string         `json:"phone"`
	OpeningHours string         `json:"opening_hours"`
	Active       bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Store model
func (Store) TableName() string {
	return "stores"
}
