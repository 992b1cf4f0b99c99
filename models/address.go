package models

import (
	"time"

	"gorm.io/gorm"
)

// Address is an entry in a user's delivery address book
type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	User       User           `gorm:"foreignKey:UserID" json:"-"`
	Recipient  string         `gorm:"not null" json:"recipient"`
	Phone      string         `gorm:"not null" json:"phone"`
	Line1      string         `gorm:"not null" json:"line1"`
	Line2      string         `json:"line2"`
	City       string         `gorm:"not null" json:"city"`
	PostalCode string         `json:"postal_code"`
	IsDefault  bool           `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}
