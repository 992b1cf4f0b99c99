package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a drink on the menu. PriceL of zero means size L is not offered.
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	Category     string          `gorm:"index" json:"category"`
	Description  string          `gorm:"type:text" json:"description"`
	PriceM       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_m"`
	PriceL       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_l"`
	SugarOptions []string        `gorm:"serializer:json" json:"sugar_options"` // empty accepts any value
	IceOptions   []string        `gorm:"serializer:json" json:"ice_options"`   // empty accepts any value
	Available    bool            `gorm:"not null;default:true" json:"available"`
	ImageKey     *string         `json:"image_key"`
	ImageURL     *string         `gorm:"-" json:"image_url,omitempty"` // computed field
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// PriceFor returns the unit price for size and whether the size is offered
func (p Product) PriceFor(size Size) (decimal.Decimal, bool) {
	switch size {
	case SizeM:
		return p.PriceM, p.PriceM.IsPositive()
	case SizeL:
		return p.PriceL, p.PriceL.IsPositive()
	}
	return decimal.Zero, false
}

// AllowsSugar reports whether level is one of the product's sugar options
func (p Product) AllowsSugar(level string) bool {
	return allows(p.SugarOptions, level)
}

// AllowsIce reports whether level is one of the product's ice options
func (p Product) AllowsIce(level string) bool {
	return allows(p.IceOptions, level)
}

func allows(options []string, value string) bool {
	if len(options) == 0 {
		return true
	}
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

// Topping is an add-on that can be put into any drink
type Topping struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"uniqueIndex;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Available bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Topping model
func (Topping) TableName() string {
	return "toppings"
}
