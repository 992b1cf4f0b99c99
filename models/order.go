package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays for an order
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
	PaymentMobile PaymentMethod = "mobile"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCredit, PaymentMobile:
		return true
	}
	return false
}

// DeliveryMethod decides whether an order references a store or an address
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

// IsValid reports whether m is a known delivery method
func (m DeliveryMethod) IsValid() bool {
	return m == DeliveryPickup || m == DeliveryDelivery
}

// Size is the cup size of a drink
type Size string

const (
	SizeM Size = "M"
	SizeL Size = "L"
)

// IsValid reports whether s is a known size
func (s Size) IsValid() bool {
	return s == SizeM || s == SizeL
}

// Order is the header of a placed order.
// Exactly one of StoreID and AddressID is set, depending on DeliveryMethod.
type Order struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	OrderNumber     string           `gorm:"uniqueIndex;size:32;not null" json:"order_number"`
	CustomerID      uint             `gorm:"not null;index" json:"customer_id"` // foreign key to users table
	Customer        User             `gorm:"foreignKey:CustomerID" json:"-"`
	TotalAmount     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DiscountAmount  decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	Status          OrderStatus      `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentMethod   PaymentMethod    `gorm:"size:20;not null" json:"payment_method"`
	DeliveryMethod  DeliveryMethod   `gorm:"size:20;not null" json:"delivery_method"`
	StoreID         *uint            `gorm:"index" json:"store_id"`
	Store           *Store           `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	AddressID       *uint            `gorm:"index" json:"address_id"`
	Address         *Address         `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	CouponCode      *string          `json:"coupon_code"` // recorded only, never redeemed
	Notes           string           `gorm:"type:text" json:"notes"`
	Items           []OrderItem      `gorm:"foreignKey:OrderID" json:"items"`
	CustomerContact *CustomerContact `gorm:"-" json:"customer,omitempty"`      // set on single fetch
	CustomerName    string           `gorm:"-" json:"customer_name,omitempty"` // set on privileged listing
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// CustomerContact is the minimal owner profile returned with an order
type CustomerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderItem is one priced cart line frozen at purchase time.
// ProductName and ProductImage are copies so history survives catalog edits.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	Product      *ProductRef     `gorm:"-" json:"product,omitempty"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	ProductImage *string         `json:"product_image"`
	Size         Size            `gorm:"size:1;not null" json:"size"`
	Sugar        string          `json:"sugar"`
	Ice          string          `json:"ice"`
	Toppings     []string        `gorm:"serializer:json" json:"toppings"`
	Quantity     int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	SubTotal     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sub_total"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// ProductRef is the minimal catalog reference attached to listed order items
type ProductRef struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// OrderSequence holds the last order number suffix issued for a calendar day
type OrderSequence struct {
	Day       string `gorm:"primaryKey;size:8"` // YYYYMMDD
	LastValue int    `gorm:"not null"`
}

// TableName specifies the table name for the OrderSequence model
func (OrderSequence) TableName() string {
	return "order_sequences"
}
