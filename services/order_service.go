package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/teatime/teashop-api/metrics"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaceOrderInput carries everything needed to place an order
type PlaceOrderInput struct {
	CustomerID     uint
	Lines          []CartLine
	DeliveryMethod models.DeliveryMethod
	PaymentMethod  models.PaymentMethod
	StoreID        *uint
	AddressID      *uint
	CouponCode     *string
	Notes          string
}

// OrderService places, reads and transitions orders
type OrderService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewOrderService creates an order service backed by db
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, now: time.Now}
}

// WithClock overrides the time source used for order numbers (primarily for testing)
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// PlaceOrder prices the cart from the catalog and persists the order header and
// its items in one transaction. Nothing is written unless everything is.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		storeID, addressID, err := resolveDeliveryTarget(tx, in)
		if err != nil {
			return err
		}

		items, total, err := priceCart(tx, in.Lines)
		if err != nil {
			return err
		}

		// No promotion engine exists; coupon codes are recorded only.
		discount := decimal.Zero

		orderNumber, err := nextOrderNumber(tx, s.now())
		if err != nil {
			return err
		}

		order = models.Order{
			OrderNumber:    orderNumber,
			CustomerID:     in.CustomerID,
			TotalAmount:    total.Sub(discount),
			DiscountAmount: discount,
			Status:         models.StatusPending,
			PaymentMethod:  in.PaymentMethod,
			DeliveryMethod: in.DeliveryMethod,
			StoreID:        storeID,
			AddressID:      addressID,
			CouponCode:     in.CouponCode,
			Notes:          in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		order.Items = items

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(string(order.DeliveryMethod)).Inc()
	metrics.OrderAmount.Observe(order.TotalAmount.InexactFloat64())

	utils.Logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"total":        order.TotalAmount.String(),
		"items":        len(order.Items),
	}).Info("Order placed")

	return &order, nil
}

// resolveDeliveryTarget checks the store or address the delivery method needs
// and returns exactly one of them.
func resolveDeliveryTarget(tx *gorm.DB, in PlaceOrderInput) (*uint, *uint, error) {
	switch in.DeliveryMethod {
	case models.DeliveryPickup:
		if in.StoreID == nil {
			return nil, nil, ErrStoreNotFound
		}
		var store models.Store
		err := tx.Where("id = ? AND active = ?", *in.StoreID, true).First(&store).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrStoreNotFound
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load store: %w", err)
		}
		return &store.ID, nil, nil

	case models.DeliveryDelivery:
		if in.AddressID == nil {
			return nil, nil, ErrAddressNotFound
		}
		var address models.Address
		err := tx.Where("id = ? AND user_id = ?", *in.AddressID, in.CustomerID).First(&address).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAddressNotFound
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load address: %w", err)
		}
		return nil, &address.ID, nil
	}

	return nil, nil, fmt.Errorf("unknown delivery method %q", in.DeliveryMethod)
}

// GetOrder returns one order with its items, delivery target and owner contact.
// Non-privileged callers only match their own orders.
func (s *OrderService) GetOrder(ctx context.Context, id, callerID uint, privileged bool) (*models.Order, error) {
	db := s.db.WithContext(ctx)

	query := db.
		Preload("Items").
		Preload("Customer", unscopedContact).
		Preload("Store", unscoped).
		Preload("Address", unscoped).
		Where("id = ?", id)
	if !privileged {
		query = query.Where("customer_id = ?", callerID)
	}

	var order models.Order
	err := query.First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.missingOrderError(db, id, callerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	order.CustomerContact = &models.CustomerContact{
		Name:  order.Customer.Name,
		Email: order.Customer.Email,
		Phone: order.Customer.Phone,
	}
	return &order, nil
}

// missingOrderError logs a lookup that matched an order owned by someone
// else. Callers always get ErrOrderNotFound so foreign orders are not disclosed.
func (s *OrderService) missingOrderError(db *gorm.DB, id, callerID uint) error {
	var count int64
	if err := db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check order: %w", err)
	}
	if count > 0 {
		utils.Logger.WithFields(logrus.Fields{
			"order_id":  id,
			"caller_id": callerID,
		}).Warn("Order access denied to non-owner")
	}
	return ErrOrderNotFound
}

// ListForOwner returns every order owned by ownerID, newest first
func (s *OrderService) ListForOwner(ctx context.Context, ownerID uint) ([]models.Order, error) {
	db := s.db.WithContext(ctx)

	var orders []models.Order
	err := db.
		Preload("Items").
		Where("customer_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if err := attachProductRefs(db, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll returns every order, newest first, annotated with the owner's name.
// A non-nil status narrows the result.
func (s *OrderService) ListAll(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	query := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer", unscopedContact).
		Order("created_at DESC, id DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	for i := range orders {
		orders[i].CustomerName = orders[i].Customer.Name
	}
	return orders, nil
}

// UpdateStatus moves an order to next if the transition table allows it.
// The note is logged but not persisted.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, next models.OrderStatus, note string) (*models.Order, error) {
	var order models.Order
	var previous models.OrderStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}

		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
		}

		previous = order.Status
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return tx.Preload("Items").First(&order, id).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusTransitions.WithLabelValues(string(previous), string(next)).Inc()
	utils.Logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       next,
		"note":     note,
	}).Info("Order status updated")

	return &order, nil
}

// CancelOwn lets the owner cancel an order that is still pending
func (s *OrderService) CancelOwn(ctx context.Context, id, ownerID uint) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND customer_id = ?", id, ownerID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.missingOrderError(tx, id, ownerID)
		}
		if err != nil {
			return fmt.Errorf("failed to load order: %w", err)
		}

		if !order.Status.IsCancellableByOwner() {
			return ErrOrderNotCancellable
		}

		if err := tx.Model(&order).Update("status", models.StatusCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		return tx.Preload("Items").First(&order, id).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.OrderStatusTransitions.WithLabelValues(string(models.StatusPending), string(models.StatusCancelled)).Inc()
	utils.Logger.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": ownerID,
	}).Info("Order cancelled by customer")

	return &order, nil
}

// attachProductRefs sets the minimal catalog reference on each item.
// Deleted products are included so old orders still resolve.
func attachProductRefs(db *gorm.DB, orders []models.Order) error {
	var ids []uint
	for _, order := range orders {
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var products []models.Product
	if err := db.Unscoped().Select("id", "name", "available", "deleted_at").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	refs := make(map[uint]*models.ProductRef, len(products))
	for _, p := range products {
		refs[p.ID] = &models.ProductRef{
			ID:        p.ID,
			Name:      p.Name,
			Available: p.Available && !p.DeletedAt.Valid,
		}
	}

	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].Product = refs[orders[i].Items[j].ProductID]
		}
	}
	return nil
}

func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func unscopedContact(db *gorm.DB) *gorm.DB {
	return db.Unscoped().Select("id", "name", "email", "phone")
}
