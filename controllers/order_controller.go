package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/middleware"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/services"
	"github.com/teatime/teashop-api/utils"
)

// OrderItemRequest is one cart line. Name and image are accepted for client
// convenience but the catalog copies are what get stored.
type OrderItemRequest struct {
	ProductID uint             `json:"product_id" binding:"required"`
	Name      string           `json:"name"`
	Image     string           `json:"image"`
	Size      string           `json:"size" binding:"required,oneof=M L"`
	Sugar     string           `json:"sugar"`
	Ice       string           `json:"ice"`
	Toppings  []string         `json:"toppings"`
	Quantity  int              `json:"quantity" binding:"required,gt=0,lte=99"`
	Price     *decimal.Decimal `json:"price"`
}

// CreateOrderRequest represents the request body for placing an order
type CreateOrderRequest struct {
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryMethod string             `json:"delivery_method" binding:"required,oneof=pickup delivery"`
	PaymentMethod  string             `json:"payment_method" binding:"required,oneof=cash credit mobile"`
	StoreID        *uint              `json:"store_id"`
	AddressID      *uint              `json:"address_id"`
	CouponCode     *string            `json:"coupon_code" binding:"omitempty,max=50"`
	Notes          string             `json:"notes" binding:"max=500"`
}

// UpdateOrderStatusRequest represents the request body for a privileged status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=500"`
}

// CreateOrder handles POST /api/v1/orders - prices the cart and places an order
func CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	switch models.DeliveryMethod(req.DeliveryMethod) {
	case models.DeliveryPickup:
		if req.StoreID == nil {
			utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "store_id is required for pickup orders")
			return
		}
		req.AddressID = nil
	case models.DeliveryDelivery:
		if req.AddressID == nil {
			utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "address_id is required for delivery orders")
			return
		}
		req.StoreID = nil
	}

	lines := make([]services.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.CartLine{
			ProductID: item.ProductID,
			Size:      models.Size(item.Size),
			Sugar:     item.Sugar,
			Ice:       item.Ice,
			Toppings:  item.Toppings,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	orderService := services.NewOrderService(config.GetDB())
	order, err := orderService.PlaceOrder(c.Request.Context(), services.PlaceOrderInput{
		CustomerID:     userID,
		Lines:          lines,
		DeliveryMethod: models.DeliveryMethod(req.DeliveryMethod),
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		StoreID:        req.StoreID,
		AddressID:      req.AddressID,
		CouponCode:     req.CouponCode,
		Notes:          req.Notes,
	})
	if err != nil {
		respondOrderError(c, err, "Failed to create order")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, gin.H{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"order":        order,
	})
}

// ListOrders handles GET /api/v1/orders - lists the caller's own orders
func ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := services.NewOrderService(config.GetDB()).ListForOwner(c.Request.Context(), userID)
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve orders")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, orders)
}

// ListAllOrders handles GET /api/v1/orders/all - lists every order (managers and admins)
// An optional ?status= narrows the result.
func ListAllOrders(c *gin.Context) {
	var status *models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseOrderStatus(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		status = &parsed
	}

	orders, err := services.NewOrderService(config.GetDB()).ListAll(c.Request.Context(), status)
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve orders")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id - gets one order
// Customers only see their own orders; managers and admins see any.
func GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := services.NewOrderService(config.GetDB()).
		GetOrder(c.Request.Context(), orderID, userID, middleware.IsPrivileged(c))
	if err != nil {
		respondOrderError(c, err, "Failed to retrieve order")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, order)
}

// CancelOrder handles PATCH /api/v1/orders/:id/cancel - the owner cancels a pending order
func CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	order, err := services.NewOrderService(config.GetDB()).CancelOwn(c.Request.Context(), orderID, userID)
	if err != nil {
		respondOrderError(c, err, "Failed to cancel order")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status - managers and admins move an order
func UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	next, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := services.NewOrderService(config.GetDB()).
		UpdateStatus(c.Request.Context(), orderID, next, req.Note)
	if err != nil {
		respondOrderError(c, err, "Failed to update order status")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, order)
}

// respondOrderError maps order service errors onto HTTP responses
func respondOrderError(c *gin.Context, err error, fallback string) {
	var pricingErr *services.PricingError
	switch {
	case errors.As(err, &pricingErr):
		utils.RespondErrorWithDetails(c, http.StatusUnprocessableEntity, pricingErr.Code, pricingErr.Message, gin.H{"line": pricingErr.Line})
	case errors.Is(err, services.ErrEmptyCart):
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrStoreNotFound):
		utils.RespondError(c, http.StatusBadRequest, "STORE_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrAddressNotFound):
		utils.RespondError(c, http.StatusBadRequest, "ADDRESS_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", err.Error())
	case errors.Is(err, services.ErrOrderNotCancellable):
		utils.RespondError(c, http.StatusConflict, "ORDER_NOT_CANCELLABLE", err.Error())
	default:
		respondDatabaseError(c, err, fallback)
	}
}
