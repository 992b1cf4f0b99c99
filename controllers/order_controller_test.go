package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/tests/testutil"
	"gorm.io/gorm"
)

type orderTestData struct {
	db       *gorm.DB
	customer models.User
	other    models.User
	manager  models.User
	store    models.Store
	address  models.Address
}

func setupOrderTest(t *testing.T) orderTestData {
	t.Helper()
	db := setupTestDB(t)

	product := models.Product{
		ID:           7,
		Name:         "Jasmine Green Tea",
		PriceM:       decimal.NewFromInt(55),
		PriceL:       decimal.NewFromInt(65),
		SugarOptions: []string{"0%", "50%", "100%"},
		IceOptions:   []string{"none", "less", "normal"},
		Available:    true,
	}
	require.NoError(t, db.Create(&product).Error)

	data := orderTestData{
		db:       db,
		customer: testutil.CreateUser(t, db, "alice", models.RoleCustomer),
		other:    testutil.CreateUser(t, db, "bob", models.RoleCustomer),
		manager:  testutil.CreateUser(t, db, "manny", models.RoleManager),
		store:    testutil.CreateStore(t, db, "Downtown"),
	}
	data.address = testutil.CreateAddress(t, db, data.customer.ID)
	return data
}

func orderRouter(userID uint, role string) *gin.Engine {
	router := authedRouter(userID, role)
	router.POST("/orders", CreateOrder)
	router.GET("/orders", ListOrders)
	router.GET("/orders/all", ListAllOrders)
	router.GET("/orders/:id", GetOrder)
	router.PATCH("/orders/:id/cancel", CancelOrder)
	router.PUT("/orders/:id/status", UpdateOrderStatus)
	return router
}

func pickupBody(storeID uint, items ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"items":           items,
		"delivery_method": "pickup",
		"payment_method":  "cash",
		"store_id":        storeID,
	}
}

func jasmineItem(quantity int, price interface{}) map[string]interface{} {
	item := map[string]interface{}{
		"product_id": 7,
		"name":       "Client Supplied Name",
		"size":       "M",
		"sugar":      "50%",
		"ice":        "less",
		"toppings":   []string{},
		"quantity":   quantity,
	}
	if price != nil {
		item["price"] = price
	}
	return item
}

func placeOrder(t *testing.T, data orderTestData, userID uint) uint {
	t.Helper()
	w := doJSON(orderRouter(userID, models.RoleCustomer), http.MethodPost, "/orders", pickupBody(data.store.ID, jasmineItem(1, nil)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return uint(parseResponse(t, w)["data"].(map[string]interface{})["order_id"].(float64))
}

func TestCreateOrder_PickupEndToEnd(t *testing.T) {
	data := setupOrderTest(t)

	w := doJSON(orderRouter(data.customer.ID, models.RoleCustomer), http.MethodPost, "/orders",
		pickupBody(data.store.ID, jasmineItem(2, 110)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	response := parseResponse(t, w)
	assert.True(t, response["success"].(bool))

	payload := response["data"].(map[string]interface{})
	assert.NotZero(t, payload["order_id"])
	assert.Regexp(t, `^ORD-\d{8}-001$`, payload["order_number"])

	order := payload["order"].(map[string]interface{})
	assert.Equal(t, "110", order["total_amount"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, float64(data.store.ID), order["store_id"])
	assert.Nil(t, order["address_id"])

	items := order["items"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "55", item["unit_price"])
	assert.Equal(t, "110", item["sub_total"])
	assert.Equal(t, "Jasmine Green Tea", item["product_name"], "catalog name wins over the client copy")

	var count int64
	data.db.Model(&models.OrderItem{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrder_Validation(t *testing.T) {
	data := setupOrderTest(t)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "empty cart",
			body:           pickupBody(data.store.ID),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "zero quantity",
			body:           pickupBody(data.store.ID, jasmineItem(0, nil)),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "quantity above the per-line limit",
			body:           pickupBody(data.store.ID, jasmineItem(100, nil)),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "unknown size",
			body: pickupBody(data.store.ID, map[string]interface{}{
				"product_id": 7, "size": "XL", "quantity": 1,
			}),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "unknown payment method",
			body: map[string]interface{}{
				"items":           []interface{}{jasmineItem(1, nil)},
				"delivery_method": "pickup",
				"payment_method":  "barter",
				"store_id":        data.store.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "pickup without store",
			body: map[string]interface{}{
				"items":           []interface{}{jasmineItem(1, nil)},
				"delivery_method": "pickup",
				"payment_method":  "cash",
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "delivery without address",
			body: map[string]interface{}{
				"items":           []interface{}{jasmineItem(1, nil)},
				"delivery_method": "delivery",
				"payment_method":  "credit",
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "unknown store",
			body:           pickupBody(9999, jasmineItem(1, nil)),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "STORE_NOT_FOUND",
		},
		{
			name:           "price mismatch",
			body:           pickupBody(data.store.ID, jasmineItem(2, 100)),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "PRICE_MISMATCH",
		},
		{
			name: "unknown product",
			body: pickupBody(data.store.ID, map[string]interface{}{
				"product_id": 404, "size": "M", "quantity": 1,
			}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "PRODUCT_UNAVAILABLE",
		},
		{
			name: "invalid sugar option",
			body: pickupBody(data.store.ID, map[string]interface{}{
				"product_id": 7, "size": "M", "sugar": "300%", "quantity": 1,
			}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "INVALID_OPTION",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(orderRouter(data.customer.ID, models.RoleCustomer), http.MethodPost, "/orders", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedCode, errorCode(t, w))
		})
	}

	var count int64
	data.db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateOrder_Delivery(t *testing.T) {
	data := setupOrderTest(t)

	body := map[string]interface{}{
		"items":           []interface{}{jasmineItem(1, "55.00")},
		"delivery_method": "delivery",
		"payment_method":  "mobile",
		"address_id":      data.address.ID,
		"store_id":        data.store.ID,
		"coupon_code":     "WELCOME10",
		"notes":           "ring twice",
	}
	w := doJSON(orderRouter(data.customer.ID, models.RoleCustomer), http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	order := parseResponse(t, w)["data"].(map[string]interface{})["order"].(map[string]interface{})
	assert.Equal(t, float64(data.address.ID), order["address_id"])
	assert.Nil(t, order["store_id"], "store is dropped for delivery orders")
	assert.Equal(t, "WELCOME10", order["coupon_code"])
	assert.Equal(t, "0", order["discount_amount"])
	assert.Equal(t, "ring twice", order["notes"])

	// Someone else's address is rejected
	w = doJSON(orderRouter(data.other.ID, models.RoleCustomer), http.MethodPost, "/orders", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ADDRESS_NOT_FOUND", errorCode(t, w))
}

func TestListOrders_OwnOnly(t *testing.T) {
	data := setupOrderTest(t)
	first := placeOrder(t, data, data.customer.ID)
	second := placeOrder(t, data, data.customer.ID)
	placeOrder(t, data, data.other.ID)

	w := doJSON(orderRouter(data.customer.ID, models.RoleCustomer), http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	orders := parseResponse(t, w)["data"].([]interface{})
	require.Len(t, orders, 2)
	assert.Equal(t, float64(second), orders[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(first), orders[1].(map[string]interface{})["id"])

	item := orders[0].(map[string]interface{})["items"].([]interface{})[0].(map[string]interface{})
	product := item["product"].(map[string]interface{})
	assert.Equal(t, float64(7), product["id"])
	assert.Equal(t, "Jasmine Green Tea", product["name"])
}

func TestListAllOrders(t *testing.T) {
	data := setupOrderTest(t)
	placeOrder(t, data, data.customer.ID)
	placeOrder(t, data, data.other.ID)

	w := doJSON(orderRouter(data.manager.ID, models.RoleManager), http.MethodGet, "/orders/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	orders := parseResponse(t, w)["data"].([]interface{})
	require.Len(t, orders, 2)
	assert.Equal(t, "bob", orders[0].(map[string]interface{})["customer_name"])
	assert.Equal(t, "alice", orders[1].(map[string]interface{})["customer_name"])

	w = doJSON(orderRouter(data.manager.ID, models.RoleManager), http.MethodGet, "/orders/all?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, parseResponse(t, w)["data"])

	w = doJSON(orderRouter(data.manager.ID, models.RoleManager), http.MethodGet, "/orders/all?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder(t *testing.T) {
	data := setupOrderTest(t)
	orderID := placeOrder(t, data, data.customer.ID)
	path := fmt.Sprintf("/orders/%d", orderID)

	tests := []struct {
		name           string
		userID         uint
		role           string
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{"owner", data.customer.ID, models.RoleCustomer, path, http.StatusOK, ""},
		{"manager", data.manager.ID, models.RoleManager, path, http.StatusOK, ""},
		{"other customer", data.other.ID, models.RoleCustomer, path, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"missing order", data.customer.ID, models.RoleCustomer, "/orders/9999", http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"bad id", data.customer.ID, models.RoleCustomer, "/orders/abc", http.StatusBadRequest, "INVALID_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(orderRouter(tt.userID, tt.role), http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
				return
			}
			order := parseResponse(t, w)["data"].(map[string]interface{})
			customer := order["customer"].(map[string]interface{})
			assert.Equal(t, "alice", customer["name"])
			assert.Equal(t, "alice@example.com", customer["email"])
			assert.Len(t, order["items"], 1)
		})
	}
}

func TestCancelOrder(t *testing.T) {
	data := setupOrderTest(t)
	orderID := placeOrder(t, data, data.customer.ID)
	path := fmt.Sprintf("/orders/%d/cancel", orderID)

	w := doJSON(orderRouter(data.other.ID, models.RoleCustomer), http.MethodPatch, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(orderRouter(data.customer.ID, models.RoleCustomer), http.MethodPatch, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", parseResponse(t, w)["data"].(map[string]interface{})["status"])

	w = doJSON(orderRouter(data.customer.ID, models.RoleCustomer), http.MethodPatch, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ORDER_NOT_CANCELLABLE", errorCode(t, w))
}

func TestUpdateOrderStatus(t *testing.T) {
	data := setupOrderTest(t)
	orderID := placeOrder(t, data, data.customer.ID)
	path := fmt.Sprintf("/orders/%d/status", orderID)
	router := orderRouter(data.manager.ID, models.RoleManager)

	w := doJSON(router, http.MethodPut, path, map[string]interface{}{"status": "processing", "note": "brewing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "processing", parseResponse(t, w)["data"].(map[string]interface{})["status"])

	w = doJSON(router, http.MethodPut, path, map[string]interface{}{"status": "pending"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", errorCode(t, w))

	// Once brewing starts the order can only be completed
	w = doJSON(router, http.MethodPut, path, map[string]interface{}{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", errorCode(t, w))

	w = doJSON(router, http.MethodPut, path, map[string]interface{}{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))

	w = doJSON(router, http.MethodPut, path, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/orders/9999/status", map[string]interface{}{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPut, path, map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	// The change is visible to the owner
	w = doJSON(orderRouter(data.customer.ID, models.RoleCustomer), http.MethodGet, fmt.Sprintf("/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", parseResponse(t, w)["data"].(map[string]interface{})["status"])
}

func TestOrderHandlers_WithoutAuth(t *testing.T) {
	setupTestDB(t)

	router := gin.New()
	router.GET("/orders", ListOrders)

	w := doJSON(router, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}
