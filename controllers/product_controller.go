package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/services"
	"github.com/teatime/teashop-api/utils"
	"gorm.io/gorm"
)

// ProductRequest represents the request body for creating or replacing a product
type ProductRequest struct {
	Name         string          `json:"name" binding:"required,max=100"`
	Category     string          `json:"category" binding:"max=50"`
	Description  string          `json:"description" binding:"max=2000"`
	PriceM       decimal.Decimal `json:"price_m"`
	PriceL       decimal.Decimal `json:"price_l"`
	SugarOptions []string        `json:"sugar_options"`
	IceOptions   []string        `json:"ice_options"`
	Available    *bool           `json:"available"`
}

// ToppingRequest represents the request body for creating or replacing a topping
type ToppingRequest struct {
	Name      string          `json:"name" binding:"required,max=50"`
	Price     decimal.Decimal `json:"price"`
	Available *bool           `json:"available"`
}

// ListProducts handles GET /api/v1/products - lists the menu, optionally by ?category=
func ListProducts(c *gin.Context) {
	query := config.GetDB().Order("category ASC, id ASC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		respondDatabaseError(c, err, "Failed to retrieve products")
		return
	}

	for i := range products {
		products[i].ImageURL = imageURL(products[i].ImageKey)
	}
	utils.RespondSuccess(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	product.ImageURL = imageURL(product.ImageKey)
	utils.RespondSuccess(c, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products - adds a drink to the menu (managers and admins)
func CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}
	if !validProductPrices(c, req) {
		return
	}

	product := models.Product{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		PriceM:       req.PriceM,
		PriceL:       req.PriceL,
		SugarOptions: nonNilStrings(req.SugarOptions),
		IceOptions:   nonNilStrings(req.IceOptions),
		Available:    req.Available == nil || *req.Available,
	}

	db := config.GetDB()
	if err := db.Create(&product).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create product")
		return
	}
	// default:true would otherwise swallow an explicit false on insert
	if !product.Available {
		if err := db.Model(&product).Update("available", false).Error; err != nil {
			respondDatabaseError(c, err, "Failed to create product")
			return
		}
	}

	utils.RespondSuccess(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id (managers and admins)
func UpdateProduct(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}
	if !validProductPrices(c, req) {
		return
	}

	product.Name = req.Name
	product.Category = req.Category
	product.Description = req.Description
	product.PriceM = req.PriceM
	product.PriceL = req.PriceL
	product.SugarOptions = nonNilStrings(req.SugarOptions)
	product.IceOptions = nonNilStrings(req.IceOptions)
	if req.Available != nil {
		product.Available = *req.Available
	}

	// Select writes zero values too, so a PUT can clear fields
	err := config.GetDB().Model(&product).
		Select("name", "category", "description", "price_m", "price_l", "sugar_options", "ice_options", "available").
		Updates(&product).Error
	if err != nil {
		respondDatabaseError(c, err, "Failed to update product")
		return
	}

	product.ImageURL = imageURL(product.ImageKey)
	utils.RespondSuccess(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (managers and admins)
// The delete is soft so past order items keep their product reference.
func DeleteProduct(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(&product).Error; err != nil {
		respondDatabaseError(c, err, "Failed to delete product")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadProductImage handles POST /api/v1/products/:id/image (managers and admins)
func UploadProductImage(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	key, ok := uploadImage(c, "products")
	if !ok {
		return
	}

	previous := product.ImageKey
	if err := config.GetDB().Model(&product).Update("image_key", key).Error; err != nil {
		respondDatabaseError(c, err, "Failed to save product image")
		return
	}
	deletePreviousImage(previous)

	product.ImageKey = &key
	product.ImageURL = imageURL(product.ImageKey)
	utils.RespondSuccess(c, http.StatusOK, product)
}

// ListToppings handles GET /api/v1/toppings
func ListToppings(c *gin.Context) {
	var toppings []models.Topping
	if err := config.GetDB().Order("name ASC").Find(&toppings).Error; err != nil {
		respondDatabaseError(c, err, "Failed to retrieve toppings")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, toppings)
}

// CreateTopping handles POST /api/v1/toppings (managers and admins)
func CreateTopping(c *gin.Context) {
	var req ToppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price must not be negative")
		return
	}

	topping := models.Topping{
		Name:      req.Name,
		Price:     req.Price,
		Available: req.Available == nil || *req.Available,
	}

	db := config.GetDB()
	if err := db.Create(&topping).Error; err != nil {
		if services.IsUniqueViolation(err) {
			utils.RespondError(c, http.StatusConflict, "TOPPING_EXISTS", "A topping with this name already exists")
			return
		}
		respondDatabaseError(c, err, "Failed to create topping")
		return
	}
	if !topping.Available {
		if err := db.Model(&topping).Update("available", false).Error; err != nil {
			respondDatabaseError(c, err, "Failed to create topping")
			return
		}
	}

	utils.RespondSuccess(c, http.StatusCreated, topping)
}

// UpdateTopping handles PUT /api/v1/toppings/:id (managers and admins)
func UpdateTopping(c *gin.Context) {
	topping, ok := loadTopping(c)
	if !ok {
		return
	}

	var req ToppingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}
	if req.Price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price must not be negative")
		return
	}

	topping.Name = req.Name
	topping.Price = req.Price
	if req.Available != nil {
		topping.Available = *req.Available
	}

	if err := config.GetDB().Model(&topping).Select("name", "price", "available").Updates(&topping).Error; err != nil {
		if services.IsUniqueViolation(err) {
			utils.RespondError(c, http.StatusConflict, "TOPPING_EXISTS", "A topping with this name already exists")
			return
		}
		respondDatabaseError(c, err, "Failed to update topping")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, topping)
}

// DeleteTopping handles DELETE /api/v1/toppings/:id (managers and admins)
// Order items hold topping names, not ids, so history is unaffected.
func DeleteTopping(c *gin.Context) {
	topping, ok := loadTopping(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(&topping).Error; err != nil {
		respondDatabaseError(c, err, "Failed to delete topping")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "Topping deleted"})
}

func validProductPrices(c *gin.Context, req ProductRequest) bool {
	if !req.PriceM.IsPositive() {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price_m must be greater than zero")
		return false
	}
	if req.PriceL.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "price_l must not be negative")
		return false
	}
	return true
}

func loadProduct(c *gin.Context) (models.Product, bool) {
	var product models.Product

	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return product, false
	}

	err := config.GetDB().First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
		return product, false
	}
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve product")
		return product, false
	}
	return product, true
}

func loadTopping(c *gin.Context) (models.Topping, bool) {
	var topping models.Topping

	toppingID, ok := parseIDParam(c, "id", "topping")
	if !ok {
		return topping, false
	}

	err := config.GetDB().First(&topping, toppingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, "TOPPING_NOT_FOUND", "Topping not found")
		return topping, false
	}
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve topping")
		return topping, false
	}
	return topping, true
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
