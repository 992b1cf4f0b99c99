package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/utils"
	"gorm.io/gorm"
)

// StoreRequest represents the request body for creating or replacing a store
type StoreRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	Address      string `json:"address" binding:"required,max=200"`
	Phone        string `json:"phone" binding:"max=30"`
	OpeningHours string `json:"opening_hours" binding:"max=100"`
	Active       *bool  `json:"active"`
}

// ListStores handles GET /api/v1/stores - lists stores open for pickup
func ListStores(c *gin.Context) {
	var stores []models.Store
	if err := config.GetDB().Where("active = ?", true).Order("id ASC").Find(&stores).Error; err != nil {
		respondDatabaseError(c, err, "Failed to retrieve stores")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, stores)
}

// GetStore handles GET /api/v1/stores/:id
func GetStore(c *gin.Context) {
	store, ok := loadStore(c)
	if !ok {
		return
	}

	utils.RespondSuccess(c, http.StatusOK, store)
}

// CreateStore handles POST /api/v1/stores (managers and admins)
func CreateStore(c *gin.Context) {
	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	store := models.Store{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		OpeningHours: req.OpeningHours,
		Active:       req.Active == nil || *req.Active,
	}

	db := config.GetDB()
	if err := db.Create(&store).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create store")
		return
	}
	if !store.Active {
		if err := db.Model(&store).Update("active", false).Error; err != nil {
			respondDatabaseError(c, err, "Failed to create store")
			return
		}
	}

	utils.RespondSuccess(c, http.StatusCreated, store)
}

// UpdateStore handles PUT /api/v1/stores/:id (managers and admins)
func UpdateStore(c *gin.Context) {
	store, ok := loadStore(c)
	if !ok {
		return
	}

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	store.Name = req.Name
	store.Address = req.Address
	store.Phone = req.Phone
	store.OpeningHours = req.OpeningHours
	if req.Active != nil {
		store.Active = *req.Active
	}

	err := config.GetDB().Model(&store).
		Select("name", "address", "phone", "opening_hours", "active").
		Updates(&store).Error
	if err != nil {
		respondDatabaseError(c, err, "Failed to update store")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, store)
}

// DeleteStore handles DELETE /api/v1/stores/:id (managers and admins)
func DeleteStore(c *gin.Context) {
	store, ok := loadStore(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(&store).Error; err != nil {
		respondDatabaseError(c, err, "Failed to delete store")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "Store deleted"})
}

func loadStore(c *gin.Context) (models.Store, bool) {
	var store models.Store

	storeID, ok := parseIDParam(c, "id", "store")
	if !ok {
		return store, false
	}

	err := config.GetDB().First(&store, storeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, "STORE_NOT_FOUND", "Store not found")
		return store, false
	}
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve store")
		return store, false
	}
	return store, true
}
