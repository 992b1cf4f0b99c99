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

// AddressRequest represents the request body for creating or replacing an address
type AddressRequest struct {
	Recipient  string `json:"recipient" binding:"required,max=100"`
	Phone      string `json:"phone" binding:"required,max=30"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	IsDefault  bool   `json:"is_default"`
}

// ListAddresses handles GET /api/v1/addresses - lists the caller's address book
func ListAddresses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var addresses []models.Address
	err := config.GetDB().
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&addresses).Error
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve addresses")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, addresses)
}

// CreateAddress handles POST /api/v1/addresses - adds an address to the caller's book
// The first address, or one flagged is_default, becomes the default.
func CreateAddress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	address := models.Address{
		UserID:     userID,
		Recipient:  req.Recipient,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		PostalCode: req.PostalCode,
	}

	err := config.GetDB().Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return err
		}
		if err := tx.Omit("User").Create(&address).Error; err != nil {
			return err
		}
		if req.IsDefault || existing == 0 {
			return makeDefaultAddress(tx, &address)
		}
		return nil
	})
	if err != nil {
		respondDatabaseError(c, err, "Failed to create address")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, address)
}

// UpdateAddress handles PUT /api/v1/addresses/:id - replaces one of the caller's addresses
func UpdateAddress(c *gin.Context) {
	address, ok := loadOwnAddress(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	err := config.GetDB().Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&address).Updates(map[string]interface{}{
			"recipient":   req.Recipient,
			"phone":       req.Phone,
			"line1":       req.Line1,
			"line2":       req.Line2,
			"city":        req.City,
			"postal_code": req.PostalCode,
		}).Error
		if err != nil {
			return err
		}
		if req.IsDefault && !address.IsDefault {
			return makeDefaultAddress(tx, &address)
		}
		return nil
	})
	if err != nil {
		respondDatabaseError(c, err, "Failed to update address")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, address)
}

// DeleteAddress handles DELETE /api/v1/addresses/:id - removes one of the caller's addresses
// Past orders keep resolving it because the delete is soft.
func DeleteAddress(c *gin.Context) {
	address, ok := loadOwnAddress(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(&address).Error; err != nil {
		respondDatabaseError(c, err, "Failed to delete address")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "Address deleted"})
}

// SetDefaultAddress handles PATCH /api/v1/addresses/:id/default
func SetDefaultAddress(c *gin.Context) {
	address, ok := loadOwnAddress(c)
	if !ok {
		return
	}

	err := config.GetDB().Transaction(func(tx *gorm.DB) error {
		return makeDefaultAddress(tx, &address)
	})
	if err != nil {
		respondDatabaseError(c, err, "Failed to set default address")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, address)
}

// makeDefaultAddress clears the owner's other defaults and flags address
func makeDefaultAddress(tx *gorm.DB, address *models.Address) error {
	err := tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ?", address.UserID, address.ID).
		Update("is_default", false).Error
	if err != nil {
		return err
	}
	return tx.Model(address).Update("is_default", true).Error
}

// loadOwnAddress fetches the :id address owned by the caller.
// Someone else's address is reported as not found.
func loadOwnAddress(c *gin.Context) (models.Address, bool) {
	var address models.Address

	userID, ok := currentUserID(c)
	if !ok {
		return address, false
	}
	addressID, ok := parseIDParam(c, "id", "address")
	if !ok {
		return address, false
	}

	err := config.GetDB().Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, "ADDRESS_NOT_FOUND", "Address not found")
		return address, false
	}
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve address")
		return address, false
	}
	return address, true
}
