package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRequest represents the request body for writing a setting
type SettingRequest struct {
	Value       string `json:"value"`
	Description string `json:"description" binding:"max=200"`
}

// ListSettings handles GET /api/v1/settings
func ListSettings(c *gin.Context) {
	var settings []models.Setting
	if err := config.GetDB().Order("key ASC").Find(&settings).Error; err != nil {
		respondDatabaseError(c, err, "Failed to retrieve settings")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, settings)
}

// PutSetting handles PUT /api/v1/settings/:key - creates or replaces a setting (admins only)
func PutSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" || len(key) > 100 {
		utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid setting key")
		return
	}

	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	setting := models.Setting{Key: key, Value: req.Value, Description: req.Description}
	db := config.GetDB()
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		respondDatabaseError(c, err, "Failed to save setting")
		return
	}

	if err := db.Where("key = ?", key).First(&setting).Error; err != nil {
		respondDatabaseError(c, err, "Failed to retrieve setting")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, setting)
}

// DeleteSetting handles DELETE /api/v1/settings/:key (admins only)
func DeleteSetting(c *gin.Context) {
	result := config.GetDB().Where("key = ?", c.Param("key")).Delete(&models.Setting{})
	if result.Error != nil {
		respondDatabaseError(c, result.Error, "Failed to delete setting")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, "SETTING_NOT_FOUND", "Setting not found")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "Setting deleted"})
}

// GetSetting handles GET /api/v1/settings/:key
func GetSetting(c *gin.Context) {
	var setting models.Setting
	err := config.GetDB().Where("key = ?", c.Param("key")).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, "SETTING_NOT_FOUND", "Setting not found")
		return
	}
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve setting")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, setting)
}
