package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/services"
	"github.com/teatime/teashop-api/utils"
	"gorm.io/gorm"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=30"`
}

// UpdateRoleRequest represents the request body for changing a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer manager admin"`
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, ok := loadUser(c, userID)
	if !ok {
		return
	}

	utils.RespondSuccess(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates current user's profile
func UpdateMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	user, ok := loadUser(c, userID)
	if !ok {
		return
	}

	// Update fields if provided
	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}

	// If no fields to update, return current user
	if len(updates) == 0 {
		utils.RespondSuccess(c, http.StatusOK, user)
		return
	}

	db := config.GetDB()
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		if services.IsUniqueViolation(err) {
			utils.RespondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		respondDatabaseError(c, err, "Failed to update user profile")
		return
	}

	// Fetch updated user to return
	if user, ok = loadUser(c, userID); !ok {
		return
	}
	utils.RespondSuccess(c, http.StatusOK, user)
}

// ListUsers handles GET /api/v1/users - lists every account (admins only)
func ListUsers(c *gin.Context) {
	query := config.GetDB().Order("id ASC")
	if role := c.Query("role"); role != "" {
		if !models.IsValidRole(role) {
			utils.RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown role")
			return
		}
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		respondDatabaseError(c, err, "Failed to retrieve users")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/:id - gets any user (admins only)
func GetUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	user, ok := loadUser(c, userID)
	if !ok {
		return
	}

	utils.RespondSuccess(c, http.StatusOK, user)
}

// UpdateUserRole handles PUT /api/v1/users/:id/role - changes a user's role (admins only)
func UpdateUserRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	user, ok := loadUser(c, userID)
	if !ok {
		return
	}

	if err := config.GetDB().Model(&user).Update("role", req.Role).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update user role")
		return
	}

	utils.Logger.WithField("user_id", user.ID).WithField("role", req.Role).Info("User role changed")
	utils.RespondSuccess(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/:id - removes an account (admins only, not self)
func DeleteUser(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	if userID == callerID {
		utils.RespondError(c, http.StatusBadRequest, "CANNOT_DELETE_SELF", "You cannot delete your own account")
		return
	}

	result := config.GetDB().Delete(&models.User{}, userID)
	if result.Error != nil {
		respondDatabaseError(c, result.Error, "Failed to delete user")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "User deleted"})
}

// loadUser fetches a user by id or writes a 404/500 and reports false
func loadUser(c *gin.Context, userID uint) (models.User, bool) {
	var user models.User
	err := config.GetDB().First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return user, false
	}
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve user")
		return user, false
	}
	return user, true
}
