package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/middleware"
	"github.com/teatime/teashop-api/services"
	"github.com/teatime/teashop-api/utils"
)

// currentUserID returns the caller's id or writes a 401 and reports false
func currentUserID(c *gin.Context) (uint, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return 0, false
	}
	return userID, true
}

// parseIDParam reads a positive numeric path parameter or writes a 400 and reports false
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+label+" ID")
		return 0, false
	}
	return uint(id), true
}

// respondDatabaseError logs err and writes a 500. Outside production the
// underlying error is attached as details.cause for diagnostics.
func respondDatabaseError(c *gin.Context, err error, message string) {
	utils.Logger.WithError(err).WithField("path", c.FullPath()).Error(message)

	if cfg := config.GetConfig(); cfg != nil && cfg.IsProduction() {
		utils.RespondError(c, http.StatusInternalServerError, "DATABASE_ERROR", message)
		return
	}
	utils.RespondErrorWithDetails(c, http.StatusInternalServerError, "DATABASE_ERROR", message, gin.H{"cause": err.Error()})
}

// imageURL resolves a stored image key through the configured image service.
// A resolution failure is logged and yields no URL rather than failing the request.
func imageURL(key *string) *string {
	if key == nil || *key == "" {
		return nil
	}
	imageService := services.GetImageService()
	if imageService == nil {
		return nil
	}
	url, err := imageService.GetImageURL(*key)
	if err != nil {
		utils.Logger.WithError(err).WithField("image_key", *key).Warn("Failed to resolve image URL")
		return nil
	}
	return &url
}
