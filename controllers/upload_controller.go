package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/services"
	"github.com/teatime/teashop-api/utils"
)

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves locally stored images
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Validate filename is not empty
	if filename == "" {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	contentType, ok := utils.ImageContentType(filename)
	if !ok {
		utils.RespondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only PNG, JPEG and WebP files are supported")
		return
	}

	filePath := filepath.Join(utils.UploadDir, filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		utils.RespondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}

// uploadImage stores the multipart "image" field under prefix and returns its key,
// or writes an error response and reports false.
func uploadImage(c *gin.Context, prefix string) (string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "MISSING_IMAGE", "An image file is required in the 'image' field")
		return "", false
	}

	imageService := services.GetImageService()
	if imageService == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, "IMAGE_STORAGE_UNAVAILABLE", "Image storage is not configured")
		return "", false
	}

	key, err := imageService.UploadImage(fileHeader, prefix)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			utils.RespondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return "", false
		}
		utils.Logger.WithError(err).Error("Failed to upload image")
		utils.RespondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload image")
		return "", false
	}

	return key, true
}

// deletePreviousImage removes a replaced image. Failures only leave an orphan, so they are logged.
func deletePreviousImage(key *string) {
	if key == nil || *key == "" {
		return
	}
	if imageService := services.GetImageService(); imageService != nil {
		if err := imageService.DeleteImage(*key); err != nil {
			utils.Logger.WithError(err).WithField("image_key", *key).Warn("Failed to delete replaced image")
		}
	}
}
