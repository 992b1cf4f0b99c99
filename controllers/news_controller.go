package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/utils"
	"gorm.io/gorm"
)

// NewsRequest represents the request body for creating or replacing a news post
type NewsRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	Content   string `json:"content" binding:"required"`
	Published bool   `json:"published"`
}

// ListNews handles GET /api/v1/news - lists published posts, newest first
func ListNews(c *gin.Context) {
	var posts []models.News
	err := config.GetDB().
		Where("published = ?", true).
		Order("published_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve news")
		return
	}

	for i := range posts {
		posts[i].ImageURL = imageURL(posts[i].ImageKey)
	}
	utils.RespondSuccess(c, http.StatusOK, posts)
}

// ListAllNews handles GET /api/v1/news/all - lists drafts and published posts (managers and admins)
func ListAllNews(c *gin.Context) {
	var posts []models.News
	if err := config.GetDB().Order("id DESC").Find(&posts).Error; err != nil {
		respondDatabaseError(c, err, "Failed to retrieve news")
		return
	}

	for i := range posts {
		posts[i].ImageURL = imageURL(posts[i].ImageKey)
	}
	utils.RespondSuccess(c, http.StatusOK, posts)
}

// GetNews handles GET /api/v1/news/:id - drafts are not visible here
func GetNews(c *gin.Context) {
	post, ok := loadNews(c)
	if !ok {
		return
	}

	if !post.Published {
		utils.RespondError(c, http.StatusNotFound, "NEWS_NOT_FOUND", "News not found")
		return
	}

	post.ImageURL = imageURL(post.ImageKey)
	utils.RespondSuccess(c, http.StatusOK, post)
}

// CreateNews handles POST /api/v1/news (managers and admins)
func CreateNews(c *gin.Context) {
	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	post := models.News{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}
	if req.Published {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := config.GetDB().Create(&post).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create news")
		return
	}

	utils.RespondSuccess(c, http.StatusCreated, post)
}

// UpdateNews handles PUT /api/v1/news/:id (managers and admins)
// Publishing stamps published_at the first time only.
func UpdateNews(c *gin.Context) {
	post, ok := loadNews(c)
	if !ok {
		return
	}

	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, http.StatusBadRequest, err)
		return
	}

	post.Title = req.Title
	post.Content = req.Content
	post.Published = req.Published
	if req.Published && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	err := config.GetDB().Model(&post).
		Select("title", "content", "published", "published_at").
		Updates(&post).Error
	if err != nil {
		respondDatabaseError(c, err, "Failed to update news")
		return
	}

	post.ImageURL = imageURL(post.ImageKey)
	utils.RespondSuccess(c, http.StatusOK, post)
}

// DeleteNews handles DELETE /api/v1/news/:id (managers and admins)
func DeleteNews(c *gin.Context) {
	post, ok := loadNews(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(&post).Error; err != nil {
		respondDatabaseError(c, err, "Failed to delete news")
		return
	}
	deletePreviousImage(post.ImageKey)

	utils.RespondSuccess(c, http.StatusOK, gin.H{"message": "News deleted"})
}

// UploadNewsImage handles POST /api/v1/news/:id/image (managers and admins)
func UploadNewsImage(c *gin.Context) {
	post, ok := loadNews(c)
	if !ok {
		return
	}

	key, ok := uploadImage(c, "news")
	if !ok {
		return
	}

	previous := post.ImageKey
	if err := config.GetDB().Model(&post).Update("image_key", key).Error; err != nil {
		respondDatabaseError(c, err, "Failed to save news image")
		return
	}
	deletePreviousImage(previous)

	post.ImageKey = &key
	post.ImageURL = imageURL(post.ImageKey)
	utils.RespondSuccess(c, http.StatusOK, post)
}

func loadNews(c *gin.Context) (models.News, bool) {
	var post models.News

	newsID, ok := parseIDParam(c, "id", "news")
	if !ok {
		return post, false
	}

	err := config.GetDB().First(&post, newsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, "NEWS_NOT_FOUND", "News not found")
		return post, false
	}
	if err != nil {
		respondDatabaseError(c, err, "Failed to retrieve news")
		return post, false
	}
	return post, true
}
