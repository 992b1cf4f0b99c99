package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondSuccess writes the standard success envelope
func RespondSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// RespondError writes the standard error envelope
func RespondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// RespondValidationError writes a VALIDATION_ERROR envelope carrying the binding details
func RespondValidationError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// RespondErrorWithDetails writes an error envelope with a details object
func RespondErrorWithDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
