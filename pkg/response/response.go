package response

import (
	"net/http"

	apperrors "github.com/dropguard/dashboard/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Success sends a successful JSON response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error sends an error JSON response
func Error(c *gin.Context, err error) {
	if appErr, ok := apperrors.As(err); ok {
		Fail(c, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	// Default internal server error
	Fail(c, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "Internal server error")
}

// Fail sends an error envelope with an explicit status and code
func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ValidationError sends a validation error response
func ValidationError(c *gin.Context, message string, details interface{}) {
	body := gin.H{
		"code":    apperrors.ErrCodeValidationFailed,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   body,
	})
}
