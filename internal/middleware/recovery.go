package middleware

import (
	"net/http"

	apperrors "github.com/dropguard/dashboard/pkg/errors"
	"github.com/dropguard/dashboard/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery creates a panic recovery middleware
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("request_id", c.GetString("request_id")),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				response.Fail(c, http.StatusInternalServerError, apperrors.ErrCodeInternalError, "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
