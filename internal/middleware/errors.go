package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/huangang/folio/backend/pkg/response"
)

// ErrorHandler turns the last error attached with c.Error into the response.
// Recognized *response.AppError values keep their status and message; anything
// else is logged and answered with a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if response.StatusOf(err) == http.StatusInternalServerError {
			logger.Ctx(c).Error().
				Err(err).
				Str("method", c.Request.Method).
				Str("route", c.FullPath()).
				Msg("request failed")
		}
		response.Error(c, err)
	}
}
