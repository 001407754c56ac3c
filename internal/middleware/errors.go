package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/flippulse/internal/domain/dto"
	"github.com/guttosm/flippulse/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a 500 JSON response
// when the handler did not write one itself.
//
// Usage:
//
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	last := c.Errors.Last()
	logger.With("http").Error().
		Err(last.Err).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", last.Err))
}

// AbortWithError stops the handler chain and writes a dto.ErrorResponse
// with the given status.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
