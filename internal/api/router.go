package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/flippulse/internal/middleware"
)

const (
	requestTimeout  = 10 * time.Second
	rateLimit       = 120
	rateLimitWindow = time.Minute
)

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds request timeout handling (10 seconds).
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(rateLimit, rateLimitWindow),
	)

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stats", handler.GetStats)
		v1.GET("/recommendations", handler.GetRecommendations)
		v1.GET("/items/:name", handler.GetItem)

		flips := v1.Group("/flips")
		flips.POST("", handler.CreateFlip)
		flips.GET("/active", handler.ListActiveFlips)
		flips.POST("/active/:id/sell", handler.SellFlip)
		flips.POST("/active/:id/cancel", handler.CancelFlip)
		flips.PATCH("/active/:id", handler.UpdateFlip)
	}

	return router
}
