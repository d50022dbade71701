// internal/api/routes/routes.go
package routes

import (
	"github.com/abbiehooper/PolicyChatbot/internal/api/handlers"
	"github.com/abbiehooper/PolicyChatbot/internal/api/middleware"
	"github.com/abbiehooper/PolicyChatbot/internal/config"
	"github.com/abbiehooper/PolicyChatbot/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(
	cfg *config.Config,
	logger *zap.Logger,
	limiter *ratelimit.Limiter,
	chatHandler *handlers.ChatHandler,
	policyHandler *handlers.PolicyHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.LoggingMiddleware(logger))

	// Health check
	r.GET("/health", healthHandler.Check)

	// API routes
	api := r.Group("/api/v1")
	{
		// Chat endpoints; only the generation call path is rate limited
		chat := api.Group("/chat")
		{
			chat.POST("", middleware.RateLimitMiddleware(limiter, logger), chatHandler.Chat)
			chat.POST("/clear", chatHandler.ClearSession)
		}

		// Policy catalog endpoints
		policies := api.Group("/policies")
		{
			policies.GET("/insurance-types", policyHandler.GetInsuranceTypes)
			policies.GET("/insurers", policyHandler.GetInsurers)
			policies.GET("/products", policyHandler.GetProducts)
			policies.GET("/pdf/:product_id", policyHandler.GetPDF)
		}

		// Provider usage counters (monitoring only)
		api.GET("/usage", chatHandler.GetUsage)
	}

	return r
}
