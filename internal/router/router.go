package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutritheous/backend/internal/api"
	"github.com/nutritheous/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	mealHandler *api.MealHandler,
	statsHandler *api.StatisticsHandler,
	analyzerHandler *api.AnalyzerHandler,
	validator middleware.TokenValidator,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		profile := protected.Group("/profile")
		{
			profile.GET("", authHandler.GetProfile)
			profile.PUT("", authHandler.UpdateProfile)
		}

		meals := protected.Group("/meals")
		{
			meals.POST("", mealHandler.Upload)
			meals.GET("", mealHandler.List)
			meals.GET("/:id", mealHandler.Get)
			meals.PUT("/:id", mealHandler.Update)
			meals.DELETE("/:id", mealHandler.Delete)
		}

		stats := protected.Group("/statistics")
		{
			stats.GET("/daily", statsHandler.Daily)
			stats.GET("/summary", statsHandler.Summary)
			stats.GET("/periodic", statsHandler.Periodic)
		}

		analyzer := protected.Group("/analyzer")
		{
			analyzer.POST("/analyze", analyzerHandler.Analyze)
		}
	}

	return router
}
