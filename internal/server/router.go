package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/planforge/planforge-backend/internal/handlers"
)

type RouterConfig struct {
	RescheduleHandler *handlers.RescheduleHandler
	AllowOrigins      []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/reschedule/preview", cfg.RescheduleHandler.Preview)
		api.POST("/reschedule/commit", cfg.RescheduleHandler.Commit)
		api.POST("/reschedule/:logID/rollback", cfg.RescheduleHandler.Rollback)
	}

	return router
}
