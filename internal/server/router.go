package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/xuanji/bazi-backend/internal/handlers"
)

type RouterConfig struct {
	DayunHandler *handlers.DayunHandler
	DezhuHandler *handlers.DezhuHandler
	KexieHandler *handlers.KexieHandler
	AllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/charts/:id/dayun", cfg.DayunHandler.Compute)
		api.GET("/charts/:id/dayun", cfg.DayunHandler.Get)
		api.POST("/charts/:id/dezhu", cfg.DezhuHandler.Compute)
		api.GET("/charts/:id/dezhu", cfg.DezhuHandler.Get)
		api.POST("/charts/:id/kexie", cfg.KexieHandler.Compute)
		api.GET("/charts/:id/kexie", cfg.KexieHandler.Get)
	}

	return router
}
