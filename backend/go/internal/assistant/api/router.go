package api

import "github.com/gin-gonic/gin"

// RegisterRoutes registers all the routes for the chat service.
func RegisterRoutes(router *gin.Engine, api *API) {
	router.GET("/healthz", api.HealthHandler)

	// All routes will be under /api/v1
	v1 := router.Group("/api/v1")
	v1.POST("/chat", api.ChatHandler)
	v1.POST("/knowledge/seed", api.SeedHandler)

	analytics := v1.Group("/analytics")
	{
		analytics.GET("/daily", api.DailyAnalyticsHandler)
		analytics.GET("/sessions/:id", api.SessionHandler)
	}
}

// NewRouter returns a bare engine with the routes registered. Recovery and access
// logging are applied by the surrounding HTTP server.
func NewRouter(api *API) *gin.Engine {
	router := gin.New()
	RegisterRoutes(router, api)
	return router
}
