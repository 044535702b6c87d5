// Package router wires handlers and middleware into the gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/snapdish/snapdish-api/internal/api"
	"github.com/snapdish/snapdish-api/internal/middleware"
)

// SetupRouter configures the application routes. ingestLimit throttles the
// endpoints that fan out to the model provider.
func SetupRouter(
	recipeHandler *api.RecipeHandler,
	healthHandler *api.HealthHandler,
	ingestLimit gin.HandlerFunc,
) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())

	healthHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	recipeHandler.RegisterRoutes(v1, ingestLimit)

	return router
}
