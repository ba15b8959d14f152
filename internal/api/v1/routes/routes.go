package routes

import (
	"github.com/gin-gonic/gin"

	"vocal-assistant/internal/api/v1/handlers"
	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/repository"
)

// ServiceContainer holds what the v1 handlers need.
type ServiceContainer struct {
	Runner  handlers.Runner
	History repository.RunDAO
	Catalog *document.Catalog
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	runHandler := handlers.NewRunHandler(container.Runner, container.History)
	runs := router.Group("/runs")
	{
		runs.POST("", runHandler.Create)
		runs.GET("", runHandler.List)
	}

	documentHandler := handlers.NewDocumentHandler(container.Catalog)
	documents := router.Group("/documents")
	{
		documents.GET("", documentHandler.List)
		documents.GET("/:type", documentHandler.Get)
	}
}
