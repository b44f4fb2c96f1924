package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/colenielsonauto/agent-arc/api/handlers"
	"github.com/colenielsonauto/agent-arc/api/middleware"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/repository"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
	"github.com/colenielsonauto/agent-arc/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, log logger.Logger, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// Health check endpoint (no custom context needed)
	r.GET("/health", handlers.HealthCheck)

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-AGENT-ARC-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.CustomContextMiddleware("agent-arc")) // Add custom context for all /v1/* endpoints
	api.Use(middleware.TracingMiddleware())                  // Add tracing for all /v1/* endpoints
	{
		api.POST("/identify", handlers.IdentifyClient(s.RegistryService))
		api.POST("/route", handlers.RouteMessage(s.RegistryService, s.RoutingService, s.EventsPublisher, log))
		api.POST("/aliases", handlers.AddDomainAlias(s.RegistryService))

		clients := api.Group("/clients")
		{
			clients.GET("", handlers.ListClients(s.RegistryService))
			clients.GET("/conflicts", handlers.ListDomainConflicts(s.RegistryService))
			clients.POST("/refresh", handlers.RefreshAllClients(s.RegistryService))
			clients.GET("/:id/summary", handlers.GetClientSummary(s.RegistryService))
			clients.POST("/:id/refresh", handlers.RefreshClient(s.RegistryService))
		}
	}
}
