package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/colenielsonauto/agent-arc/interfaces"
	er "github.com/colenielsonauto/agent-arc/internal/errors"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
)

// ListClients returns all registered client ids
func ListClients(registry interfaces.ClientRegistryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "ListClients", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		clients, err := registry.ListClients(ctx)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"clients": clients, "count": len(clients)})
	}
}

// GetClientSummary returns a derived overview of one client's configuration
func GetClientSummary(registry interfaces.ClientRegistryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "GetClientSummary", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		clientID := c.Param("id")
		tracing.TagClient(span, clientID)

		summary, err := registry.GetClientSummary(ctx, clientID)
		if err != nil {
			tracing.TraceErr(span, err)
			if errors.Is(err, er.ErrClientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}

// RefreshClient forces one client's configuration back through disk
func RefreshClient(registry interfaces.ClientRegistryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RefreshClient", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		clientID := c.Param("id")
		tracing.TagClient(span, clientID)

		if err := registry.RefreshClient(ctx, clientID); err != nil {
			tracing.TraceErr(span, err)
			if errors.Is(err, er.ErrClientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "refreshed", "id": clientID})
	}
}

// RefreshAllClients rebuilds the domain mapping from disk
func RefreshAllClients(registry interfaces.ClientRegistryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RefreshAllClients", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		if err := registry.RefreshAll(ctx); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
	}
}

// ListDomainConflicts returns domain registrations rejected at mapping build
func ListDomainConflicts(registry interfaces.ClientRegistryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		conflicts := registry.Conflicts()
		c.JSON(http.StatusOK, gin.H{"conflicts": conflicts, "count": len(conflicts)})
	}
}
