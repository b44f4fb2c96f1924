package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colenielsonauto/agent-arc/dto"
	"github.com/colenielsonauto/agent-arc/interfaces"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/models"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
)

// RouteMessage routes a classified message for a client. The client may be
// given explicitly or identified from the sender address.
func RouteMessage(registry interfaces.ClientRegistryService, router interfaces.RoutingService, publisher interfaces.EventsPublisher, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "RouteMessage", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.RouteRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		clientID := request.ClientID
		var identification *models.IdentificationResult
		if clientID == "" {
			if request.Message.From == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "clientId or message.from is required"})
				return
			}
			identification = registry.IdentifyClient(ctx, request.Message.From)
			clientID = identification.ClientID
		}
		tracing.TagClient(span, clientID)

		decision := router.Route(ctx, clientID, request.Classification, request.Message)

		if err := publisher.PublishRoutingDecision(ctx, decision); err != nil {
			tracing.TraceErr(span, err)
			log.Errorf("Failed to publish routing decision %s: %v", decision.ID, err)
		}

		response := dto.RouteResponse{
			Identification: identification,
			Decision:       decision,
		}
		if clientID != "" {
			response.ResponseTime = registry.GetResponseTime(ctx, clientID, decision.Category)
		}

		c.JSON(http.StatusOK, response)
	}
}
