package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/colenielsonauto/agent-arc/dto"
	"github.com/colenielsonauto/agent-arc/interfaces"
	"github.com/colenielsonauto/agent-arc/internal/domain"
	"github.com/colenielsonauto/agent-arc/internal/models"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
)

const maxSimilarSuggestions = 3

// IdentifyClient resolves a sender email or domain to a client
func IdentifyClient(registry interfaces.ClientRegistryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "IdentifyClient", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.IdentifyRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if request.SenderEmail == "" && request.Domain == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "senderEmail or domain is required"})
			return
		}

		var result *models.IdentificationResult
		queriedDomain := request.Domain
		if request.SenderEmail != "" {
			result = registry.IdentifyClient(ctx, request.SenderEmail)
			queriedDomain = domain.FromEmail(request.SenderEmail)
		} else {
			result = registry.IdentifyClientByDomain(ctx, request.Domain)
		}

		response := dto.IdentifyResponse{Result: result}
		if !result.Successful() && queriedDomain != "" {
			response.Suggestions = registry.FindSimilarClients(ctx, queriedDomain, maxSimilarSuggestions)
		}

		c.JSON(http.StatusOK, response)
	}
}

// AddDomainAlias registers a domain alias for identification
func AddDomainAlias(registry interfaces.ClientRegistryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "AddDomainAlias", c.Request.Header)
		defer span.Finish()
		tracing.SetDefaultRestSpanTags(ctx, span)

		var request dto.AddAliasRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := registry.AddDomainAlias(ctx, request.Alias, request.Canonical); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"status": "alias added"})
	}
}
