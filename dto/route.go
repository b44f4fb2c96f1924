package dto

import (
	"github.com/colenielsonauto/agent-arc/internal/models"
)

type RouteRequest struct {
	// ClientID may be empty, in which case the sender address is used to
	// identify the client first.
	ClientID       string                `json:"clientId"`
	Classification models.Classification `json:"classification"`
	Message        models.InboundMessage `json:"message"`
}

type RouteResponse struct {
	Identification *models.IdentificationResult `json:"identification,omitempty"`
	Decision       *models.RoutingDecision      `json:"decision"`
	ResponseTime   string                       `json:"responseTime"`
}
