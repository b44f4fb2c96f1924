package dto

import (
	"github.com/colenielsonauto/agent-arc/internal/models"
)

// RoutingDecisionEvent is the envelope published to the message bus for every
// routing decision taken.
type RoutingDecisionEvent struct {
	Event    RoutingDecisionDetails `json:"event"`
	Metadata EventMetadata          `json:"metadata"`
}

type RoutingDecisionDetails struct {
	Id        string                  `json:"id"`
	ClientId  string                  `json:"clientId"`
	EventType string                  `json:"eventType"`
	Tenant    string                  `json:"tenant,omitempty"`
	Data      *models.RoutingDecision `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uberTraceId,omitempty"`
	UserEmail   string `json:"userEmail,omitempty"`
	Timestamp   string `json:"timestamp"`
}
