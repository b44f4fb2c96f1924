package models

import (
	"time"

	"github.com/colenielsonauto/agent-arc/internal/enum"
)

// Classification is the upstream classifier's verdict on an inbound message.
// The classifier itself lives outside this service.
type Classification struct {
	Category   enum.Category `json:"category"`
	Confidence float64       `json:"confidence"`
}

// InboundMessage is the metadata of a received message relevant to routing.
type InboundMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type EscalationStep struct {
	Step       int       `json:"step"`
	HoursAfter int       `json:"hoursAfter"`
	EscalateTo string    `json:"escalateTo"`
	// EscalationTime is the absolute instant at which the step fires.
	EscalationTime time.Time `json:"escalationTime"`
}

// Special handling flags attached to a routing decision.
const (
	HandlingVIPSender           = "vip_sender"
	HandlingUrgentKeywords      = "urgent_keywords"
	HandlingComplaintIndicators = "complaint_indicators"
	HandlingFallbackRouting     = "fallback_routing"
	HandlingHardFallback        = "hard_fallback"
)

// RoutingDecision is the result of routing one message for one client. Route
// always produces a decision; degraded paths are flagged, never raised.
type RoutingDecision struct {
	ID                 string        `json:"id"`
	ClientID           string        `json:"clientId"`
	Category           enum.Category `json:"category"`
	PrimaryDestination string        `json:"primaryDestination"`
	// BackupDestinations is ordered; the general-category destination is always
	// the last resort when the client has one mapped.
	BackupDestinations   []string             `json:"backupDestinations"`
	EscalationSchedule   []EscalationStep     `json:"escalationSchedule"`
	EscalationTriggered  bool                 `json:"escalationTriggered"`
	EscalationType       string               `json:"escalationType,omitempty"`
	EscalationReason     string               `json:"escalationReason,omitempty"`
	Priority             enum.Priority        `json:"priority,omitempty"`
	BusinessHoursApplied bool                 `json:"businessHoursApplied"`
	ConfidenceLevel      enum.ConfidenceLevel `json:"confidenceLevel"`
	SpecialHandling      []string             `json:"specialHandling"`
	// Error carries the annotation when the decision required a fallback path.
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
