package models

import (
	"fmt"

	"github.com/colenielsonauto/agent-arc/internal/enum"
)

// IdentificationResult is the outcome of matching a domain or email address to
// a client. A miss is a value with an empty ClientID, not an error.
type IdentificationResult struct {
	ClientID   string                    `json:"clientId,omitempty"`
	Confidence float64                   `json:"confidence"`
	Method     enum.IdentificationMethod `json:"method"`
	// DomainUsed is the registered domain the match landed on.
	DomainUsed string `json:"domainUsed,omitempty"`
}

// Successful reports whether the identification is trustworthy enough to act on.
func (r IdentificationResult) Successful() bool {
	return r.ClientID != "" && r.Confidence > 0.5
}

func (r IdentificationResult) String() string {
	return fmt.Sprintf("IdentificationResult(clientId=%q, confidence=%.2f, method=%s)", r.ClientID, r.Confidence, r.Method)
}

// ClientSimilarity pairs a client with its best domain-similarity score.
type ClientSimilarity struct {
	ClientID   string  `json:"clientId"`
	Similarity float64 `json:"similarity"`
}

// DomainConflict records a domain variant claimed by more than one client
// during a mapping build. The first registrant keeps the mapping.
type DomainConflict struct {
	Domain           string `json:"domain"`
	OwnerClientID    string `json:"ownerClientId"`
	RejectedClientID string `json:"rejectedClientId"`
}

// ClientSummary is a derived overview of a client's configuration.
type ClientSummary struct {
	ClientID          string            `json:"clientId"`
	Name              string            `json:"name"`
	Industry          string            `json:"industry"`
	Status            enum.ClientStatus `json:"status"`
	PrimaryDomain     string            `json:"primaryDomain"`
	Domains           []string          `json:"domains"`
	TotalDomains      int               `json:"totalDomains"`
	RoutingCategories []enum.Category   `json:"routingCategories"`
	Settings          ClientSettings    `json:"settings"`
}
