package dto

import (
	"github.com/colenielsonauto/agent-arc/internal/models"
)

type IdentifyRequest struct {
	// SenderEmail is the full sender address; Domain may be set instead to
	// identify by domain directly. SenderEmail wins when both are present.
	SenderEmail string `json:"senderEmail"`
	Domain      string `json:"domain"`
}

type IdentifyResponse struct {
	Result *models.IdentificationResult `json:"result"`
	// Suggestions lists near-miss clients when no confident match was found.
	Suggestions []models.ClientSimilarity `json:"suggestions,omitempty"`
}

type AddAliasRequest struct {
	Alias     string `json:"alias"`
	Canonical string `json:"canonical"`
}
