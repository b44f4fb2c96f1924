package interfaces

import (
	"context"

	"github.com/colenielsonauto/agent-arc/internal/enum"
	"github.com/colenielsonauto/agent-arc/internal/models"
)

type ClientRegistryService interface {
	// IdentifyClient resolves the sender email address to a client id with a
	// confidence score. It never returns an error for unrecognized input, the
	// result carries a no-match method instead.
	IdentifyClient(ctx context.Context, senderEmail string) *models.IdentificationResult
	IdentifyClientByDomain(ctx context.Context, domain string) *models.IdentificationResult

	GetClientConfig(ctx context.Context, clientID string) (*models.ClientConfig, error)
	GetClientDomains(ctx context.Context, clientID string) []string
	GetRoutingRules(ctx context.Context, clientID string) (*models.RoutingRules, error)
	GetRoutingDestination(ctx context.Context, clientID string, category enum.Category) (string, error)
	GetResponseTime(ctx context.Context, clientID string, category enum.Category) string

	ValidateClient(ctx context.Context, clientID string) bool
	GetClientSummary(ctx context.Context, clientID string) (*models.ClientSummary, error)
	ListClients(ctx context.Context) ([]string, error)

	AddDomainAlias(ctx context.Context, alias, canonical string) error
	FindSimilarClients(ctx context.Context, domain string, limit int) []models.ClientSimilarity
	Conflicts() []models.DomainConflict

	RefreshClient(ctx context.Context, clientID string) error
	RefreshAll(ctx context.Context) error
}

type RoutingService interface {
	// Route produces a routing decision for a classified message. It always
	// returns a decision, degrading through backup and fallback destinations
	// rather than failing.
	Route(ctx context.Context, clientID string, classification models.Classification, message models.InboundMessage) *models.RoutingDecision
}

type EventsPublisher interface {
	PublishRoutingDecision(ctx context.Context, decision *models.RoutingDecision) error
	Close() error
}
