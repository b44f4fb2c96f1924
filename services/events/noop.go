package events

import (
	"context"

	"github.com/colenielsonauto/agent-arc/interfaces"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/models"
)

// noopPublisher stands in when no message bus is configured. Decisions are
// still served over the API, they are just not published anywhere.
type noopPublisher struct {
	log logger.Logger
}

func NewNoopPublisher(log logger.Logger) interfaces.EventsPublisher {
	return &noopPublisher{log: log}
}

func (p *noopPublisher) PublishRoutingDecision(_ context.Context, decision *models.RoutingDecision) error {
	p.log.Debugf("event publishing disabled, dropping routing decision %s", decision.ID)
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
