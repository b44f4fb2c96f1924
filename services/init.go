package services

import (
	"github.com/colenielsonauto/agent-arc/config"
	"github.com/colenielsonauto/agent-arc/interfaces"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/repository"
	"github.com/colenielsonauto/agent-arc/services/events"
	"github.com/colenielsonauto/agent-arc/services/registry"
	"github.com/colenielsonauto/agent-arc/services/routing"
)

type Services struct {
	RegistryService interfaces.ClientRegistryService
	RoutingService  interfaces.RoutingService
	EventsPublisher interfaces.EventsPublisher
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	registryService := registry.NewClientRegistryService(log, repos, cfg.IdentificationConfig)
	routingService := routing.NewRoutingService(log, registryService, cfg.AppConfig)

	var publisher interfaces.EventsPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, nil)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	} else {
		log.Warn("RABBITMQ_URL not set, routing decision events will not be published")
		publisher = events.NewNoopPublisher(log)
	}

	return &Services{
		RegistryService: registryService,
		RoutingService:  routingService,
		EventsPublisher: publisher,
	}, nil
}
