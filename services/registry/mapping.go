package registry

import (
	"context"

	"github.com/pkg/errors"

	"github.com/colenielsonauto/agent-arc/internal/domain"
	"github.com/colenielsonauto/agent-arc/internal/models"
	"github.com/colenielsonauto/agent-arc/internal/repository"
)

// domainMapping is an immutable snapshot of the domain lookup tables. Lookups
// read whichever snapshot is current; rebuilds produce a fresh snapshot and
// swap it in atomically.
type domainMapping struct {
	// domainToClient maps every registered domain variant to its owning client.
	domainToClient map[string]string
	// clientDomains maps a client to its registered variants, first-seen order.
	clientDomains map[string][]string
	// registered is the deterministic list of all mapped domain variants.
	registered []string
	conflicts  []models.DomainConflict
	matcher    *domain.Matcher
}

func emptyMapping() *domainMapping {
	return &domainMapping{
		domainToClient: make(map[string]string),
		clientDomains:  make(map[string][]string),
		matcher:        domain.NewMatcher(),
	}
}

// buildMapping loads every client and registers all of its domain variants.
// When two clients claim the same variant the first registrant wins and the
// collision is recorded as a conflict.
func buildMapping(ctx context.Context, repo repository.ClientConfigRepository, aliases map[string]string, similarityThreshold float64) (*domainMapping, error) {
	mapping := emptyMapping()
	if similarityThreshold > 0 {
		mapping.matcher.SimilarityThreshold = similarityThreshold
	}
	for alias, canonical := range aliases {
		mapping.matcher.AddAlias(alias, canonical)
	}

	clientIDs, err := repo.ListClients(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list clients for domain mapping")
	}

	for _, clientID := range clientIDs {
		config, err := repo.GetClientConfig(ctx, clientID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load client %s for domain mapping", clientID)
		}
		mapping.registerClient(clientID, config)
	}

	return mapping, nil
}

func (m *domainMapping) registerClient(clientID string, config *models.ClientConfig) {
	for _, d := range clientDomains(config) {
		for _, variant := range domain.Variants(d) {
			m.registerDomain(variant, clientID)
		}
	}
	if primary := domain.Normalize(config.Domains.Primary); primary != "" {
		m.matcher.AddPattern("*." + primary)
	}
}

func (m *domainMapping) registerDomain(d, clientID string) {
	if owner, taken := m.domainToClient[d]; taken {
		if owner != clientID {
			m.conflicts = append(m.conflicts, models.DomainConflict{
				Domain:           d,
				OwnerClientID:    owner,
				RejectedClientID: clientID,
			})
		}
		return
	}
	m.domainToClient[d] = clientID
	m.clientDomains[clientID] = append(m.clientDomains[clientID], d)
	m.registered = append(m.registered, d)
}

// clientDomains extracts the raw configured domains of a client. The support
// entry may be a full address, in which case its domain part is used.
func clientDomains(config *models.ClientConfig) []string {
	candidates := []string{config.Domains.Primary, config.Domains.Sending}

	support := config.Domains.Support
	if support != "" {
		if fromEmail := domain.FromEmail(support); fromEmail != "" {
			support = fromEmail
		}
		candidates = append(candidates, support)
	}

	domains := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if normalized := domain.Normalize(c); normalized != "" {
			domains = append(domains, normalized)
		}
	}
	return domains
}
