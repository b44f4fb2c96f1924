package registry

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/colenielsonauto/agent-arc/config"
	"github.com/colenielsonauto/agent-arc/interfaces"
	"github.com/colenielsonauto/agent-arc/internal/domain"
	"github.com/colenielsonauto/agent-arc/internal/enum"
	er "github.com/colenielsonauto/agent-arc/internal/errors"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/models"
	"github.com/colenielsonauto/agent-arc/internal/repository"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
)

const (
	// Identification accepts a global similarity match down to this confidence.
	globalSimilarityFloor = 0.6
	// Matcher results below this confidence are not trusted as fuzzy matches.
	fuzzyMatchFloor = 0.7

	defaultResponseTime = "within 24 hours"
)

type clientRegistryService struct {
	log          logger.Logger
	repositories *repository.Repositories
	cfg          *config.IdentificationConfig

	mapping atomic.Pointer[domainMapping]

	// aliasMu guards the alias table fed into mapping rebuilds.
	aliasMu sync.Mutex
	aliases map[string]string
}

func NewClientRegistryService(log logger.Logger, repositories *repository.Repositories, cfg *config.IdentificationConfig) interfaces.ClientRegistryService {
	s := &clientRegistryService{
		log:          log,
		repositories: repositories,
		cfg:          cfg,
		aliases:      make(map[string]string),
	}
	s.mapping.Store(emptyMapping())
	return s
}

func (s *clientRegistryService) IdentifyClient(ctx context.Context, senderEmail string) *models.IdentificationResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.IdentifyClient")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.senderEmail", senderEmail)

	senderDomain := domain.FromEmail(senderEmail)
	if senderDomain == "" {
		return &models.IdentificationResult{Method: enum.MethodInvalidEmail}
	}

	return s.IdentifyClientByDomain(ctx, senderDomain)
}

func (s *clientRegistryService) IdentifyClientByDomain(ctx context.Context, d string) *models.IdentificationResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.IdentifyClientByDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.domain", d)

	result := s.identifyDomain(ctx, d)

	tracing.TagClient(span, result.ClientID)
	span.LogKV("result.method", result.Method.String(), "result.confidence", result.Confidence)
	return result
}

func (s *clientRegistryService) identifyDomain(ctx context.Context, d string) *models.IdentificationResult {
	normalized := domain.Normalize(d)
	if normalized == "" {
		return &models.IdentificationResult{Method: enum.MethodInvalidDomain}
	}

	mapping := s.currentMapping(ctx)

	// Exact hit on a registered variant.
	if clientID, ok := mapping.domainToClient[normalized]; ok {
		return &models.IdentificationResult{
			ClientID:   clientID,
			Confidence: 1.0,
			Method:     enum.MethodExactMatch,
			DomainUsed: normalized,
		}
	}

	// Walk up the hierarchy; confidence decays with distance from the queried
	// domain but never below 0.7.
	hierarchy := domain.Hierarchy(normalized)
	for i, parent := range hierarchy[1:] {
		if clientID, ok := mapping.domainToClient[parent]; ok {
			confidence := 1.0 - 0.1*float64(i+1)
			if confidence < 0.7 {
				confidence = 0.7
			}
			return &models.IdentificationResult{
				ClientID:   clientID,
				Confidence: confidence,
				Method:     enum.MethodHierarchyMatch,
				DomainUsed: parent,
			}
		}
	}

	// Fuzzy pass through the matcher: aliases, wildcard patterns and per-domain
	// similarity against everything registered.
	if matched, confidence, method := mapping.matcher.Match(normalized, mapping.registered); matched != "" && confidence >= fuzzyMatchFloor {
		return &models.IdentificationResult{
			ClientID:   mapping.domainToClient[matched],
			Confidence: confidence,
			Method:     method.Fuzzy(),
			DomainUsed: matched,
		}
	}

	// Last chance: best global similarity with a lower bar.
	floor := globalSimilarityFloor
	if s.cfg != nil && s.cfg.ConfidenceThreshold > 0 {
		floor = s.cfg.ConfidenceThreshold
	}
	if bestMatch, similarity := domain.FindBestMatch(normalized, mapping.registered); bestMatch != "" && similarity >= floor {
		return &models.IdentificationResult{
			ClientID:   mapping.domainToClient[bestMatch],
			Confidence: similarity,
			Method:     enum.MethodSimilarityMatch,
			DomainUsed: bestMatch,
		}
	}

	return &models.IdentificationResult{Method: enum.MethodNoMatch}
}

func (s *clientRegistryService) GetClientConfig(ctx context.Context, clientID string) (*models.ClientConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.GetClientConfig")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)

	config, err := s.repositories.ClientConfigs.GetClientConfig(ctx, clientID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return config, nil
}

// GetClientDomains returns every domain variant registered for a client.
func (s *clientRegistryService) GetClientDomains(ctx context.Context, clientID string) []string {
	mapping := s.currentMapping(ctx)
	return mapping.clientDomains[clientID]
}

func (s *clientRegistryService) GetRoutingRules(ctx context.Context, clientID string) (*models.RoutingRules, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.GetRoutingRules")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)

	rules, err := s.repositories.ClientConfigs.GetRoutingRules(ctx, clientID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return rules, nil
}

// GetRoutingDestination resolves the destination for a category, degrading
// through backup routing, the general category and finally the client's
// primary contact.
func (s *clientRegistryService) GetRoutingDestination(ctx context.Context, clientID string, category enum.Category) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.GetRoutingDestination")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)
	span.LogKV("request.category", category.String())

	rules, err := s.repositories.ClientConfigs.GetRoutingRules(ctx, clientID)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", err
	}

	if destination := rules.Routing[category]; destination != "" {
		return destination, nil
	}
	if destination := rules.BackupRouting[category]; destination != "" {
		return destination, nil
	}
	if destination := rules.Routing[enum.CategoryGeneral]; destination != "" {
		return destination, nil
	}

	config, err := s.repositories.ClientConfigs.GetClientConfig(ctx, clientID)
	if err == nil && config.Contacts.PrimaryContact != "" {
		return config.Contacts.PrimaryContact, nil
	}

	err = errors.Wrapf(er.ErrNoRoutingDestination, "client %s has no destination for category %s", clientID, category)
	tracing.TraceErr(span, err)
	return "", err
}

func (s *clientRegistryService) GetResponseTime(ctx context.Context, clientID string, category enum.Category) string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.GetResponseTime")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)

	config, err := s.repositories.ClientConfigs.GetClientConfig(ctx, clientID)
	if err != nil {
		tracing.TraceErr(span, err)
		return defaultResponseTime
	}

	if responseTime := config.ResponseTimes.ForCategory(category); responseTime != "" {
		return responseTime
	}
	return defaultResponseTime
}

func (s *clientRegistryService) ValidateClient(ctx context.Context, clientID string) bool {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.ValidateClient")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)

	if _, err := s.repositories.ClientConfigs.GetClientConfig(ctx, clientID); err != nil {
		return false
	}
	rules, err := s.repositories.ClientConfigs.GetRoutingRules(ctx, clientID)
	if err != nil {
		return false
	}

	// A missing canonical category is worth flagging but not fatal; routing
	// degrades through the general destination.
	for _, category := range enum.Categories() {
		if rules.Routing[category] == "" {
			s.log.Warnf("client %s has no routing destination for category %s", clientID, category)
		}
	}

	if len(s.GetClientDomains(ctx, clientID)) == 0 {
		s.log.Warnf("client %s has no registered domains", clientID)
		return false
	}
	return true
}

func (s *clientRegistryService) GetClientSummary(ctx context.Context, clientID string) (*models.ClientSummary, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.GetClientSummary")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)

	config, err := s.repositories.ClientConfigs.GetClientConfig(ctx, clientID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	rules, err := s.repositories.ClientConfigs.GetRoutingRules(ctx, clientID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	domains := s.GetClientDomains(ctx, clientID)

	categories := make([]enum.Category, 0, len(rules.Routing))
	for category := range rules.Routing {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	return &models.ClientSummary{
		ClientID:          clientID,
		Name:              config.Client.Name,
		Industry:          config.Client.Industry,
		Status:            config.Client.Status,
		PrimaryDomain:     domain.Normalize(config.Domains.Primary),
		Domains:           domains,
		TotalDomains:      len(domains),
		RoutingCategories: categories,
		Settings:          config.Settings,
	}, nil
}

func (s *clientRegistryService) ListClients(ctx context.Context) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.ListClients")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	clients, err := s.repositories.ClientConfigs.ListClients(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return clients, nil
}

func (s *clientRegistryService) AddDomainAlias(ctx context.Context, alias, canonical string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.AddDomainAlias")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.alias", alias, "request.canonical", canonical)

	normalizedAlias := domain.Normalize(alias)
	normalizedCanonical := domain.Normalize(canonical)
	if normalizedAlias == "" || normalizedCanonical == "" {
		err := errors.Errorf("invalid alias mapping %q -> %q", alias, canonical)
		tracing.TraceErr(span, err)
		return err
	}

	// An alias must not shadow a domain some client already owns.
	mapping := s.currentMapping(ctx)
	if owner, registered := mapping.domainToClient[normalizedAlias]; registered && normalizedAlias != normalizedCanonical {
		err := errors.Wrapf(er.ErrDomainConflict, "alias %s is registered to %s", normalizedAlias, owner)
		tracing.TraceErr(span, err)
		return err
	}

	s.aliasMu.Lock()
	s.aliases[normalizedAlias] = normalizedCanonical
	s.aliasMu.Unlock()

	return s.rebuild(ctx)
}

func (s *clientRegistryService) FindSimilarClients(ctx context.Context, d string, limit int) []models.ClientSimilarity {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.FindSimilarClients")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.domain", d)

	normalized := domain.Normalize(d)
	if normalized == "" {
		return nil
	}

	mapping := s.currentMapping(ctx)

	// Keep only the best score per client.
	best := make(map[string]float64)
	for _, registered := range mapping.registered {
		similarity := domain.Similarity(normalized, registered)
		if similarity <= 0 {
			continue
		}
		clientID := mapping.domainToClient[registered]
		if similarity > best[clientID] {
			best[clientID] = similarity
		}
	}

	similarities := make([]models.ClientSimilarity, 0, len(best))
	for clientID, similarity := range best {
		similarities = append(similarities, models.ClientSimilarity{ClientID: clientID, Similarity: similarity})
	}
	sort.Slice(similarities, func(i, j int) bool {
		if similarities[i].Similarity != similarities[j].Similarity {
			return similarities[i].Similarity > similarities[j].Similarity
		}
		return similarities[i].ClientID < similarities[j].ClientID
	})

	if limit > 0 && len(similarities) > limit {
		similarities = similarities[:limit]
	}
	return similarities
}

func (s *clientRegistryService) Conflicts() []models.DomainConflict {
	mapping := s.mapping.Load()
	if mapping == nil {
		return nil
	}
	return mapping.conflicts
}

func (s *clientRegistryService) RefreshClient(ctx context.Context, clientID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.RefreshClient")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)

	if err := s.repositories.ClientConfigs.ReloadClient(ctx, clientID); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return s.rebuild(ctx)
}

func (s *clientRegistryService) RefreshAll(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ClientRegistryService.RefreshAll")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	s.repositories.ClientConfigs.ClearCache("")
	return s.rebuild(ctx)
}

// currentMapping returns the live snapshot, building one on first use.
func (s *clientRegistryService) currentMapping(ctx context.Context) *domainMapping {
	mapping := s.mapping.Load()
	if mapping != nil && len(mapping.domainToClient) > 0 {
		return mapping
	}
	if err := s.rebuild(ctx); err != nil {
		s.log.Errorf("failed to build domain mapping: %v", err)
		return emptyMapping()
	}
	return s.mapping.Load()
}

func (s *clientRegistryService) rebuild(ctx context.Context) error {
	s.aliasMu.Lock()
	aliases := make(map[string]string, len(s.aliases))
	for alias, canonical := range s.aliases {
		aliases[alias] = canonical
	}
	s.aliasMu.Unlock()

	similarityThreshold := 0.0
	if s.cfg != nil {
		similarityThreshold = s.cfg.SimilarityThreshold
	}

	mapping, err := buildMapping(ctx, s.repositories.ClientConfigs, aliases, similarityThreshold)
	if err != nil {
		return err
	}

	for _, conflict := range mapping.conflicts {
		s.log.Warnf("domain conflict: %s already mapped to %s, rejected for %s",
			conflict.Domain, conflict.OwnerClientID, conflict.RejectedClientID)
	}

	s.mapping.Store(mapping)
	s.log.Infof("domain mapping rebuilt: %d clients, %d domains, %d conflicts",
		len(mapping.clientDomains), len(mapping.registered), len(mapping.conflicts))
	return nil
}
