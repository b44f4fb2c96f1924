package routing

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"

	"github.com/colenielsonauto/agent-arc/config"
	"github.com/colenielsonauto/agent-arc/interfaces"
	"github.com/colenielsonauto/agent-arc/internal/domain"
	"github.com/colenielsonauto/agent-arc/internal/enum"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/models"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
	"github.com/colenielsonauto/agent-arc/internal/utils"
)

const lowConfidenceThreshold = 0.3

var urgentKeywords = []string{"urgent", "emergency", "critical", "asap", "immediate"}

var complaintIndicators = []string{"complaint", "dissatisfied", "unhappy", "terrible", "awful", "worst"}

type routingService struct {
	log      logger.Logger
	registry interfaces.ClientRegistryService
	cfg      *config.AppConfig

	// now is swappable so business-hours behavior is testable.
	now func() time.Time
}

func NewRoutingService(log logger.Logger, registry interfaces.ClientRegistryService, cfg *config.AppConfig) interfaces.RoutingService {
	return &routingService{
		log:      log,
		registry: registry,
		cfg:      cfg,
		now:      utils.Now,
	}
}

// Route produces a routing decision for one classified message. It never
// fails: missing rules or destinations degrade through the fallback chain and
// the decision records what happened.
func (s *routingService) Route(ctx context.Context, clientID string, classification models.Classification, message models.InboundMessage) *models.RoutingDecision {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RoutingService.Route")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagClient(span, clientID)
	span.LogKV("request.category", classification.Category.String(), "request.confidence", classification.Confidence)

	category := enum.DecodeCategory(classification.Category.String())
	decision := &models.RoutingDecision{
		ID:              uuid.New().String(),
		ClientID:        clientID,
		Category:        category,
		Priority:        enum.PriorityMedium,
		ConfidenceLevel: enum.ConfidenceLevelFor(classification.Confidence),
		SpecialHandling: []string{},
		Timestamp:       s.now(),
	}

	rules, err := s.registry.GetRoutingRules(ctx, clientID)
	if err != nil {
		tracing.TraceErr(span, err)
		s.applyFallback(ctx, decision, err.Error())
		return decision
	}

	clientConfig, configErr := s.registry.GetClientConfig(ctx, clientID)
	if configErr != nil {
		tracing.TraceErr(span, configErr)
		clientConfig = nil
	}

	destination, backups := resolveDestinations(rules, clientConfig, category)
	if destination == "" {
		s.applyFallback(ctx, decision, "no routing destination configured")
		return decision
	}
	decision.PrimaryDestination = destination
	decision.BackupDestinations = backups

	s.applySpecialHandling(decision, rules, message)
	s.applyEscalation(decision, rules, clientConfig, classification, message)
	// An immediate escalation ends the pipeline; no rerouting or scheduling
	// on top of it.
	if !decision.EscalationTriggered {
		s.applyBusinessHours(decision, rules, clientConfig)
		s.buildEscalationSchedule(decision, rules, category)
	}

	span.LogKV("result.destination", decision.PrimaryDestination, "result.priority", decision.Priority.String())
	return decision
}

// resolveDestinations walks the destination chain for the category and
// assembles the ordered backup list from whatever the chain did not consume.
func resolveDestinations(rules *models.RoutingRules, clientConfig *models.ClientConfig, category enum.Category) (string, []string) {
	chain := []string{
		rules.Routing[category],
		rules.BackupRouting[category],
		rules.Routing[enum.CategoryGeneral],
	}
	if clientConfig != nil {
		chain = append(chain, clientConfig.Contacts.PrimaryContact)
	}

	primary := ""
	backups := make([]string, 0, len(chain))
	for _, destination := range chain {
		if destination == "" {
			continue
		}
		if primary == "" {
			primary = destination
			continue
		}
		if destination != primary && !utils.ContainsString(backups, destination) {
			backups = append(backups, destination)
		}
	}
	return primary, backups
}

// applyFallback routes to the client's primary contact when reachable and to
// the admin fallback address otherwise.
func (s *routingService) applyFallback(ctx context.Context, decision *models.RoutingDecision, reason string) {
	decision.Error = reason

	if clientConfig, err := s.registry.GetClientConfig(ctx, decision.ClientID); err == nil && clientConfig.Contacts.PrimaryContact != "" {
		decision.PrimaryDestination = clientConfig.Contacts.PrimaryContact
		decision.SpecialHandling = append(decision.SpecialHandling, models.HandlingFallbackRouting)
		s.log.Warnf("fallback routing for client %s: %s", decision.ClientID, reason)
		return
	}

	decision.PrimaryDestination = s.adminFallbackEmail()
	decision.SpecialHandling = append(decision.SpecialHandling, models.HandlingHardFallback)
	s.log.Errorf("hard fallback routing for client %s: %s", decision.ClientID, reason)
}

func (s *routingService) adminFallbackEmail() string {
	if s.cfg != nil && s.cfg.AdminFallbackEmail != "" {
		return s.cfg.AdminFallbackEmail
	}
	return "admin@example.com"
}

// applySpecialHandling records advisory flags about the message content and
// sender. Flags never change the destination on their own.
func (s *routingService) applySpecialHandling(decision *models.RoutingDecision, rules *models.RoutingRules, message models.InboundMessage) {
	content := strings.ToLower(message.Subject + " " + message.Body)

	if rules.SpecialRules != nil && isVIPSender(rules.SpecialRules.VIPDomains, message.From) {
		decision.SpecialHandling = append(decision.SpecialHandling, models.HandlingVIPSender)
	}
	if containsAny(content, urgentKeywords) {
		decision.SpecialHandling = append(decision.SpecialHandling, models.HandlingUrgentKeywords)
	}
	if containsAny(content, complaintIndicators) {
		decision.SpecialHandling = append(decision.SpecialHandling, models.HandlingComplaintIndicators)
	}
}

// applyEscalation runs the immediate escalation checks in priority order:
// configured keyword triggers, VIP senders, then low classifier confidence.
// The first hit wins.
func (s *routingService) applyEscalation(decision *models.RoutingDecision, rules *models.RoutingRules, clientConfig *models.ClientConfig, classification models.Classification, message models.InboundMessage) {
	content := strings.ToLower(message.Subject + " " + message.Body)

	if rules.Escalation != nil && len(rules.Escalation.KeywordBased) > 0 {
		// Sorted so the pick is stable when several keywords match.
		keywords := make([]string, 0, len(rules.Escalation.KeywordBased))
		for keyword := range rules.Escalation.KeywordBased {
			keywords = append(keywords, keyword)
		}
		sort.Strings(keywords)
		for _, keyword := range keywords {
			if keyword != "" && strings.Contains(content, strings.ToLower(keyword)) {
				decision.EscalationTriggered = true
				decision.EscalationType = "keyword"
				decision.EscalationReason = "keyword trigger: " + keyword
				decision.Priority = enum.PriorityUrgent
				if escalateTo := rules.Escalation.KeywordBased[keyword]; escalateTo != "" {
					decision.PrimaryDestination = escalateTo
				}
				return
			}
		}
	}

	if rules.SpecialRules != nil && rules.SpecialRules.VIPRouteTo != "" && isVIPSender(rules.SpecialRules.VIPDomains, message.From) {
		decision.EscalationTriggered = true
		decision.EscalationType = "vip"
		decision.EscalationReason = "vip sender domain"
		decision.Priority = enum.PriorityHigh
		decision.PrimaryDestination = rules.SpecialRules.VIPRouteTo
		return
	}

	if classification.Confidence < lowConfidenceThreshold &&
		clientConfig != nil && clientConfig.Contacts.EscalationContact != "" {
		decision.EscalationTriggered = true
		decision.EscalationType = "low_confidence"
		decision.EscalationReason = "classification confidence below threshold"
		decision.Priority = enum.PriorityMedium
		decision.PrimaryDestination = clientConfig.Contacts.EscalationContact
	}
}

// applyBusinessHours reroutes outside the client's business-hours window when
// the routing rules define weekend or after-hours destinations. An absent or
// unparsable window counts as within hours.
func (s *routingService) applyBusinessHours(decision *models.RoutingDecision, rules *models.RoutingRules, clientConfig *models.ClientConfig) {
	if rules.SpecialRules == nil || clientConfig == nil {
		return
	}

	now := s.now()
	if clientConfig.Client.Timezone != "" {
		if location, err := time.LoadLocation(clientConfig.Client.Timezone); err == nil {
			now = now.In(location)
		}
	}
	weekend := now.Weekday() == time.Saturday || now.Weekday() == time.Sunday

	if weekend {
		if rules.SpecialRules.WeekendRouteTo != "" {
			decision.PrimaryDestination = rules.SpecialRules.WeekendRouteTo
			decision.BusinessHoursApplied = true
			return
		}
		// No weekend destination; the after-hours one still applies.
	} else if withinBusinessHours(clientConfig.Client.BusinessHours, now) {
		return
	}

	if rules.SpecialRules.AfterHoursRouteTo != "" {
		decision.PrimaryDestination = rules.SpecialRules.AfterHoursRouteTo
		decision.BusinessHoursApplied = true
	}
}

func (s *routingService) buildEscalationSchedule(decision *models.RoutingDecision, rules *models.RoutingRules, category enum.Category) {
	if rules.Escalation == nil || rules.Escalation.TimeBased == nil {
		return
	}

	now := s.now()
	for i, rule := range rules.Escalation.TimeBased.ForCategory(category) {
		if rule.EscalateTo == "" {
			continue
		}
		decision.EscalationSchedule = append(decision.EscalationSchedule, models.EscalationStep{
			Step:           i + 1,
			HoursAfter:     rule.Hours,
			EscalateTo:     rule.EscalateTo,
			EscalationTime: now.Add(time.Duration(rule.Hours) * time.Hour),
		})
	}
}

// withinBusinessHours evaluates a "start-end" hour window like "9-17" on a
// Monday-to-Friday week. Malformed windows fail open.
func withinBusinessHours(window string, now time.Time) bool {
	if window == "" {
		return true
	}

	parts := strings.SplitN(window, "-", 2)
	if len(parts) != 2 {
		return true
	}
	start, errStart := strconv.Atoi(strings.TrimSpace(parts[0]))
	end, errEnd := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errStart != nil || errEnd != nil || start < 0 || end > 24 || start >= end {
		return true
	}

	hour := now.Hour()
	return hour >= start && hour < end
}

func containsAny(content string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}
	return false
}

func isVIPSender(vipDomains []string, from string) bool {
	senderDomain := domain.FromEmail(from)
	if senderDomain == "" {
		return false
	}
	for _, vip := range vipDomains {
		normalized := domain.Normalize(vip)
		if normalized == "" {
			continue
		}
		if senderDomain == normalized || domain.IsSubdomainOf(senderDomain, normalized) {
			return true
		}
	}
	return false
}
