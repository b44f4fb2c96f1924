package routing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colenielsonauto/agent-arc/config"
	"github.com/colenielsonauto/agent-arc/internal/enum"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/models"
	"github.com/colenielsonauto/agent-arc/internal/repository"
	"github.com/colenielsonauto/agent-arc/services/registry"
)

const clientConfigYAML = `client:
  id: "client-acme"
  name: "Acme Corp"
  status: "active"
  business_hours: "9-17"
domains:
  primary: "acme.com"
contacts:
  primary_contact: "ops@acme.com"
  escalation_contact: "escalations@acme.com"
`

const routingRulesYAML = `routing:
  support: "support-team@acme.com"
  billing: "billing-team@acme.com"
  general: "hello@acme.com"
backup_routing:
  support: "support-backup@acme.com"
escalation:
  time_based:
    support:
      - hours: 4
        escalate_to: "lead@acme.com"
      - hours: 24
        escalate_to: "director@acme.com"
  keyword_based:
    lawsuit: "legal@acme.com"
special_rules:
  vip_domains:
    - "bigcustomer.com"
  vip_route_to: "vip-desk@acme.com"
  after_hours_route_to: "night-shift@acme.com"
  weekend_route_to: "weekend@acme.com"
`

// Wednesday, 11:00 UTC.
var businessHoursClock = time.Date(2026, time.January, 7, 11, 0, 0, 0, time.UTC)

func newTestRoutingService(t *testing.T, clock time.Time) *routingService {
	t.Helper()
	return newTestRoutingServiceWithFixtures(t, clock, clientConfigYAML, routingRulesYAML)
}

func newTestRoutingServiceWithFixtures(t *testing.T, clock time.Time, configYAML, rulesYAML string) *routingService {
	t.Helper()

	baseDir := t.TempDir()
	clientDir := filepath.Join(baseDir, "client-acme")
	require.NoError(t, os.MkdirAll(clientDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(clientDir, "client-config.yaml"), []byte(configYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(clientDir, "routing-rules.yaml"), []byte(rulesYAML), 0o644))

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()

	repos := repository.InitRepositories(baseDir)
	registryService := registry.NewClientRegistryService(log, repos, &config.IdentificationConfig{})
	appConfig := &config.AppConfig{AdminFallbackEmail: "admin@example.com"}

	s := NewRoutingService(log, registryService, appConfig).(*routingService)
	s.now = func() time.Time { return clock }
	return s
}

func plainMessage() models.InboundMessage {
	return models.InboundMessage{
		From:    "customer@somewhere.org",
		Subject: "question about my account",
		Body:    "hello, how do I change my plan?",
	}
}

func TestRoute_PrimaryDestination(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.92}, plainMessage())

	assert.NotEmpty(t, decision.ID)
	assert.Equal(t, "client-acme", decision.ClientID)
	assert.Equal(t, enum.CategorySupport, decision.Category)
	assert.Equal(t, "support-team@acme.com", decision.PrimaryDestination)
	assert.Equal(t, []string{"support-backup@acme.com", "hello@acme.com", "ops@acme.com"}, decision.BackupDestinations)
	assert.Equal(t, enum.ConfidenceVeryHigh, decision.ConfidenceLevel)
	assert.Equal(t, enum.PriorityMedium, decision.Priority)
	assert.False(t, decision.EscalationTriggered)
	assert.False(t, decision.BusinessHoursApplied)
	assert.Empty(t, decision.Error)
}

func TestRoute_UnknownCategoryFallsBackToGeneral(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: "mystery", Confidence: 0.8}, plainMessage())

	assert.Equal(t, enum.CategoryGeneral, decision.Category)
	assert.Equal(t, "hello@acme.com", decision.PrimaryDestination)
}

func TestRoute_KeywordEscalation(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	message := plainMessage()
	message.Subject = "my lawyer filed a LAWSUIT"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, message)

	assert.True(t, decision.EscalationTriggered)
	assert.Equal(t, "keyword", decision.EscalationType)
	assert.Equal(t, "legal@acme.com", decision.PrimaryDestination)
	assert.Equal(t, enum.PriorityUrgent, decision.Priority)
	// Immediate escalation supersedes the time-based schedule.
	assert.Empty(t, decision.EscalationSchedule)
}

func TestRoute_KeywordEscalationPicksFirstAlphabetically(t *testing.T) {
	rules := `routing:
  support: "support-team@acme.com"
  general: "hello@acme.com"
escalation:
  keyword_based:
    lawsuit: "legal@acme.com"
    breach: "security@acme.com"
`
	s := newTestRoutingServiceWithFixtures(t, businessHoursClock, clientConfigYAML, rules)

	message := plainMessage()
	message.Body = "the data breach will end in a lawsuit"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, message)

	assert.True(t, decision.EscalationTriggered)
	assert.Equal(t, "security@acme.com", decision.PrimaryDestination)
	assert.Equal(t, "keyword trigger: breach", decision.EscalationReason)
}

func TestRoute_VIPEscalation(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	message := plainMessage()
	message.From = "ceo@bigcustomer.com"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, message)

	assert.True(t, decision.EscalationTriggered)
	assert.Equal(t, "vip", decision.EscalationType)
	assert.Equal(t, "vip-desk@acme.com", decision.PrimaryDestination)
	assert.Equal(t, enum.PriorityHigh, decision.Priority)
	assert.Contains(t, decision.SpecialHandling, models.HandlingVIPSender)
}

func TestRoute_VIPWithoutDestinationDoesNotEscalate(t *testing.T) {
	rules := `routing:
  support: "support-team@acme.com"
  general: "hello@acme.com"
special_rules:
  vip_domains:
    - "bigcustomer.com"
`
	s := newTestRoutingServiceWithFixtures(t, businessHoursClock, clientConfigYAML, rules)

	message := plainMessage()
	message.From = "ceo@bigcustomer.com"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, message)

	assert.False(t, decision.EscalationTriggered)
	assert.Equal(t, "support-team@acme.com", decision.PrimaryDestination)
	assert.Equal(t, enum.PriorityMedium, decision.Priority)
	// The advisory flag is still recorded.
	assert.Contains(t, decision.SpecialHandling, models.HandlingVIPSender)
}

func TestRoute_KeywordBeatsVIP(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	message := plainMessage()
	message.From = "ceo@bigcustomer.com"
	message.Body = "we will pursue a lawsuit"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, message)

	assert.Equal(t, "keyword", decision.EscalationType)
	assert.Equal(t, "legal@acme.com", decision.PrimaryDestination)
	assert.Equal(t, enum.PriorityUrgent, decision.Priority)
}

func TestRoute_LowConfidenceEscalation(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.15}, plainMessage())

	assert.True(t, decision.EscalationTriggered)
	assert.Equal(t, "low_confidence", decision.EscalationType)
	assert.Equal(t, "escalations@acme.com", decision.PrimaryDestination)
	assert.Equal(t, enum.PriorityMedium, decision.Priority)
	assert.Equal(t, enum.ConfidenceVeryLow, decision.ConfidenceLevel)
}

func TestRoute_LowConfidenceWithoutEscalationContact(t *testing.T) {
	configNoEscalation := `client:
  id: "client-acme"
  name: "Acme Corp"
  status: "active"
  business_hours: "9-17"
domains:
  primary: "acme.com"
contacts:
  primary_contact: "ops@acme.com"
`
	s := newTestRoutingServiceWithFixtures(t, businessHoursClock, configNoEscalation, routingRulesYAML)

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.15}, plainMessage())

	assert.False(t, decision.EscalationTriggered)
	assert.Equal(t, "support-team@acme.com", decision.PrimaryDestination)
}

func TestRoute_AfterHours(t *testing.T) {
	// Wednesday, 21:00 UTC.
	s := newTestRoutingService(t, time.Date(2026, time.January, 7, 21, 0, 0, 0, time.UTC))

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, plainMessage())

	assert.Equal(t, "night-shift@acme.com", decision.PrimaryDestination)
	assert.True(t, decision.BusinessHoursApplied)
}

func TestRoute_Weekend(t *testing.T) {
	// Saturday, 11:00 UTC.
	s := newTestRoutingService(t, time.Date(2026, time.January, 10, 11, 0, 0, 0, time.UTC))

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, plainMessage())

	assert.Equal(t, "weekend@acme.com", decision.PrimaryDestination)
	assert.True(t, decision.BusinessHoursApplied)
}

func TestRoute_WeekendFallsThroughToAfterHours(t *testing.T) {
	rules := `routing:
  support: "support-team@acme.com"
  general: "hello@acme.com"
special_rules:
  after_hours_route_to: "night-shift@acme.com"
`
	// Saturday, 11:00 UTC with no weekend destination configured.
	s := newTestRoutingServiceWithFixtures(t, time.Date(2026, time.January, 10, 11, 0, 0, 0, time.UTC), clientConfigYAML, rules)

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, plainMessage())

	assert.Equal(t, "night-shift@acme.com", decision.PrimaryDestination)
	assert.True(t, decision.BusinessHoursApplied)
}

func TestRoute_EscalationSkipsBusinessHoursRerouting(t *testing.T) {
	// Saturday, 11:00 UTC with a VIP sender.
	s := newTestRoutingService(t, time.Date(2026, time.January, 10, 11, 0, 0, 0, time.UTC))

	message := plainMessage()
	message.From = "ceo@bigcustomer.com"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, message)

	assert.Equal(t, "vip-desk@acme.com", decision.PrimaryDestination)
	assert.False(t, decision.BusinessHoursApplied)
}

func TestRoute_EscalationSchedule(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, plainMessage())

	require.Len(t, decision.EscalationSchedule, 2)
	assert.Equal(t, 1, decision.EscalationSchedule[0].Step)
	assert.Equal(t, "lead@acme.com", decision.EscalationSchedule[0].EscalateTo)
	assert.Equal(t, businessHoursClock.Add(4*time.Hour), decision.EscalationSchedule[0].EscalationTime)
	assert.Equal(t, "director@acme.com", decision.EscalationSchedule[1].EscalateTo)
	assert.Equal(t, businessHoursClock.Add(24*time.Hour), decision.EscalationSchedule[1].EscalationTime)
}

func TestRoute_SpecialHandlingFlags(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	message := plainMessage()
	message.Subject = "URGENT: this is terrible"
	message.Body = "I am dissatisfied and unhappy with this awful service"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategoryBilling, Confidence: 0.85}, message)

	assert.Contains(t, decision.SpecialHandling, models.HandlingUrgentKeywords)
	assert.Contains(t, decision.SpecialHandling, models.HandlingComplaintIndicators)
	assert.NotContains(t, decision.SpecialHandling, models.HandlingVIPSender)
}

func TestRoute_UrgentKeywordImmediate(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	message := plainMessage()
	message.Body = "this needs immediate attention"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.85}, message)

	assert.Contains(t, decision.SpecialHandling, models.HandlingUrgentKeywords)
	assert.NotContains(t, decision.SpecialHandling, models.HandlingComplaintIndicators)
}

func TestRoute_ComplaintIndicatorDissatisfied(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	message := plainMessage()
	message.Body = "I am dissatisfied with the worst support experience"

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.85}, message)

	assert.Contains(t, decision.SpecialHandling, models.HandlingComplaintIndicators)
	assert.NotContains(t, decision.SpecialHandling, models.HandlingUrgentKeywords)
}

func TestRoute_UnknownClientHardFallback(t *testing.T) {
	s := newTestRoutingService(t, businessHoursClock)

	decision := s.Route(context.Background(), "client-ghost",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, plainMessage())

	assert.Equal(t, "admin@example.com", decision.PrimaryDestination)
	assert.Contains(t, decision.SpecialHandling, models.HandlingHardFallback)
	assert.NotEmpty(t, decision.Error)
	assert.NotEmpty(t, decision.ID)
}

func TestRoute_MissingRulesFallsBackToPrimaryContact(t *testing.T) {
	baseDir := t.TempDir()
	clientDir := filepath.Join(baseDir, "client-acme")
	require.NoError(t, os.MkdirAll(clientDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(clientDir, "client-config.yaml"), []byte(clientConfigYAML), 0o644))

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	repos := repository.InitRepositories(baseDir)
	registryService := registry.NewClientRegistryService(log, repos, &config.IdentificationConfig{})
	s := NewRoutingService(log, registryService, &config.AppConfig{AdminFallbackEmail: "admin@example.com"}).(*routingService)
	s.now = func() time.Time { return businessHoursClock }

	decision := s.Route(context.Background(), "client-acme",
		models.Classification{Category: enum.CategorySupport, Confidence: 0.9}, plainMessage())

	assert.Equal(t, "ops@acme.com", decision.PrimaryDestination)
	assert.Contains(t, decision.SpecialHandling, models.HandlingFallbackRouting)
	assert.NotEmpty(t, decision.Error)
}
