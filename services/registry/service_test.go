package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colenielsonauto/agent-arc/config"
	"github.com/colenielsonauto/agent-arc/internal/enum"
	er "github.com/colenielsonauto/agent-arc/internal/errors"
	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/repository"
)

func newTestRegistry(t *testing.T, clients map[string][2]string) *clientRegistryService {
	t.Helper()

	baseDir := t.TempDir()
	for clientID, files := range clients {
		clientDir := filepath.Join(baseDir, clientID)
		require.NoError(t, os.MkdirAll(clientDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(clientDir, "client-config.yaml"), []byte(files[0]), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(clientDir, "routing-rules.yaml"), []byte(files[1]), 0o644))
	}

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()

	repos := repository.InitRepositories(baseDir)
	cfg := &config.IdentificationConfig{ConfidenceThreshold: 0.6, SimilarityThreshold: 0.7}

	return NewClientRegistryService(log, repos, cfg).(*clientRegistryService)
}

const acmeConfig = `client:
  id: "client-acme"
  name: "Acme Corp"
  industry: "manufacturing"
  status: "active"
  business_hours: "9-17"
domains:
  primary: "acme.com"
  support: "help@support.acme.com"
  sending: "mail.acme.com"
contacts:
  primary_contact: "ops@acme.com"
  escalation_contact: "escalations@acme.com"
response_times:
  support: "within 4 hours"
  general: "within 1 business day"
`

const acmeRouting = `routing:
  support: "support-team@acme.com"
  billing: "billing-team@acme.com"
  general: "hello@acme.com"
backup_routing:
  sales: "sales-backup@acme.com"
`

const betaConfig = `client:
  id: "client-beta"
  name: "Beta Industries"
  status: "active"
domains:
  primary: "beta.io"
contacts:
  primary_contact: "team@beta.io"
`

const betaRouting = `routing:
  general: "inbox@beta.io"
`

func defaultClients() map[string][2]string {
	return map[string][2]string{
		"client-acme": {acmeConfig, acmeRouting},
		"client-beta": {betaConfig, betaRouting},
	}
}

func TestIdentifyClient_ExactDomain(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	result := registry.IdentifyClient(context.Background(), "john@acme.com")

	assert.Equal(t, "client-acme", result.ClientID)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, enum.MethodExactMatch, result.Method)
	assert.Equal(t, "acme.com", result.DomainUsed)
	assert.True(t, result.Successful())
}

func TestIdentifyClient_RegisteredSubdomain(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	// support.acme.com is registered via the support address.
	result := registry.IdentifyClient(context.Background(), "user@support.acme.com")

	assert.Equal(t, "client-acme", result.ClientID)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, enum.MethodExactMatch, result.Method)
}

func TestIdentifyClient_HierarchyMatch(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	// eu.portal.acme.com is unregistered but its hierarchy reaches acme.com.
	result := registry.IdentifyClient(context.Background(), "user@eu.portal.acme.com")

	assert.Equal(t, "client-acme", result.ClientID)
	assert.Equal(t, enum.MethodHierarchyMatch, result.Method)
	assert.GreaterOrEqual(t, result.Confidence, 0.7)
	assert.Equal(t, "acme.com", result.DomainUsed)
}

func TestIdentifyClient_InvalidEmail(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	for _, email := range []string{"", "not-an-email", "@acme.com", "a@b@c.com"} {
		result := registry.IdentifyClient(context.Background(), email)

		assert.Equal(t, enum.MethodInvalidEmail, result.Method, "email: %q", email)
		assert.Empty(t, result.ClientID)
		assert.Zero(t, result.Confidence)
		assert.False(t, result.Successful())
	}
}

func TestIdentifyClient_NoMatch(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	result := registry.IdentifyClient(context.Background(), "someone@unrelated-xyz.net")

	assert.Empty(t, result.ClientID)
	assert.Equal(t, enum.MethodNoMatch, result.Method)
	assert.Zero(t, result.Confidence)
}

func TestIdentifyClientByDomain_AliasResolution(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())
	ctx := context.Background()

	require.NoError(t, registry.AddDomainAlias(ctx, "acme-corp.com", "acme.com"))

	result := registry.IdentifyClientByDomain(ctx, "acme-corp.com")

	assert.Equal(t, "client-acme", result.ClientID)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, enum.MethodAliasResolution.Fuzzy(), result.Method)
}

func TestAddDomainAlias_RejectsRegisteredDomain(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	err := registry.AddDomainAlias(context.Background(), "beta.io", "acme.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, er.ErrDomainConflict))
}

func TestIdentifyClientByDomain_InvalidDomain(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	result := registry.IdentifyClientByDomain(context.Background(), "not a domain")

	assert.Equal(t, enum.MethodInvalidDomain, result.Method)
	assert.Empty(t, result.ClientID)
}

func TestDomainConflict_FirstRegistrantWins(t *testing.T) {
	clients := defaultClients()
	clients["client-copycat"] = [2]string{`client:
  id: "client-copycat"
  status: "active"
domains:
  primary: "acme.com"
`, `routing:
  general: "copy@copycat.com"
`}
	registry := newTestRegistry(t, clients)
	ctx := context.Background()

	result := registry.IdentifyClientByDomain(ctx, "acme.com")

	// Directory order: client-acme registers acme.com first.
	assert.Equal(t, "client-acme", result.ClientID)

	conflicts := registry.Conflicts()
	require.NotEmpty(t, conflicts)
	assert.Equal(t, "acme.com", conflicts[0].Domain)
	assert.Equal(t, "client-acme", conflicts[0].OwnerClientID)
	assert.Equal(t, "client-copycat", conflicts[0].RejectedClientID)
}

func TestGetRoutingDestination(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())
	ctx := context.Background()

	tests := []struct {
		name     string
		category enum.Category
		expected string
	}{
		{"primary mapping", enum.CategorySupport, "support-team@acme.com"},
		{"backup mapping", enum.CategorySales, "sales-backup@acme.com"},
		{"general fallback", enum.CategoryGeneral, "hello@acme.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			destination, err := registry.GetRoutingDestination(ctx, "client-acme", tt.category)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, destination)
		})
	}
}

func TestGetRoutingDestination_PrimaryContactFallback(t *testing.T) {
	clients := map[string][2]string{
		"client-beta": {betaConfig, `routing:
  support: ""
  billing: "money@beta.io"
`},
	}
	registry := newTestRegistry(t, clients)

	destination, err := registry.GetRoutingDestination(context.Background(), "client-beta", enum.CategorySupport)

	require.NoError(t, err)
	assert.Equal(t, "team@beta.io", destination)
}

func TestGetRoutingDestination_UnknownClient(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	_, err := registry.GetRoutingDestination(context.Background(), "client-ghost", enum.CategorySupport)

	require.Error(t, err)
	assert.True(t, errors.Is(err, er.ErrClientNotFound))
}

func TestGetResponseTime(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())
	ctx := context.Background()

	assert.Equal(t, "within 4 hours", registry.GetResponseTime(ctx, "client-acme", enum.CategorySupport))
	assert.Equal(t, "within 1 business day", registry.GetResponseTime(ctx, "client-acme", enum.CategoryBilling))
	assert.Equal(t, defaultResponseTime, registry.GetResponseTime(ctx, "client-beta", enum.CategorySales))
	assert.Equal(t, defaultResponseTime, registry.GetResponseTime(ctx, "client-ghost", enum.CategoryGeneral))
}

func TestValidateClient(t *testing.T) {
	clients := defaultClients()
	// "localhost" survives config validation but never resolves to a
	// registrable domain, so this client owns nothing in the mapping.
	clients["client-orphan"] = [2]string{`client:
  id: "client-orphan"
domains:
  primary: "localhost"
`, `routing:
  general: "x@orphan.org"
`}
	registry := newTestRegistry(t, clients)
	ctx := context.Background()

	assert.True(t, registry.ValidateClient(ctx, "client-acme"))
	// Beta only routes general; missing canonical categories warn, not fail.
	assert.True(t, registry.ValidateClient(ctx, "client-beta"))
	assert.False(t, registry.ValidateClient(ctx, "client-orphan"))
	assert.False(t, registry.ValidateClient(ctx, "client-ghost"))
}

func TestGetClientSummary(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	summary, err := registry.GetClientSummary(context.Background(), "client-acme")

	require.NoError(t, err)
	assert.Equal(t, "client-acme", summary.ClientID)
	assert.Equal(t, "Acme Corp", summary.Name)
	assert.Equal(t, "acme.com", summary.PrimaryDomain)
	assert.Contains(t, summary.Domains, "acme.com")
	assert.Contains(t, summary.Domains, "support.acme.com")
	assert.Contains(t, summary.Domains, "mail.acme.com")
	assert.Equal(t, len(summary.Domains), summary.TotalDomains)
	assert.Equal(t, []enum.Category{enum.CategoryBilling, enum.CategoryGeneral, enum.CategorySupport}, summary.RoutingCategories)
}

func TestFindSimilarClients(t *testing.T) {
	registry := newTestRegistry(t, defaultClients())

	similarities := registry.FindSimilarClients(context.Background(), "shop.acme.com", 5)

	require.NotEmpty(t, similarities)
	assert.Equal(t, "client-acme", similarities[0].ClientID)
	assert.GreaterOrEqual(t, similarities[0].Similarity, 0.8)
}

func TestRefreshAll_PicksUpNewClient(t *testing.T) {
	baseDir := t.TempDir()
	acmeDir := filepath.Join(baseDir, "client-acme")
	require.NoError(t, os.MkdirAll(acmeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(acmeDir, "client-config.yaml"), []byte(acmeConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(acmeDir, "routing-rules.yaml"), []byte(acmeRouting), 0o644))

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	repos := repository.InitRepositories(baseDir)
	registry := NewClientRegistryService(log, repos, &config.IdentificationConfig{}).(*clientRegistryService)
	ctx := context.Background()

	assert.Equal(t, enum.MethodNoMatch, registry.IdentifyClientByDomain(ctx, "beta.io").Method)

	betaDir := filepath.Join(baseDir, "client-beta")
	require.NoError(t, os.MkdirAll(betaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(betaDir, "client-config.yaml"), []byte(betaConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(betaDir, "routing-rules.yaml"), []byte(betaRouting), 0o644))

	require.NoError(t, registry.RefreshAll(ctx))

	result := registry.IdentifyClientByDomain(ctx, "beta.io")
	assert.Equal(t, "client-beta", result.ClientID)
	assert.Equal(t, enum.MethodExactMatch, result.Method)
}
