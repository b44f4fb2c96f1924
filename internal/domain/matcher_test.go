package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colenielsonauto/agent-arc/internal/enum"
)

func TestMatcherExactMatch(t *testing.T) {
	m := NewMatcher()

	match, confidence, method := m.Match("acme.com", []string{"acme.com", "other.com"})

	assert.Equal(t, "acme.com", match)
	assert.Equal(t, 1.0, confidence)
	assert.Equal(t, enum.MethodExactMatch, method)
}

func TestMatcherAliasResolution(t *testing.T) {
	m := NewMatcher()
	m.AddAlias("old.acme.com", "acme.com")

	match, confidence, method := m.Match("old.acme.com", []string{"acme.com"})

	assert.Equal(t, "acme.com", match)
	assert.Equal(t, 0.95, confidence)
	assert.Equal(t, enum.MethodAliasResolution, method)
}

func TestMatcherPatternMatch(t *testing.T) {
	m := NewMatcher()
	m.AddPattern("*.acme-corp.io")

	match, confidence, method := m.Match("mail.acme-corp.io", []string{"apps.acme-corp.io"})

	assert.Equal(t, "apps.acme-corp.io", match)
	assert.Equal(t, 0.9, confidence)
	assert.Equal(t, enum.MethodPatternMatch, method)
}

func TestMatcherHierarchyMatch(t *testing.T) {
	m := NewMatcher()

	// The level found is a true parent of the input.
	match, confidence, method := m.Match("api.v1.acme.com", []string{"acme.com"})

	assert.Equal(t, "acme.com", match)
	assert.Equal(t, 0.8, confidence)
	assert.Equal(t, enum.MethodHierarchyMatch, method)
}

func TestMatcherSimilarityMatch(t *testing.T) {
	m := NewMatcher()
	m.SimilarityThreshold = 0.6

	// No exact, alias, pattern, or hierarchy hit; sibling subdomains share two
	// of three labels.
	match, confidence, method := m.Match("mail.acme.com", []string{"shop.acme.com"})

	assert.Equal(t, "shop.acme.com", match)
	assert.InDelta(t, 2.0/3.0, confidence, 0.001)
	assert.Equal(t, enum.MethodSimilarityMatch, method)
}

func TestMatcherSimilarityBelowThreshold(t *testing.T) {
	m := NewMatcher()

	match, confidence, method := m.Match("mail.acme.com", []string{"shop.acme.com"})

	assert.Equal(t, "", match)
	assert.Equal(t, 0.0, confidence)
	assert.Equal(t, enum.MethodNoMatch, method)
}

func TestMatcherInvalidDomain(t *testing.T) {
	m := NewMatcher()

	match, confidence, method := m.Match("not a domain", []string{"acme.com"})

	assert.Equal(t, "", match)
	assert.Equal(t, 0.0, confidence)
	assert.Equal(t, enum.MethodInvalidDomain, method)
}

func TestMatcherPrecedence(t *testing.T) {
	m := NewMatcher()
	m.AddAlias("acme.com", "other.com")

	// Exact membership wins over a registered alias for the same domain.
	match, confidence, method := m.Match("acme.com", []string{"acme.com", "other.com"})

	assert.Equal(t, "acme.com", match)
	assert.Equal(t, 1.0, confidence)
	assert.Equal(t, enum.MethodExactMatch, method)
}
