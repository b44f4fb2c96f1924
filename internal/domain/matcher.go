package domain

import (
	"strings"

	"github.com/colenielsonauto/agent-arc/internal/enum"
)

const DefaultSimilarityThreshold = 0.7

// Matcher composes the resolution primitives into a single match operation
// with a fixed strategy precedence. It holds the alias table and wildcard
// patterns registered by the client registry; it is not safe for concurrent
// mutation, so registries configure it during mapping builds only.
type Matcher struct {
	aliases             map[string]string
	patterns            []string
	SimilarityThreshold float64
}

func NewMatcher() *Matcher {
	return &Matcher{
		aliases:             make(map[string]string),
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// AddAlias registers an alias -> canonical mapping. Both sides are normalized;
// invalid domains are ignored.
func (m *Matcher) AddAlias(alias, canonical string) {
	alias = Normalize(alias)
	canonical = Normalize(canonical)
	if alias == "" || canonical == "" {
		return
	}
	m.aliases[alias] = canonical
}

// AddPattern registers a wildcard pattern, e.g. "*.acme.com".
func (m *Matcher) AddPattern(pattern string) {
	if pattern == "" {
		return
	}
	for _, existing := range m.patterns {
		if existing == pattern {
			return
		}
	}
	m.patterns = append(m.patterns, pattern)
}

// Match tries each strategy in precedence order and returns on the first hit:
// exact membership (1.0), alias resolution (0.95), wildcard pattern (0.9),
// hierarchy walk (0.8 for a true parent, 0.7 otherwise), then best similarity
// at or above the threshold.
func (m *Matcher) Match(domain string, candidates []string) (string, float64, enum.IdentificationMethod) {
	domain = Normalize(domain)
	if domain == "" {
		return "", 0.0, enum.MethodInvalidDomain
	}

	candidateSet := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		candidateSet[c] = struct{}{}
	}

	if _, ok := candidateSet[domain]; ok {
		return domain, 1.0, enum.MethodExactMatch
	}

	if canonical := ResolveAlias(domain, m.aliases); canonical != domain {
		if _, ok := candidateSet[canonical]; ok {
			return canonical, 0.95, enum.MethodAliasResolution
		}
	}

	for _, pattern := range m.patterns {
		if !MatchPattern(domain, pattern) {
			continue
		}
		remainder := strings.ReplaceAll(pattern, "*", "")
		for _, candidate := range candidates {
			if remainder != "" && strings.Contains(candidate, remainder) {
				return candidate, 0.9, enum.MethodPatternMatch
			}
		}
	}

	for _, level := range hierarchyTail(domain) {
		if _, ok := candidateSet[level]; ok {
			confidence := 0.7
			if IsSubdomainOf(domain, level) {
				confidence = 0.8
			}
			return level, confidence, enum.MethodHierarchyMatch
		}
	}

	if bestMatch, similarity := FindBestMatch(domain, candidates); bestMatch != "" && similarity >= m.SimilarityThreshold {
		return bestMatch, similarity, enum.MethodSimilarityMatch
	}

	return "", 0.0, enum.MethodNoMatch
}

// hierarchyTail is the hierarchy without the domain itself.
func hierarchyTail(domain string) []string {
	hierarchy := Hierarchy(domain)
	if len(hierarchy) <= 1 {
		return nil
	}
	return hierarchy[1:]
}
