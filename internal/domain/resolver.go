package domain

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// Pure domain resolution helpers. Every function is total: invalid input yields
// an empty string, nil slice, or zero score instead of an error.

var domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

// IsValidFormat reports whether a domain matches the label grammar:
// alphanumeric/hyphen labels separated by dots, no leading or trailing hyphen.
func IsValidFormat(domain string) bool {
	if domain == "" {
		return false
	}
	return domainPattern.MatchString(domain)
}

// Normalize lowercases a domain, strips scheme, "www." prefix and trailing
// dots, folds unicode hostnames to their ASCII form, and validates the result.
// Returns "" if the input is not a plausible domain with at least two labels.
func Normalize(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}

	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return FromURL(domain)
	}

	domain = strings.TrimPrefix(domain, "www.")
	domain = strings.TrimRight(domain, ".")

	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		domain = ascii
	}

	if domain == "" || !strings.Contains(domain, ".") {
		return ""
	}
	if !IsValidFormat(domain) {
		return ""
	}
	return domain
}

// FromEmail extracts and normalizes the domain of an email address. Display
// forms like "Jane Doe <jane@acme.com>" are unwrapped first.
func FromEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}

	if start := strings.LastIndex(email, "<"); start >= 0 {
		if end := strings.LastIndex(email, ">"); end > start {
			email = email[start+1 : end]
		}
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	if strings.TrimSpace(parts[0]) == "" {
		return ""
	}
	return Normalize(parts[1])
}

// FromURL extracts and normalizes the host of a URL, injecting an https scheme
// when missing and dropping any port.
func FromURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(strings.TrimSpace(parsed.Hostname()))
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimRight(host, ".")
	if host == "" || !strings.Contains(host, ".") {
		return ""
	}
	if !IsValidFormat(host) {
		return ""
	}
	return host
}

// Hierarchy returns the domain's parent chain from most to least specific,
// stopping at the second-level domain. The TLD alone is never included.
//
//	Hierarchy("api.v1.support.acme.com") ->
//	  [api.v1.support.acme.com v1.support.acme.com support.acme.com acme.com]
func Hierarchy(domain string) []string {
	domain = Normalize(domain)
	if domain == "" {
		return nil
	}

	parts := strings.Split(domain, ".")
	hierarchy := make([]string, 0, len(parts)-1)
	for i := 0; i < len(parts)-1; i++ {
		hierarchy = append(hierarchy, strings.Join(parts[i:], "."))
	}
	return hierarchy
}

// ParentDomain returns the second-level domain of a subdomain, or "" when the
// input already is one.
func ParentDomain(domain string) string {
	domain = Normalize(domain)
	if domain == "" {
		return ""
	}
	parts := strings.Split(domain, ".")
	if len(parts) <= 2 {
		return ""
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// Variants returns every hierarchy level plus a "www."-prefixed form of each,
// deduplicated and order-preserving.
func Variants(domain string) []string {
	domain = Normalize(domain)
	if domain == "" {
		return nil
	}

	seen := make(map[string]struct{})
	variants := make([]string, 0)
	add := func(d string) {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			variants = append(variants, d)
		}
	}

	hierarchy := Hierarchy(domain)
	for _, level := range hierarchy {
		add(level)
	}
	for _, level := range hierarchy {
		add("www." + level)
	}
	return variants
}

// IsSubdomainOf reports whether sub is a strict subdomain of parent. A domain
// is not a subdomain of itself.
func IsSubdomainOf(sub, parent string) bool {
	sub = Normalize(sub)
	parent = Normalize(parent)
	if sub == "" || parent == "" || sub == parent {
		return false
	}
	return strings.HasSuffix(sub, "."+parent)
}

// MatchPattern matches a domain against a wildcard pattern. "*" expands to any
// character sequence including dots; the match is anchored to the full string.
func MatchPattern(domain, pattern string) bool {
	domain = Normalize(domain)
	if domain == "" || pattern == "" {
		return false
	}

	escaped := regexp.QuoteMeta(strings.ToLower(pattern))
	escaped = strings.ReplaceAll(escaped, `\*`, `.*`)
	re, err := regexp.Compile("^" + escaped + "$")
	if err != nil {
		return false
	}
	return re.MatchString(domain)
}

// Similarity scores how related two domains are, in [0,1]:
// 1.0 for equal domains, 0.8 when one is a subdomain of the other, otherwise
// the ratio of consecutive common labels (compared right to left) to the larger
// label count. A shared TLD alone scores 0.
func Similarity(a, b string) float64 {
	a = Normalize(a)
	b = Normalize(b)
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	if IsSubdomainOf(a, b) || IsSubdomainOf(b, a) {
		return 0.8
	}

	partsA := strings.Split(a, ".")
	partsB := strings.Split(b, ".")

	common := 0
	for i := 1; i <= min(len(partsA), len(partsB)); i++ {
		if partsA[len(partsA)-i] != partsB[len(partsB)-i] {
			break
		}
		common++
	}
	if common <= 1 {
		return 0.0
	}
	return float64(common) / float64(max(len(partsA), len(partsB)))
}

// FindBestMatch returns the candidate with the highest similarity to target,
// along with its score.
func FindBestMatch(target string, candidates []string) (string, float64) {
	target = Normalize(target)
	if target == "" || len(candidates) == 0 {
		return "", 0.0
	}

	bestMatch := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		candidate = Normalize(candidate)
		if candidate == "" {
			continue
		}
		if score := Similarity(target, candidate); score > bestScore {
			bestScore = score
			bestMatch = candidate
		}
	}
	return bestMatch, bestScore
}

// ResolveAlias maps a domain through an alias table to its canonical form.
// Alias keys containing "*" are treated as wildcard patterns. Unmatched domains
// resolve to themselves.
func ResolveAlias(domain string, aliases map[string]string) string {
	normalized := Normalize(domain)
	if normalized == "" {
		return domain
	}

	if canonical, ok := aliases[normalized]; ok {
		return canonical
	}
	for pattern, canonical := range aliases {
		if strings.Contains(pattern, "*") && MatchPattern(normalized, pattern) {
			return canonical
		}
	}
	return normalized
}
