package enum

// IdentificationMethod tags how a client identification result was produced.
type IdentificationMethod string

const (
	MethodExactMatch      IdentificationMethod = "exact_match"
	MethodAliasResolution IdentificationMethod = "alias_resolution"
	MethodPatternMatch    IdentificationMethod = "pattern_match"
	MethodHierarchyMatch  IdentificationMethod = "hierarchy_match"
	MethodSimilarityMatch IdentificationMethod = "similarity_match"
	MethodNoMatch         IdentificationMethod = "no_match"
	MethodInvalidDomain   IdentificationMethod = "invalid_domain"
	MethodInvalidEmail    IdentificationMethod = "invalid_email"
)

func (m IdentificationMethod) String() string {
	return string(m)
}

// Fuzzy marks a matcher-produced method as coming from the fuzzy strategy chain.
func (m IdentificationMethod) Fuzzy() IdentificationMethod {
	return IdentificationMethod("fuzzy_" + string(m))
}
