package enum

// ConfidenceLevel buckets a [0,1] classification confidence into a coarse label.
type ConfidenceLevel string

const (
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceVeryLow  ConfidenceLevel = "very_low"
	ConfidenceUnknown  ConfidenceLevel = "unknown"
)

func (c ConfidenceLevel) String() string {
	return string(c)
}

func ConfidenceLevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.9:
		return ConfidenceVeryHigh
	case confidence >= 0.7:
		return ConfidenceHigh
	case confidence >= 0.5:
		return ConfidenceMedium
	case confidence >= 0.3:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}
