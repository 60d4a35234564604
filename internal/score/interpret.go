package score

// Interpretation labels, ordered from highest bucket to lowest.
const (
	VeryHigh = "Very high similarity"
	High     = "High similarity"
	Moderate = "Moderate similarity"
	Low      = "Low similarity"
	VeryLow  = "Very low similarity"
)

// Interpret maps a similarity score to its human-readable bucket.
// Bounds are strict: a score sitting exactly on a boundary belongs to the
// lower bucket (0.8 reads as "High similarity", not "Very high").
func Interpret(score float64) string {
	switch {
	case score > 0.8:
		return VeryHigh
	case score > 0.6:
		return High
	case score > 0.4:
		return Moderate
	case score > 0.2:
		return Low
	default:
		return VeryLow
	}
}
