package domain

// ClassifyRisk computes the risk score and severity level from impact and
// likelihood (both on a 1-5 scale). Score is always impact × likelihood;
// callers are responsible for passing values in range.
//
// Must be re-run whenever impact or likelihood changes - a stored level that
// no longer matches its inputs is a data defect.
func ClassifyRisk(impact, likelihood int) (int, RiskLevel) {
	score := impact * likelihood

	switch {
	case score <= 3:
		return score, RiskVeryLow
	case score <= 6:
		return score, RiskLow
	case score <= 12:
		return score, RiskMedium
	case score <= 20:
		return score, RiskHigh
	default:
		return score, RiskCritical
	}
}
