package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		impact     int
		likelihood int
		wantScore  int
		wantLevel  RiskLevel
	}{
		{1, 1, 1, RiskVeryLow},
		{1, 3, 3, RiskVeryLow},
		{2, 2, 4, RiskLow},
		{2, 3, 6, RiskLow},
		{1, 5, 5, RiskLow},
		{3, 3, 9, RiskMedium},
		{3, 4, 12, RiskMedium},
		{4, 4, 16, RiskHigh},
		{4, 5, 20, RiskHigh},
		{5, 3, 15, RiskHigh},
		{5, 5, 25, RiskCritical},
	}

	for _, tt := range tests {
		score, level := ClassifyRisk(tt.impact, tt.likelihood)
		assert.Equal(t, tt.wantScore, score, "score for %dx%d", tt.impact, tt.likelihood)
		assert.Equal(t, tt.wantLevel, level, "level for %dx%d", tt.impact, tt.likelihood)
	}
}

func TestClassifyRiskScoreIsProduct(t *testing.T) {
	for impact := 1; impact <= 5; impact++ {
		for likelihood := 1; likelihood <= 5; likelihood++ {
			score, _ := ClassifyRisk(impact, likelihood)
			assert.Equal(t, impact*likelihood, score)
		}
	}
}

// Level thresholds sit at scores 7, 13 and 21 which are not products of two
// 1-5 integers; exercise the classification with a unit factor instead.
func TestClassifyRiskThresholds(t *testing.T) {
	cases := []struct {
		score int
		want  RiskLevel
	}{
		{3, RiskVeryLow},
		{4, RiskLow},
		{6, RiskLow},
		{7, RiskMedium},
		{12, RiskMedium},
		{13, RiskHigh},
		{20, RiskHigh},
		{21, RiskCritical},
		{25, RiskCritical},
	}
	for _, c := range cases {
		_, level := ClassifyRisk(c.score, 1)
		assert.Equal(t, c.want, level, "score %d", c.score)
	}
}

func TestClassifyRiskLevelMonotonic(t *testing.T) {
	rank := map[RiskLevel]int{
		RiskVeryLow:  0,
		RiskLow:      1,
		RiskMedium:   2,
		RiskHigh:     3,
		RiskCritical: 4,
	}

	prev := 0
	for score := 1; score <= 25; score++ {
		_, level := ClassifyRisk(score, 1)
		assert.GreaterOrEqual(t, rank[level], prev, "score %d", score)
		prev = rank[level]
	}
}
