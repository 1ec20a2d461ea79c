package scoring

import (
	"math"
	"testing"

	"solar_estimator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceResults mirrors the worked scoring example: a strong estimate
// that should land well into "hot" with full contact details
func referenceResults() *domain.CalculatorResults {
	return &domain.CalculatorResults{
		RecommendedSystemSize:     6,
		TotalAnnualBenefit:        745,
		PaybackPeriodYears:        domain.PaybackYears(6),
		NumberOfPanels:            15,
		EstimatedAnnualGeneration: 5000,
		SelfConsumptionRatio:      0.5,
	}
}

func TestCalculateLeadScore_HotWithFullContact(t *testing.T) {
	contact := domain.Contact{Email: "jo@example.com", Phone: "07700900123", Name: "Jo Bloggs"}

	score := CalculateLeadScore(referenceResults(), contact)

	assert.Equal(t, 95, score.Total)
	assert.Equal(t, domain.CategoryHot, score.Category)
}

func TestCalculateLeadScore_EmailOnlyDropsToWarm(t *testing.T) {
	contact := domain.Contact{Email: "jo@example.com"}

	score := CalculateLeadScore(referenceResults(), contact)

	assert.Equal(t, 60, score.Total, "removing phone and name loses exactly 35 points")
	assert.Equal(t, domain.CategoryWarm, score.Category)
}

func TestCalculateLeadScore_FactorOrderIsFixed(t *testing.T) {
	expectedOrder := []string{
		"System Size",
		"Payback Period",
		"Annual Savings",
		"Phone Provided",
		"Name Provided",
		"Self-Consumption",
		"Roof Area",
		"Usage Level",
	}

	score := CalculateLeadScore(referenceResults(), domain.Contact{Email: "a@b.c"})

	require.Len(t, score.Factors, 8)
	for i, factor := range score.Factors {
		assert.Equal(t, expectedOrder[i], factor.Name)
	}
}

func TestCalculateLeadScore_Reproducible(t *testing.T) {
	contact := domain.Contact{Email: "jo@example.com", Phone: "07700900123"}

	first := CalculateLeadScore(referenceResults(), contact)
	second := CalculateLeadScore(referenceResults(), contact)

	assert.Equal(t, first, second)
}

func TestCalculateLeadScore_FactorBreakdown(t *testing.T) {
	contact := domain.Contact{Email: "jo@example.com", Phone: "07700900123", Name: "Jo"}
	score := CalculateLeadScore(referenceResults(), contact)

	expected := map[string]int{
		"System Size":      20, // 6/6 of cap
		"Payback Period":   20, // 6 years <= 7
		"Annual Savings":   15, // 745/500 clamped
		"Phone Provided":   15,
		"Name Provided":    5,
		"Self-Consumption": 5, // 0.5 * 10
		"Roof Area":        10, // 15 panels >= 12
		"Usage Level":      5,  // 5000/4000 clamped
	}

	for _, factor := range score.Factors {
		assert.Equal(t, expected[factor.Name], factor.Points, factor.Name)
		assert.LessOrEqual(t, factor.Points, factor.MaxPoints, factor.Name)
	}
}

func TestCalculateLeadScore_PaybackInterpolation(t *testing.T) {
	tests := []struct {
		name    string
		payback domain.PaybackYears
		want    int
	}{
		{"well under threshold", 5, 20},
		{"at full-points boundary", 7, 20},
		{"midway", 11, 10},
		{"at zero-points boundary", 15, 0},
		{"beyond", 22, 0},
		{"never pays back", domain.PaybackYears(math.Inf(1)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := referenceResults()
			results.PaybackPeriodYears = tt.payback
			score := CalculateLeadScore(results, domain.Contact{Email: "a@b.c"})
			assert.Equal(t, tt.want, score.Factors[1].Points)
		})
	}
}

func TestCalculateLeadScore_BoundsHold(t *testing.T) {
	extremes := []*domain.CalculatorResults{
		{}, // all zero
		{
			RecommendedSystemSize:     50,
			TotalAnnualBenefit:        10000,
			PaybackPeriodYears:        domain.PaybackYears(1),
			NumberOfPanels:            100,
			EstimatedAnnualGeneration: 50000,
			SelfConsumptionRatio:      1.0,
		},
		{
			RecommendedSystemSize:     -5,
			TotalAnnualBenefit:        -300,
			PaybackPeriodYears:        domain.PaybackYears(math.Inf(1)),
			NumberOfPanels:            0,
			EstimatedAnnualGeneration: -100,
			SelfConsumptionRatio:      -0.2,
		},
	}

	contacts := []domain.Contact{
		{},
		{Email: "a@b.c"},
		{Email: "a@b.c", Phone: "1", Name: "x"},
	}

	for _, results := range extremes {
		for _, contact := range contacts {
			score := CalculateLeadScore(results, contact)
			assert.GreaterOrEqual(t, score.Total, 0)
			assert.LessOrEqual(t, score.Total, 100)
			assert.Len(t, score.Factors, 8)
		}
	}
}

func TestCalculateLeadScore_ZeroEstimateIsCool(t *testing.T) {
	score := CalculateLeadScore(&domain.CalculatorResults{
		PaybackPeriodYears: domain.PaybackYears(math.Inf(1)),
	}, domain.Contact{Email: "a@b.c"})

	assert.Equal(t, domain.CategoryCool, score.Category)
	assert.Less(t, score.Total, 40)
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, domain.CategoryHot, categorize(70))
	assert.Equal(t, domain.CategoryWarm, categorize(69))
	assert.Equal(t, domain.CategoryWarm, categorize(40))
	assert.Equal(t, domain.CategoryCool, categorize(39))
	assert.Equal(t, domain.CategoryCool, categorize(0))
}
