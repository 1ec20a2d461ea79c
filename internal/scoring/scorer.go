package scoring

import (
	"math"

	"solar_estimator/internal/domain"
)

// Factor point caps. The caps sum to 100, so the clamped total can never
// exceed 100 by construction.
const (
	capSystemSize      = 20
	capPayback         = 20
	capAnnualSavings   = 15
	capPhoneProvided   = 15
	capNameProvided    = 5
	capSelfConsumption = 10
	capRoofArea        = 10
	capUsageLevel      = 5
)

// Category thresholds, fixed by contract
const (
	hotThreshold  = 70
	warmThreshold = 40
)

// Reference values the proportional factors scale against
const (
	referenceSystemSizeKwp = 6.0
	referenceBenefit       = 500.0
	referencePanelCount    = 12.0
	referenceGenerationKwh = 4000.0
	paybackFullPointsYears = 7.0
	paybackZeroPointsYears = 15.0
)

// CalculateLeadScore maps an estimate plus contact completeness to a
// 0-100 score with a hot/warm/cool category. The factor list is always
// the same eight entries in the same order, and the whole function is
// deterministic, so a breakdown can be re-derived for display at any time.
func CalculateLeadScore(results *domain.CalculatorResults, contact domain.Contact) domain.LeadScore {
	factors := []domain.ScoreFactor{
		{
			Name:      "System Size",
			RawValue:  results.RecommendedSystemSize,
			Points:    scaledPoints(results.RecommendedSystemSize, referenceSystemSizeKwp, capSystemSize),
			MaxPoints: capSystemSize,
		},
		{
			Name:      "Payback Period",
			RawValue:  paybackRaw(results.PaybackPeriodYears),
			Points:    paybackPoints(results.PaybackPeriodYears),
			MaxPoints: capPayback,
		},
		{
			Name:      "Annual Savings",
			RawValue:  results.TotalAnnualBenefit,
			Points:    scaledPoints(results.TotalAnnualBenefit, referenceBenefit, capAnnualSavings),
			MaxPoints: capAnnualSavings,
		},
		{
			Name:      "Phone Provided",
			RawValue:  boolRaw(contact.Phone != ""),
			Points:    binaryPoints(contact.Phone != "", capPhoneProvided),
			MaxPoints: capPhoneProvided,
		},
		{
			Name:      "Name Provided",
			RawValue:  boolRaw(contact.Name != ""),
			Points:    binaryPoints(contact.Name != "", capNameProvided),
			MaxPoints: capNameProvided,
		},
		{
			Name:      "Self-Consumption",
			RawValue:  results.SelfConsumptionRatio,
			Points:    clampPoints(int(math.Round(results.SelfConsumptionRatio*capSelfConsumption)), capSelfConsumption),
			MaxPoints: capSelfConsumption,
		},
		{
			Name:      "Roof Area",
			RawValue:  float64(results.NumberOfPanels),
			Points:    scaledPoints(float64(results.NumberOfPanels), referencePanelCount, capRoofArea),
			MaxPoints: capRoofArea,
		},
		{
			Name:      "Usage Level",
			RawValue:  results.EstimatedAnnualGeneration,
			Points:    scaledPoints(results.EstimatedAnnualGeneration, referenceGenerationKwh, capUsageLevel),
			MaxPoints: capUsageLevel,
		},
	}

	total := 0
	for _, f := range factors {
		total += f.Points
	}

	return domain.LeadScore{
		Total:    total,
		Category: categorize(total),
		Factors:  factors,
	}
}

func categorize(total int) string {
	switch {
	case total >= hotThreshold:
		return domain.CategoryHot
	case total >= warmThreshold:
		return domain.CategoryWarm
	default:
		return domain.CategoryCool
	}
}

// scaledPoints awards cap points at the reference value, proportionally
// below it, clamped to [0, cap]
func scaledPoints(value, reference float64, cap int) int {
	return clampPoints(int(math.Round(value/reference*float64(cap))), cap)
}

// paybackPoints awards full points at 7 years or better, none at 15 or
// worse, linear in between. Infinite payback scores nothing.
func paybackPoints(payback domain.PaybackYears) int {
	p := float64(payback)
	if payback.IsInfinite() || p >= paybackZeroPointsYears {
		return 0
	}
	if p <= paybackFullPointsYears {
		return capPayback
	}
	points := (paybackZeroPointsYears - p) / (paybackZeroPointsYears - paybackFullPointsYears) * capPayback
	return clampPoints(int(math.Round(points)), capPayback)
}

func binaryPoints(present bool, cap int) int {
	if present {
		return cap
	}
	return 0
}

func clampPoints(points, cap int) int {
	if points < 0 {
		return 0
	}
	if points > cap {
		return cap
	}
	return points
}

func boolRaw(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// paybackRaw keeps the factor breakdown JSON-safe: an infinite payback is
// recorded as -1 since JSON cannot carry +Inf
func paybackRaw(payback domain.PaybackYears) float64 {
	if payback.IsInfinite() {
		return -1
	}
	return float64(payback)
}
