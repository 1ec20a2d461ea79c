package calculator

import (
	"math"
	"testing"

	"solar_estimator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	tables := DefaultTables()
	require.NoError(t, tables.Validate())
	return NewEngine(tables)
}

func TestMaxSystemSize(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		roofArea float64
		want     float64
	}{
		{"typical roof", 30, 6.0},
		{"small roof", 10, 2.0},
		{"large roof", 100, 20.0},
		{"non-integer result", 33, 6.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.MaxSystemSize(tt.roofArea))
		})
	}
}

func TestMaxSystemSize_MonotonicInRoofArea(t *testing.T) {
	e := newTestEngine(t)

	prev := 0.0
	for area := 5.0; area <= 500; area += 7.3 {
		size := e.MaxSystemSize(area)
		assert.GreaterOrEqual(t, size, prev, "size must not decrease as roof area grows (area=%v)", area)
		assert.Equal(t, math.Round(size*10)/10, size, "size must be rounded to 1 decimal (area=%v)", area)
		prev = size
	}
}

func TestRecommendedSize(t *testing.T) {
	e := newTestEngine(t)

	// 0.9 * 3500 / (950 * 1 * 1 * 1 * 0.86) = 3.855 -> 3.9
	got := e.RecommendedSize(3500, 950, 1.0, 1.0, 1.0)
	assert.Equal(t, 3.9, got)
}

func TestRecommendedSize_DecreasingInEfficiencyFactors(t *testing.T) {
	e := newTestEngine(t)

	base := e.RecommendedSize(4000, 950, 1.0, 1.0, 1.0)

	assert.Greater(t, e.RecommendedSize(4000, 950, 0.55, 1.0, 1.0), base,
		"worse orientation must need a larger system")
	assert.Greater(t, e.RecommendedSize(4000, 950, 1.0, 0.85, 1.0), base,
		"worse pitch must need a larger system")
	assert.Greater(t, e.RecommendedSize(4000, 950, 1.0, 1.0, 0.5), base,
		"worse shading must need a larger system")
	assert.Greater(t, e.RecommendedSize(8000, 950, 1.0, 1.0, 1.0), base,
		"higher usage must need a larger system")
}

func TestRecommendedSize_ZeroShadingIsInfinite(t *testing.T) {
	e := newTestEngine(t)
	assert.True(t, math.IsInf(e.RecommendedSize(4000, 950, 1.0, 1.0, 0), 1))
}

func TestFinalSystemSize(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		recommended float64
		max         float64
		want        float64
	}{
		{"roof constraint wins", 8.0, 6.0, 6.0},
		{"recommended fits", 3.9, 6.0, 4.0},
		{"rounds half up", 3.75, 6.0, 4.0},
		{"rounds down", 3.6, 6.0, 3.5},
		{"exact half step", 4.5, 6.0, 4.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.FinalSystemSize(tt.recommended, tt.max))
		})
	}
}

func TestPanelCount(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 10, e.PanelCount(4.0))
	assert.Equal(t, 11, e.PanelCount(4.1), "partial panels round up")
	assert.Equal(t, 1, e.PanelCount(0.1))
	assert.Equal(t, 0, e.PanelCount(0))
}

func TestAnnualGeneration(t *testing.T) {
	e := newTestEngine(t)

	// 4.0 * 950 * 1 * 1 * 1 * 0.86 = 3268
	assert.Equal(t, 3268.0, e.AnnualGeneration(4.0, 950, 1.0, 1.0, 1.0))
	assert.Equal(t, 0.0, e.AnnualGeneration(4.0, 950, 1.0, 1.0, 0))
}

func TestOrientationFactor_Ordering(t *testing.T) {
	e := newTestEngine(t)

	south := e.OrientationFactor(domain.OrientationS)
	east := e.OrientationFactor(domain.OrientationE)
	north := e.OrientationFactor(domain.OrientationN)

	assert.Equal(t, 1.0, south, "south is the optimum")
	assert.Less(t, north, east)
	assert.Less(t, east, south)
}

func TestOrientationFactor_UnknownFallsBackToFlat(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, e.OrientationFactor(domain.OrientationFlat), e.OrientationFactor("SSW"))
}

func TestPitchFactor_AnchorsExact(t *testing.T) {
	e := newTestEngine(t)

	for _, anchor := range e.Tables().PitchAnchors {
		assert.Equal(t, anchor.Factor, e.PitchFactor(anchor.Degrees),
			"anchor at %v degrees must return its table value", anchor.Degrees)
	}
}

func TestPitchFactor_InterpolatesBetweenAnchors(t *testing.T) {
	e := newTestEngine(t)
	anchors := e.Tables().PitchAnchors

	for i := 1; i < len(anchors); i++ {
		lo, hi := anchors[i-1], anchors[i]
		mid := (lo.Degrees + hi.Degrees) / 2
		got := e.PitchFactor(mid)

		lower, upper := math.Min(lo.Factor, hi.Factor), math.Max(lo.Factor, hi.Factor)
		assert.Greater(t, got, lower, "pitch %v must interpolate strictly above the lower anchor", mid)
		assert.Less(t, got, upper, "pitch %v must interpolate strictly below the upper anchor", mid)
	}
}

func TestPitchFactor_ClampsOutOfRange(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, e.PitchFactor(0), e.PitchFactor(-10))
	assert.Equal(t, e.PitchFactor(90), e.PitchFactor(120))
}

func TestSelfConsumptionFactor(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 0.65, e.SelfConsumptionFactor(domain.OccupancyAlways))
	assert.Equal(t, 0.50, e.SelfConsumptionFactor(domain.OccupancyDaytime))
	assert.Equal(t, e.SelfConsumptionFactor(domain.OccupancyVariable), e.SelfConsumptionFactor("nights-only"),
		"unknown occupancy falls back to variable")
}

func TestFinancials(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, 400.33, e.AnnualSavings(1634, 24.5))
	assert.Equal(t, 245.10, e.ExportEarnings(1634, 15.0))
}

func TestSystemCost_Tiers(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		size float64
		want float64
	}{
		{"small tier", 3.0, 5400},
		{"small tier boundary", 4.0, 7200},
		{"medium tier", 6.0, 9300},
		{"medium tier boundary", 8.0, 12400},
		{"large tier", 10.0, 13500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.SystemCost(tt.size))
		})
	}
}

func TestPaybackPeriod(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, domain.PaybackYears(11.2), e.PaybackPeriod(7200, 645.43))

	assert.True(t, e.PaybackPeriod(7200, 0).IsInfinite(), "zero benefit never pays back")
	assert.True(t, e.PaybackPeriod(7200, -50).IsInfinite(), "negative benefit never pays back")
}

func TestROI25Years_DegradationReducesReturn(t *testing.T) {
	e := newTestEngine(t)

	generation := 3268.0
	ratio := 0.5
	cost := 7200.0

	annualBenefit := (generation*ratio*24.5 + generation*(1-ratio)*15.0) / 100
	naive := annualBenefit*25 - cost

	roi := e.ROI25Years(generation, ratio, 24.5, 15.0, cost)
	assert.Less(t, roi, naive, "degradation must strictly reduce the 25-year return")
	assert.Greater(t, roi, 0.0)
}

func TestCO2Savings(t *testing.T) {
	e := newTestEngine(t)

	annual := e.CO2SavedAnnually(3268)
	assert.Equal(t, math.Round(3268*0.193), annual)

	over25 := e.CO2Saved25Years(3268)
	assert.Less(t, over25, annual*25, "degradation reduces lifetime CO2 savings")
	assert.Greater(t, over25, annual*20)
}

func TestMonthlyBreakdown(t *testing.T) {
	e := newTestEngine(t)

	months := e.MonthlyBreakdown(3268, 0.5)
	require.Len(t, months, 12)

	var fractionSum, generationSum float64
	for _, f := range e.Tables().MonthlyFractions {
		fractionSum += f
	}
	assert.InDelta(t, 1.0, fractionSum, 0.01)

	for _, m := range months {
		assert.InDelta(t, m.GenerationKwh, m.SelfConsumedKwh+m.ExportedKwh, 0.001,
			"%s: split must sum to the month's generation", m.Month)
		generationSum += m.GenerationKwh
	}
	assert.InDelta(t, 3268, generationSum, 12*0.05, "months must sum to annual within rounding")

	june, december := months[5], months[11]
	assert.Greater(t, june.GenerationKwh, december.GenerationKwh, "summer must out-generate winter")
}

func TestEstimate_EndToEnd(t *testing.T) {
	e := newTestEngine(t)

	inputs := domain.CalculatorInputs{
		Latitude:        51.5,
		Longitude:       -0.14,
		RoofOrientation: domain.OrientationS,
		RoofPitch:       35,
		RoofArea:        30,
		ShadingFactor:   1.0,
		AnnualUsageKwh:  3500,
		HomeOccupancy:   domain.OccupancyDaytime,
	}

	results := e.Estimate(inputs, nil)

	assert.Equal(t, domain.IrradianceSourceFallback, results.Metadata.IrradianceSource)
	assert.Equal(t, e.Tables().Constants.UKAverageIrradiance, results.Metadata.IrradianceUsed)

	assert.Greater(t, results.RecommendedSystemSize, 2.0)
	assert.Less(t, results.RecommendedSystemSize, 8.0)

	assert.Greater(t, float64(results.PaybackPeriodYears), 5.0)
	assert.Less(t, float64(results.PaybackPeriodYears), 15.0)

	assert.Greater(t, results.ROI25Years, 0.0)

	assert.Equal(t, results.EstimatedAnnualGeneration, results.SelfConsumedKwh+results.ExportedKwh,
		"self-consumption split must not leak energy")
	assert.Len(t, results.MonthlyGeneration, 12)
	assert.Equal(t, 0.5, results.SelfConsumptionRatio)
	assert.False(t, results.Metadata.RatesOverridden)
}

func TestEstimate_MeasuredIrradiance(t *testing.T) {
	e := newTestEngine(t)

	inputs := domain.CalculatorInputs{
		RoofOrientation: domain.OrientationSE,
		RoofPitch:       30,
		RoofArea:        40,
		ShadingFactor:   0.9,
		AnnualUsageKwh:  4200,
		HomeOccupancy:   domain.OccupancyEvening,
	}

	results := e.Estimate(inputs, &domain.Irradiance{Annual: 1080, Source: domain.IrradianceSourceMeasured})

	assert.Equal(t, domain.IrradianceSourceMeasured, results.Metadata.IrradianceSource)
	assert.Equal(t, 1080.0, results.Metadata.IrradianceUsed)
}

func TestEstimate_RateOverrides(t *testing.T) {
	e := newTestEngine(t)

	unitRate := 30.0
	exportRate := 5.0
	inputs := domain.CalculatorInputs{
		RoofOrientation:         domain.OrientationS,
		RoofPitch:               35,
		RoofArea:                30,
		ShadingFactor:           1.0,
		AnnualUsageKwh:          3500,
		HomeOccupancy:           domain.OccupancyDaytime,
		ElectricityRateOverride: &unitRate,
		ExportRateOverride:      &exportRate,
	}

	results := e.Estimate(inputs, nil)

	assert.True(t, results.Metadata.RatesOverridden)
	assert.Equal(t, 30.0, results.Metadata.ElectricityRate)
	assert.Equal(t, 5.0, results.Metadata.ExportRate)
}

func TestEstimate_FullyShadedRoof(t *testing.T) {
	e := newTestEngine(t)

	inputs := domain.CalculatorInputs{
		RoofOrientation: domain.OrientationS,
		RoofPitch:       35,
		RoofArea:        30,
		ShadingFactor:   0,
		AnnualUsageKwh:  3500,
		HomeOccupancy:   domain.OccupancyDaytime,
	}

	results := e.Estimate(inputs, nil)

	assert.Equal(t, 0.0, results.EstimatedAnnualGeneration)
	assert.True(t, results.PaybackPeriodYears.IsInfinite(),
		"no generation means the system never pays back")
	assert.False(t, math.IsInf(results.RecommendedSystemSize, 1),
		"recommended size must stay finite for display")
	assert.Less(t, results.ROI25Years, 0.0)
}

func TestEstimate_OutOfRangePitchDoesNotPanic(t *testing.T) {
	e := newTestEngine(t)

	inputs := domain.CalculatorInputs{
		RoofOrientation: domain.OrientationS,
		RoofPitch:       240,
		RoofArea:        30,
		ShadingFactor:   1.0,
		AnnualUsageKwh:  3500,
		HomeOccupancy:   domain.OccupancyDaytime,
	}

	assert.NotPanics(t, func() {
		results := e.Estimate(inputs, nil)
		assert.Greater(t, results.EstimatedAnnualGeneration, 0.0)
	})
}
