package calculator

import (
	"math"
	"time"

	"solar_estimator/internal/domain"
)

const projectionYears = 25

// Engine runs solar estimates against an immutable coefficient set.
// Every method is a pure function of its arguments and the tables, so a
// single Engine is safe for any number of concurrent calls.
type Engine struct {
	tables *Tables
}

// NewEngine creates an engine over the given tables
func NewEngine(tables *Tables) *Engine {
	return &Engine{tables: tables}
}

// Tables exposes the coefficient set for display endpoints
func (e *Engine) Tables() *Tables {
	return e.tables
}

// MaxSystemSize returns the kWp the roof can physically host,
// rounded to 1 decimal
func (e *Engine) MaxSystemSize(roofArea float64) float64 {
	return round1(roofArea / e.tables.Constants.AreaPerKwp)
}

// RecommendedSize returns the kWp needed for effective generation to cover
// the usage coverage target (90%) of annual usage, rounded to 1 decimal.
// Worse orientation, pitch or shading pushes the size up to compensate.
// A zero efficiency factor makes coverage impossible and yields +Inf.
func (e *Engine) RecommendedSize(annualUsage, irradiance, orientationFactor, pitchFactor, shadingFactor float64) float64 {
	yieldPerKwp := irradiance * orientationFactor * pitchFactor * shadingFactor * e.tables.Constants.SystemLossFactor
	if yieldPerKwp <= 0 {
		return math.Inf(1)
	}
	return round1(e.tables.Constants.UsageCoverageTarget * annualUsage / yieldPerKwp)
}

// FinalSystemSize caps the recommended size at what the roof can host,
// then snaps to the nearest 0.5 kWp. The roof constraint always wins.
func (e *Engine) FinalSystemSize(recommended, max float64) float64 {
	size := math.Min(recommended, max)
	return math.Round(size*2) / 2
}

// PanelCount returns the number of panels needed for a system size
func (e *Engine) PanelCount(systemSizeKwp float64) int {
	return int(math.Ceil(systemSizeKwp * 1000 / e.tables.Constants.PanelWattage))
}

// AnnualGeneration estimates first-year output in kWh
func (e *Engine) AnnualGeneration(systemSizeKwp, irradiance, orientationFactor, pitchFactor, shadingFactor float64) float64 {
	return math.Round(systemSizeKwp * irradiance * orientationFactor * pitchFactor * shadingFactor * e.tables.Constants.SystemLossFactor)
}

// OrientationFactor looks up the orientation multiplier. Unknown values
// fall back to the flat-roof entry rather than failing.
func (e *Engine) OrientationFactor(orientation string) float64 {
	if f, ok := e.tables.OrientationFactors[orientation]; ok {
		return f
	}
	return e.tables.OrientationFactors[domain.OrientationFlat]
}

// PitchFactor clamps pitch to [0,90] and linearly interpolates between the
// two nearest anchor points of the pitch table
func (e *Engine) PitchFactor(pitch float64) float64 {
	anchors := e.tables.PitchAnchors

	if pitch <= anchors[0].Degrees {
		return anchors[0].Factor
	}
	if pitch >= anchors[len(anchors)-1].Degrees {
		return anchors[len(anchors)-1].Factor
	}

	for i := 1; i < len(anchors); i++ {
		if pitch > anchors[i].Degrees {
			continue
		}
		lo, hi := anchors[i-1], anchors[i]
		if pitch == hi.Degrees {
			return hi.Factor
		}
		t := (pitch - lo.Degrees) / (hi.Degrees - lo.Degrees)
		return lo.Factor + t*(hi.Factor-lo.Factor)
	}

	return anchors[len(anchors)-1].Factor
}

// SelfConsumptionFactor returns the fraction of generation consumed
// on-site for an occupancy pattern. Unknown values fall back to the
// variable-occupancy entry.
func (e *Engine) SelfConsumptionFactor(occupancy string) float64 {
	if f, ok := e.tables.SelfConsumption[occupancy]; ok {
		return f
	}
	return e.tables.SelfConsumption[domain.OccupancyVariable]
}

// AnnualSavings converts self-consumed generation to £ at the unit rate
func (e *Engine) AnnualSavings(selfConsumedKwh, ratePence float64) float64 {
	return math.Round(selfConsumedKwh*ratePence) / 100
}

// ExportEarnings converts exported generation to £ at the export rate
func (e *Engine) ExportEarnings(exportedKwh, ratePence float64) float64 {
	return math.Round(exportedKwh*ratePence) / 100
}

// SystemCost prices the final system size against the tier table
func (e *Engine) SystemCost(systemSizeKwp float64) float64 {
	tiers := e.tables.CostTiers
	rate := tiers[len(tiers)-1].RatePerKwp
	for _, tier := range tiers {
		if tier.MaxKwp > 0 && systemSizeKwp <= tier.MaxKwp {
			rate = tier.RatePerKwp
			break
		}
	}
	return math.Round(systemSizeKwp * rate)
}

// PaybackPeriod returns cost/benefit in years, rounded to 1 decimal.
// A non-positive benefit never pays back and yields +Inf, not an error.
func (e *Engine) PaybackPeriod(systemCost, totalAnnualBenefit float64) domain.PaybackYears {
	if totalAnnualBenefit <= 0 {
		return domain.PaybackYears(math.Inf(1))
	}
	return domain.PaybackYears(round1(systemCost / totalAnnualBenefit))
}

// ROI25Years simulates 25 discrete years of degrading output at constant
// rates and returns the net £ return over the system cost. The
// self-consumption ratio is held constant across years; only panel output
// decays.
func (e *Engine) ROI25Years(annualGenerationKwh, selfConsumptionRatio, electricityRatePence, exportRatePence, systemCost float64) float64 {
	var total float64
	for year := 1; year <= projectionYears; year++ {
		generation := e.degradedGeneration(annualGenerationKwh, year)
		selfConsumed := generation * selfConsumptionRatio
		exported := generation - selfConsumed
		total += (selfConsumed*electricityRatePence + exported*exportRatePence) / 100
	}
	return math.Round(total - systemCost)
}

// CO2SavedAnnually converts first-year generation to kg of grid CO2 displaced
func (e *Engine) CO2SavedAnnually(annualGenerationKwh float64) float64 {
	return math.Round(annualGenerationKwh * e.tables.Constants.GridCarbonKgPerKwh)
}

// CO2Saved25Years applies the degradation curve to generation over 25
// years before converting to kg
func (e *Engine) CO2Saved25Years(annualGenerationKwh float64) float64 {
	var totalGeneration float64
	for year := 1; year <= projectionYears; year++ {
		totalGeneration += e.degradedGeneration(annualGenerationKwh, year)
	}
	return math.Round(totalGeneration * e.tables.Constants.GridCarbonKgPerKwh)
}

// degradedGeneration is year-1-indexed: year 1 has no decay
func (e *Engine) degradedGeneration(annualGenerationKwh float64, year int) float64 {
	return annualGenerationKwh * math.Pow(1-e.tables.Constants.DegradationRate, float64(year-1))
}

// MonthlyBreakdown splits annual generation across the fixed monthly
// distribution. Each month reuses the single annual self-consumption
// ratio; the split is deliberately not modeled per season, so downstream
// financials stay consistent with the annual figures.
func (e *Engine) MonthlyBreakdown(annualGenerationKwh, selfConsumptionRatio float64) []domain.MonthlyGeneration {
	months := make([]domain.MonthlyGeneration, 12)
	for i, fraction := range e.tables.MonthlyFractions {
		generation := round1(annualGenerationKwh * fraction)
		selfConsumed := round1(generation * selfConsumptionRatio)
		months[i] = domain.MonthlyGeneration{
			Month:           monthNames[i],
			GenerationKwh:   generation,
			SelfConsumedKwh: selfConsumed,
			ExportedKwh:     round1(generation - selfConsumed),
		}
	}
	return months
}

// Estimate is the single entry point: it runs the whole pipeline in
// dependency order and records in metadata exactly which irradiance value
// and rates were used. It is total over its documented domain; pitch is
// clamped and unknown enum values hit table defaults, never a crash.
func (e *Engine) Estimate(inputs domain.CalculatorInputs, irradiance *domain.Irradiance) *domain.CalculatorResults {
	orientationFactor := e.OrientationFactor(inputs.RoofOrientation)
	pitchFactor := e.PitchFactor(clamp(inputs.RoofPitch, 0, 90))

	irradianceUsed := e.tables.Constants.UKAverageIrradiance
	irradianceSource := domain.IrradianceSourceFallback
	if irradiance != nil {
		irradianceUsed = irradiance.Annual
		irradianceSource = irradiance.Source
		if irradianceSource == "" {
			irradianceSource = domain.IrradianceSourceMeasured
		}
	}

	electricityRate := e.tables.Pricing.ElectricityRatePence
	exportRate := e.tables.Pricing.ExportRatePence
	ratesOverridden := false
	if inputs.ElectricityRateOverride != nil {
		electricityRate = *inputs.ElectricityRateOverride
		ratesOverridden = true
	}
	if inputs.ExportRateOverride != nil {
		exportRate = *inputs.ExportRateOverride
		ratesOverridden = true
	}

	maxSize := e.MaxSystemSize(inputs.RoofArea)
	recommended := e.RecommendedSize(inputs.AnnualUsageKwh, irradianceUsed, orientationFactor, pitchFactor, inputs.ShadingFactor)
	if math.IsInf(recommended, 1) {
		// Fully shaded roof: coverage is unreachable, size to the roof
		recommended = maxSize
	}
	finalSize := e.FinalSystemSize(recommended, maxSize)
	panels := e.PanelCount(finalSize)
	generation := e.AnnualGeneration(finalSize, irradianceUsed, orientationFactor, pitchFactor, inputs.ShadingFactor)

	ratio := e.SelfConsumptionFactor(inputs.HomeOccupancy)
	selfConsumed := math.Round(generation * ratio)
	exported := generation - selfConsumed

	savings := e.AnnualSavings(selfConsumed, electricityRate)
	exportEarnings := e.ExportEarnings(exported, exportRate)
	totalBenefit := round2(savings + exportEarnings)

	systemCost := e.SystemCost(finalSize)
	payback := e.PaybackPeriod(systemCost, totalBenefit)
	roi := e.ROI25Years(generation, ratio, electricityRate, exportRate, systemCost)

	return &domain.CalculatorResults{
		MaxSystemSizeKwp:          maxSize,
		RecommendedSystemSize:     recommended,
		FinalSystemSizeKwp:        finalSize,
		NumberOfPanels:            panels,
		EstimatedAnnualGeneration: generation,
		MonthlyGeneration:         e.MonthlyBreakdown(generation, ratio),
		SelfConsumptionRatio:      ratio,
		SelfConsumedKwh:           selfConsumed,
		ExportedKwh:               exported,
		AnnualSavings:             savings,
		AnnualExportEarnings:      exportEarnings,
		TotalAnnualBenefit:        totalBenefit,
		EstimatedSystemCost:       systemCost,
		PaybackPeriodYears:        payback,
		ROI25Years:                roi,
		CO2SavedAnnuallyKg:        e.CO2SavedAnnually(generation),
		CO2Saved25YearsKg:         e.CO2Saved25Years(generation),
		Metadata: domain.ResultMetadata{
			IrradianceUsed:    irradianceUsed,
			IrradianceSource:  irradianceSource,
			ElectricityRate:   electricityRate,
			ExportRate:        exportRate,
			RatesOverridden:   ratesOverridden,
			PricingSource:     e.tables.Pricing.Source,
			TablesLastUpdated: e.tables.LastUpdated,
			CalculatedAt:      time.Now().UTC(),
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
