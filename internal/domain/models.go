package domain

import (
	"math"
	"strconv"
	"time"
)

// Roof orientation categories
const (
	OrientationN    = "N"
	OrientationNE   = "NE"
	OrientationE    = "E"
	OrientationSE   = "SE"
	OrientationS    = "S"
	OrientationSW   = "SW"
	OrientationW    = "W"
	OrientationNW   = "NW"
	OrientationFlat = "flat"
)

// Home occupancy categories
const (
	OccupancyAlways   = "always"
	OccupancyDaytime  = "daytime"
	OccupancyEvening  = "evening"
	OccupancyVariable = "variable"
)

// Irradiance source tags recorded in result metadata
const (
	IrradianceSourceMeasured = "measured"
	IrradianceSourceRegional = "regional-average"
	IrradianceSourceFallback = "uk-average"
)

// CalculatorInputs holds the property details a calculation runs on.
// Enumerated fields are validated at the API boundary, not here.
type CalculatorInputs struct {
	Latitude                float64  `json:"latitude"`
	Longitude               float64  `json:"longitude"`
	RoofOrientation         string   `json:"roof_orientation"`
	RoofPitch               float64  `json:"roof_pitch"`
	RoofArea                float64  `json:"roof_area"`
	ShadingFactor           float64  `json:"shading_factor"`
	AnnualUsageKwh          float64  `json:"annual_electricity_usage"`
	HomeOccupancy           string   `json:"home_occupancy"`
	ElectricityRateOverride *float64 `json:"electricity_unit_rate,omitempty"` // pence/kWh
	ExportRateOverride      *float64 `json:"export_tariff_rate,omitempty"`    // pence/kWh
}

// Irradiance is an annual yield figure plus where it came from
type Irradiance struct {
	Annual  float64   `json:"annual"` // kWh/m²/year
	Monthly []float64 `json:"monthly,omitempty"`
	Source  string    `json:"source"`
}

// MonthlyGeneration is one month's share of annual generation
type MonthlyGeneration struct {
	Month           string  `json:"month"`
	GenerationKwh   float64 `json:"generation_kwh"`
	SelfConsumedKwh float64 `json:"self_consumed_kwh"`
	ExportedKwh     float64 `json:"exported_kwh"`
}

// PaybackYears is a payback period that may be infinite (benefit <= 0).
// Infinity marshals as null since JSON has no representation for it.
type PaybackYears float64

// IsInfinite reports whether the system never pays back
func (p PaybackYears) IsInfinite() bool {
	return math.IsInf(float64(p), 1)
}

// MarshalJSON renders infinite payback as null
func (p PaybackYears) MarshalJSON() ([]byte, error) {
	if p.IsInfinite() {
		return []byte("null"), nil
	}
	return []byte(formatFloat(float64(p))), nil
}

// ResultMetadata records which inputs were actually used so every
// displayed number can be traced back
type ResultMetadata struct {
	IrradianceUsed    float64   `json:"irradiance_used"` // kWh/m²/year
	IrradianceSource  string    `json:"irradiance_source"`
	ElectricityRate   float64   `json:"electricity_rate"` // pence/kWh
	ExportRate        float64   `json:"export_rate"`      // pence/kWh
	RatesOverridden   bool      `json:"rates_overridden"`
	PricingSource     string    `json:"pricing_source"`
	TablesLastUpdated string    `json:"tables_last_updated"`
	CalculatedAt      time.Time `json:"calculated_at"`
}

// CalculatorResults is the full output of one estimation run
type CalculatorResults struct {
	MaxSystemSizeKwp          float64             `json:"max_system_size_kwp"`
	RecommendedSystemSize     float64             `json:"recommended_system_size_kwp"`
	FinalSystemSizeKwp        float64             `json:"final_system_size_kwp"`
	NumberOfPanels            int                 `json:"number_of_panels"`
	EstimatedAnnualGeneration float64             `json:"estimated_annual_generation_kwh"`
	MonthlyGeneration         []MonthlyGeneration `json:"monthly_generation"`
	SelfConsumptionRatio      float64             `json:"self_consumption_ratio"`
	SelfConsumedKwh           float64             `json:"self_consumed_kwh"`
	ExportedKwh               float64             `json:"exported_kwh"`
	AnnualSavings             float64             `json:"annual_savings"`         // £
	AnnualExportEarnings      float64             `json:"annual_export_earnings"` // £
	TotalAnnualBenefit        float64             `json:"total_annual_benefit"`   // £
	EstimatedSystemCost       float64             `json:"estimated_system_cost"`  // £
	PaybackPeriodYears        PaybackYears        `json:"payback_period_years"`
	ROI25Years                float64             `json:"roi_25_years"` // £
	CO2SavedAnnuallyKg        float64             `json:"co2_saved_annually_kg"`
	CO2Saved25YearsKg         float64             `json:"co2_saved_25_years_kg"`
	Metadata                  ResultMetadata      `json:"metadata"`
}

// Contact is the record captured alongside a calculation. Only presence
// of phone/name matters to scoring; no format validation happens here.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ScoreFactor is one named contribution to a lead score
type ScoreFactor struct {
	Name      string  `json:"name"`
	RawValue  float64 `json:"raw_value"`
	Points    int     `json:"points"`
	MaxPoints int     `json:"max_points"`
}

// Lead score categories
const (
	CategoryHot  = "hot"
	CategoryWarm = "warm"
	CategoryCool = "cool"
)

// LeadScore is the scorer output: a 0-100 total, a category and the
// per-factor breakdown in fixed order
type LeadScore struct {
	Total    int           `json:"total"`
	Category string        `json:"category"`
	Factors  []ScoreFactor `json:"factors"`
}

// Lead is a captured contact plus its estimate and score
type Lead struct {
	ID        string             `json:"id"`
	Contact   Contact            `json:"contact"`
	Postcode  string             `json:"postcode,omitempty"`
	Inputs    CalculatorInputs   `json:"inputs"`
	Results   *CalculatorResults `json:"results"`
	Score     *LeadScore         `json:"score"`
	CreatedAt time.Time          `json:"created_at"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// GeocodeResult is what the postcode lookup collaborator returns
type GeocodeResult struct {
	Postcode  string  `json:"postcode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Region    string  `json:"region"`
}
