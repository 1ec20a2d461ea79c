package calculator

import (
	"fmt"
	"os"
	"sort"

	"solar_estimator/internal/domain"

	"gopkg.in/yaml.v3"
)

// PitchAnchor is one point of the sparse pitch-factor curve
type PitchAnchor struct {
	Degrees float64 `yaml:"degrees"`
	Factor  float64 `yaml:"factor"`
}

// CostTier is a flat £/kWp rate applied up to a system-size threshold
type CostTier struct {
	MaxKwp     float64 `yaml:"max_kwp"` // 0 = no upper bound
	RatePerKwp float64 `yaml:"rate_per_kwp"`
}

// EnergyPricing holds the tariff figures used for financial projections,
// all in pence, tagged with where they came from
type EnergyPricing struct {
	ElectricityRatePence float64 `yaml:"electricity_rate_pence"` // per kWh
	ExportRatePence      float64 `yaml:"export_rate_pence"`      // per kWh
	StandingChargePence  float64 `yaml:"standing_charge_pence"`  // per day
	Source               string  `yaml:"source"`
	LastUpdated          string  `yaml:"last_updated"`
}

// Constants are the physical assumptions behind the model
type Constants struct {
	SystemLossFactor    float64 // inverter/wiring/soiling derate
	DegradationRate     float64 // annual panel output decline
	PanelWattage        float64 // W per panel
	AreaPerKwp          float64 // m² of roof per installed kWp
	GridCarbonKgPerKwh  float64 // kg CO2 displaced per kWh generated
	UKAverageIrradiance float64 // kWh/m²/year fallback
	UsageCoverageTarget float64 // fraction of annual usage sizing aims to cover
}

// Tables is the full read-only coefficient set. Built once at startup and
// never mutated; a reload must swap the whole struct.
type Tables struct {
	OrientationFactors map[string]float64
	PitchAnchors       []PitchAnchor // sorted by Degrees
	SelfConsumption    map[string]float64
	RegionalIrradiance map[string]float64
	DefaultRegion      string
	CostTiers          []CostTier // sorted by MaxKwp, last entry unbounded
	MonthlyFractions   [12]float64
	Pricing            EnergyPricing
	Constants          Constants
	LastUpdated        string
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DefaultTables returns the built-in UK coefficient set
func DefaultTables() *Tables {
	return &Tables{
		OrientationFactors: map[string]float64{
			domain.OrientationS:    1.0,
			domain.OrientationSE:   0.95,
			domain.OrientationSW:   0.95,
			domain.OrientationE:    0.85,
			domain.OrientationW:    0.85,
			domain.OrientationFlat: 0.85,
			domain.OrientationNE:   0.65,
			domain.OrientationNW:   0.65,
			domain.OrientationN:    0.55,
		},
		PitchAnchors: []PitchAnchor{
			{0, 0.85},
			{10, 0.90},
			{20, 0.96},
			{30, 0.99},
			{35, 1.00},
			{40, 0.99},
			{50, 0.96},
			{60, 0.91},
			{75, 0.82},
			{90, 0.70},
		},
		SelfConsumption: map[string]float64{
			domain.OccupancyAlways:   0.65,
			domain.OccupancyDaytime:  0.50,
			domain.OccupancyEvening:  0.35,
			domain.OccupancyVariable: 0.45,
		},
		RegionalIrradiance: map[string]float64{
			"London":                   1050,
			"South East":               1100,
			"South West":               1100,
			"East of England":          1000,
			"East Midlands":            975,
			"West Midlands":            950,
			"Wales":                    950,
			"North West":               900,
			"North East":               875,
			"Yorkshire and The Humber": 925,
			"Scotland":                 850,
			"Northern Ireland":         875,
			"default":                  950,
		},
		DefaultRegion: "default",
		CostTiers: []CostTier{
			{MaxKwp: 4, RatePerKwp: 1800},
			{MaxKwp: 8, RatePerKwp: 1550},
			{MaxKwp: 0, RatePerKwp: 1350},
		},
		MonthlyFractions: [12]float64{
			0.032, 0.052, 0.081, 0.100, 0.121, 0.128,
			0.126, 0.110, 0.092, 0.068, 0.048, 0.042,
		},
		Pricing: EnergyPricing{
			ElectricityRatePence: 24.50,
			ExportRatePence:      15.00,
			StandingChargePence:  60.10,
			Source:               "Ofgem price cap / SEG fixed tariff",
			LastUpdated:          "2025-07-01",
		},
		Constants: Constants{
			SystemLossFactor:    0.86,
			DegradationRate:     0.005,
			PanelWattage:        400,
			AreaPerKwp:          5.0,
			GridCarbonKgPerKwh:  0.193,
			UKAverageIrradiance: 950,
			UsageCoverageTarget: 0.9,
		},
		LastUpdated: "2025-07-01",
	}
}

// LoadTables builds the coefficient set, applying a YAML pricing override
// from pricingFile when it is non-empty. Returns a fresh struct either way
// so callers can swap it atomically.
func LoadTables(pricingFile string) (*Tables, error) {
	tables := DefaultTables()

	if pricingFile != "" {
		data, err := os.ReadFile(pricingFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read pricing file: %w", err)
		}

		var pricing EnergyPricing
		if err := yaml.Unmarshal(data, &pricing); err != nil {
			return nil, fmt.Errorf("failed to parse pricing file: %w", err)
		}
		if err := validatePricing(pricing); err != nil {
			return nil, fmt.Errorf("invalid pricing file %s: %w", pricingFile, err)
		}

		tables.Pricing = pricing
		if pricing.LastUpdated != "" {
			tables.LastUpdated = pricing.LastUpdated
		}
	}

	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return tables, nil
}

func validatePricing(p EnergyPricing) error {
	if p.ElectricityRatePence <= 0 {
		return fmt.Errorf("electricity_rate_pence must be positive, got %v", p.ElectricityRatePence)
	}
	if p.ExportRatePence < 0 {
		return fmt.Errorf("export_rate_pence must not be negative, got %v", p.ExportRatePence)
	}
	return nil
}

// Validate checks the structural invariants the engine relies on
func (t *Tables) Validate() error {
	if t.OrientationFactors[domain.OrientationS] != 1.0 {
		return fmt.Errorf("south orientation factor must be 1.0")
	}
	for o, f := range t.OrientationFactors {
		if f <= 0 || f > 1 {
			return fmt.Errorf("orientation factor for %s out of range (0,1]: %v", o, f)
		}
	}

	if len(t.PitchAnchors) < 2 {
		return fmt.Errorf("pitch table needs at least two anchors")
	}
	if !sort.SliceIsSorted(t.PitchAnchors, func(i, j int) bool {
		return t.PitchAnchors[i].Degrees < t.PitchAnchors[j].Degrees
	}) {
		return fmt.Errorf("pitch anchors must be sorted by angle")
	}
	if first := t.PitchAnchors[0].Degrees; first != 0 {
		return fmt.Errorf("pitch table must start at 0 degrees, got %v", first)
	}
	if last := t.PitchAnchors[len(t.PitchAnchors)-1].Degrees; last != 90 {
		return fmt.Errorf("pitch table must end at 90 degrees, got %v", last)
	}

	for occ, f := range t.SelfConsumption {
		if f <= 0 || f >= 1 {
			return fmt.Errorf("self-consumption factor for %s out of range (0,1): %v", occ, f)
		}
	}

	if _, ok := t.RegionalIrradiance[t.DefaultRegion]; !ok {
		return fmt.Errorf("regional irradiance table missing default entry %q", t.DefaultRegion)
	}

	if len(t.CostTiers) == 0 {
		return fmt.Errorf("cost tier table is empty")
	}
	if t.CostTiers[len(t.CostTiers)-1].MaxKwp != 0 {
		return fmt.Errorf("last cost tier must be unbounded")
	}

	var sum float64
	for _, f := range t.MonthlyFractions {
		sum += f
	}
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("monthly fractions must sum to 1.0, got %v", sum)
	}

	return validatePricing(t.Pricing)
}

// RegionalIrradianceFor resolves a region name, falling back to the
// default entry for unknown regions
func (t *Tables) RegionalIrradianceFor(region string) float64 {
	if v, ok := t.RegionalIrradiance[region]; ok {
		return v
	}
	return t.RegionalIrradiance[t.DefaultRegion]
}
