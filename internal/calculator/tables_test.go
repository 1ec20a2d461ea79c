package calculator

import (
	"os"
	"path/filepath"
	"testing"

	"solar_estimator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables_Valid(t *testing.T) {
	require.NoError(t, DefaultTables().Validate())
}

func TestDefaultTables_OrientationCoverage(t *testing.T) {
	tables := DefaultTables()

	orientations := []string{
		domain.OrientationN, domain.OrientationNE, domain.OrientationE,
		domain.OrientationSE, domain.OrientationS, domain.OrientationSW,
		domain.OrientationW, domain.OrientationNW, domain.OrientationFlat,
	}

	for _, o := range orientations {
		factor, ok := tables.OrientationFactors[o]
		require.True(t, ok, "missing orientation %s", o)
		assert.Greater(t, factor, 0.0)
		assert.LessOrEqual(t, factor, 1.0)
	}
}

func TestRegionalIrradianceFor(t *testing.T) {
	tables := DefaultTables()

	assert.Equal(t, 850.0, tables.RegionalIrradianceFor("Scotland"))
	assert.Equal(t, tables.RegionalIrradiance["default"], tables.RegionalIrradianceFor("Atlantis"),
		"unknown regions must hit the default entry, not fail")
}

func TestLoadTables_NoOverride(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTables().Pricing, tables.Pricing)
}

func TestLoadTables_PricingOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	content := []byte(`
electricity_rate_pence: 27.2
export_rate_pence: 12.5
standing_charge_pence: 55.0
source: "test tariff"
last_updated: "2026-01-01"
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	assert.Equal(t, 27.2, tables.Pricing.ElectricityRatePence)
	assert.Equal(t, 12.5, tables.Pricing.ExportRatePence)
	assert.Equal(t, "test tariff", tables.Pricing.Source)
	assert.Equal(t, "2026-01-01", tables.LastUpdated, "override moves the version tag")
}

func TestLoadTables_RejectsBadPricing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("electricity_rate_pence: -4\n"), 0644))

	_, err := LoadTables(path)
	assert.Error(t, err)
}

func TestLoadTables_MissingFile(t *testing.T) {
	_, err := LoadTables("/nonexistent/pricing.yaml")
	assert.Error(t, err)
}

func TestValidate_CatchesBrokenTables(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(*Tables)
	}{
		{"south not optimal", func(tb *Tables) { tb.OrientationFactors[domain.OrientationS] = 0.9 }},
		{"unsorted pitch anchors", func(tb *Tables) {
			tb.PitchAnchors[2], tb.PitchAnchors[3] = tb.PitchAnchors[3], tb.PitchAnchors[2]
		}},
		{"missing default region", func(tb *Tables) { delete(tb.RegionalIrradiance, "default") }},
		{"bounded last cost tier", func(tb *Tables) { tb.CostTiers[len(tb.CostTiers)-1].MaxKwp = 12 }},
		{"self-consumption out of range", func(tb *Tables) { tb.SelfConsumption[domain.OccupancyAlways] = 1.2 }},
		{"monthly fractions off", func(tb *Tables) { tb.MonthlyFractions[0] = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := DefaultTables()
			tt.mutate(tables)
			assert.Error(t, tables.Validate())
		})
	}
}
