package api

import (
	"solar_estimator/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Discrete shading categories: none, light, moderate, heavy, full
var allowedShadingFactors = []float64{1.0, 0.9, 0.75, 0.5, 0}

// EstimateRequest is the POST /api/estimate payload. Location is either a
// postcode or an explicit coordinate pair; range and enum checks happen
// here so the engine never sees out-of-domain enums.
type EstimateRequest struct {
	Postcode  string   `json:"postcode"`
	Latitude  *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`

	RoofOrientation string  `json:"roof_orientation" binding:"required,oneof=N NE E SE S SW W NW flat"`
	RoofPitch       float64 `json:"roof_pitch" binding:"gte=0,lte=90"`
	RoofArea        float64 `json:"roof_area" binding:"required,gte=5,lte=500"`
	ShadingFactor   float64 `json:"shading_factor" binding:"shading"`
	AnnualUsageKwh  float64 `json:"annual_electricity_usage" binding:"required,gte=500,lte=50000"`
	HomeOccupancy   string  `json:"home_occupancy" binding:"required,oneof=always daytime evening variable"`

	ElectricityUnitRate *float64 `json:"electricity_unit_rate" binding:"omitempty,gt=0"`  // pence/kWh
	ExportTariffRate    *float64 `json:"export_tariff_rate" binding:"omitempty,gte=0"`    // pence/kWh
}

// LeadRequest is the POST /api/leads payload: the property to estimate
// plus the contact to score. Only the email has a format requirement;
// phone and name just need to be present to earn their points.
type LeadRequest struct {
	EstimateRequest
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// HasLocation reports whether the request carries a usable location
func (r *EstimateRequest) HasLocation() bool {
	return r.Postcode != "" || (r.Latitude != nil && r.Longitude != nil)
}

// ToInputs converts the request to engine inputs
func (r *EstimateRequest) ToInputs() domain.CalculatorInputs {
	inputs := domain.CalculatorInputs{
		RoofOrientation:         r.RoofOrientation,
		RoofPitch:               r.RoofPitch,
		RoofArea:                r.RoofArea,
		ShadingFactor:           r.ShadingFactor,
		AnnualUsageKwh:          r.AnnualUsageKwh,
		HomeOccupancy:           r.HomeOccupancy,
		ElectricityRateOverride: r.ElectricityUnitRate,
		ExportRateOverride:      r.ExportTariffRate,
	}
	if r.Latitude != nil {
		inputs.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		inputs.Longitude = *r.Longitude
	}
	return inputs
}

// Contact extracts the contact record from a lead request
func (r *LeadRequest) Contact() domain.Contact {
	return domain.Contact{
		Email: r.Email,
		Phone: r.Phone,
		Name:  r.Name,
	}
}

// RegisterValidations installs the custom shading-factor check on gin's
// validator. Must run once before the router handles requests.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("shading", func(fl validator.FieldLevel) bool {
			value := fl.Field().Float()
			for _, allowed := range allowedShadingFactors {
				if value == allowed {
					return true
				}
			}
			return false
		})
	}
}
