package api

import (
	"errors"
	"net/http"
	"strconv"

	"solar_estimator/internal/service"
	"solar_estimator/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler handles estimate and config endpoints
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Estimate handles POST /api/estimate
func (h *Handler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.HasLocation() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postcode or latitude/longitude is required"})
		return
	}

	results, geo, err := h.svc.Estimate(c.Request.Context(), req.Postcode, req.ToInputs())
	if err != nil {
		if errors.Is(err, service.ErrPostcodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Postcode not found"})
			return
		}
		logger.Errorf("Estimate failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{
		"status":  "success",
		"results": results,
	}
	if geo != nil {
		response["location"] = geo
	}

	c.JSON(http.StatusOK, response)
}

// GetTables handles GET /api/tables: the active coefficient set, so any
// displayed number can be traced to its version
func (h *Handler) GetTables(c *gin.Context) {
	tables := h.svc.Tables()

	c.JSON(http.StatusOK, gin.H{
		"last_updated":        tables.LastUpdated,
		"orientation_factors": tables.OrientationFactors,
		"pitch_anchors":       tables.PitchAnchors,
		"self_consumption":    tables.SelfConsumption,
		"regional_irradiance": tables.RegionalIrradiance,
		"cost_tiers":          tables.CostTiers,
		"monthly_fractions":   tables.MonthlyFractions,
		"pricing":             tables.Pricing,
	})
}

// GetStats handles GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats(c.Request.Context()))
}

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Helper functions
func getIntParam(c *gin.Context, key string, defaultValue int) int {
	if value := c.Query(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}
