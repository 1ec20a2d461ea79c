package api

import (
	"errors"
	"net/http"

	"solar_estimator/internal/service"
	"solar_estimator/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LeadHandler handles lead capture and retrieval endpoints
type LeadHandler struct {
	svc *service.Service
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(svc *service.Service) *LeadHandler {
	return &LeadHandler{svc: svc}
}

// CreateLead handles POST /api/leads
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.HasLocation() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postcode or latitude/longitude is required"})
		return
	}

	lead, err := h.svc.CaptureLead(c.Request.Context(), req.Postcode, req.ToInputs(), req.Contact())
	if err != nil {
		if errors.Is(err, service.ErrPostcodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Postcode not found"})
			return
		}
		logger.Errorf("Lead capture failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"lead":   lead,
	})
}

// GetLead handles GET /api/leads/:id
func (h *LeadHandler) GetLead(c *gin.Context) {
	lead, err := h.svc.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrLeadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// ListLeads handles GET /api/leads
func (h *LeadHandler) ListLeads(c *gin.Context) {
	limit := getIntParam(c, "limit", 100)
	offset := getIntParam(c, "offset", 0)

	leads, err := h.svc.ListLeads(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(leads),
		"leads": leads,
	})
}
