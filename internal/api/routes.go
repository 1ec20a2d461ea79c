package api

import (
	"solar_estimator/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, svc *service.Service) {
	h := NewHandler(svc)
	leadHandler := NewLeadHandler(svc)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/stats", h.GetStats)
		api.GET("/tables", h.GetTables)

		api.POST("/estimate", h.Estimate)

		leads := api.Group("/leads")
		{
			leads.POST("", leadHandler.CreateLead)
			leads.GET("", leadHandler.ListLeads)
			leads.GET("/:id", leadHandler.GetLead)
		}
	}
}
