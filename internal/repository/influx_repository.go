package repository

import (
	"context"
	"fmt"
	"time"

	"solar_estimator/internal/config"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
)

const auditMeasurement = "estimate_audit"

// InfluxAuditRepo writes the estimate audit trail to InfluxDB v3
type InfluxAuditRepo struct {
	db *config.InfluxDatabase
}

// NewInfluxAuditRepo creates an InfluxDB-backed audit writer
func NewInfluxAuditRepo(db *config.InfluxDatabase) *InfluxAuditRepo {
	return &InfluxAuditRepo{db: db}
}

// Write persists a batch of audit records as time-series points
func (r *InfluxAuditRepo) Write(ctx context.Context, records []AuditRecord) error {
	if r.db == nil || r.db.Client == nil {
		return fmt.Errorf("influx client not initialized")
	}

	if len(records) == 0 {
		return nil
	}

	points := make([]*influxdb3.Point, 0, len(records))
	for _, record := range records {
		points = append(points, r.recordToPoint(record))
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := r.db.Client.WritePoints(ctx, points); err != nil {
		return fmt.Errorf("WritePoints failed: %w (points: %d, db: %s)",
			err, len(points), r.db.Database)
	}

	return nil
}

// recordToPoint converts an audit record to an InfluxDB point
func (r *InfluxAuditRepo) recordToPoint(record AuditRecord) *influxdb3.Point {
	tags := map[string]string{
		"kind":              record.Kind,
		"irradiance_source": record.IrradianceSource,
	}
	if record.Region != "" {
		tags["region"] = record.Region
	}
	if record.ScoreCategory != "" {
		tags["score_category"] = record.ScoreCategory
	}

	fields := map[string]interface{}{
		"request_id":            record.RequestID,
		"irradiance_used":       record.IrradianceUsed,
		"system_size_kwp":       record.SystemSizeKwp,
		"annual_generation_kwh": record.AnnualGenerationKwh,
		"total_annual_benefit":  record.TotalAnnualBenefit,
		"payback_years":         record.PaybackYears,
		"score_total":           record.ScoreTotal,
	}

	return influxdb3.NewPoint(
		auditMeasurement,
		tags,
		fields,
		record.Timestamp,
	)
}
