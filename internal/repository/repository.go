package repository

import (
	"context"
	"errors"
	"time"

	"solar_estimator/internal/domain"
)

// ErrLeadNotFound is returned when a lead ID does not exist
var ErrLeadNotFound = errors.New("lead not found")

// LeadRepository stores captured leads
type LeadRepository interface {
	Save(ctx context.Context, lead *domain.Lead) error
	Get(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Lead, error)
	Count(ctx context.Context) (int, error)
}

// AuditRecord is one time-series point in the estimate audit trail.
// Every estimate and every scored lead produces one.
type AuditRecord struct {
	Timestamp           time.Time
	Kind                string // "estimate" or "lead"
	RequestID           string
	Region              string
	IrradianceSource    string
	IrradianceUsed      float64
	SystemSizeKwp       float64
	AnnualGenerationKwh float64
	TotalAnnualBenefit  float64
	PaybackYears        float64 // 0 when the system never pays back
	ScoreTotal          int     // lead records only
	ScoreCategory       string  // lead records only
}

// AuditWriter persists batches of audit records
type AuditWriter interface {
	Write(ctx context.Context, records []AuditRecord) error
}
