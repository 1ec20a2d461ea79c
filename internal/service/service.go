package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"solar_estimator/internal/cache"
	"solar_estimator/internal/calculator"
	"solar_estimator/internal/config"
	"solar_estimator/internal/domain"
	"solar_estimator/internal/geocode"
	"solar_estimator/internal/irradiance"
	"solar_estimator/internal/repository"
	"solar_estimator/internal/scoring"
	"solar_estimator/pkg/logger"

	"github.com/google/uuid"
)

// ErrPostcodeNotFound is re-exported so handlers don't import geocode
var ErrPostcodeNotFound = geocode.ErrPostcodeNotFound

// ErrLeadNotFound is re-exported so handlers don't import repository
var ErrLeadNotFound = repository.ErrLeadNotFound

// Service wires the estimation engine and lead scorer to their
// collaborators: geocoding, irradiance retrieval, lead storage and the
// audit trail
type Service struct {
	cfg      *config.Config
	engine   *calculator.Engine
	geocoder *geocode.Client
	solar    *irradiance.Client
	leadRepo repository.LeadRepository
	audit    *BatchWriter // nil when auditing is disabled

	geocodeCache    *cache.Cache
	irradianceCache *cache.Cache

	// Lock-free statistics
	estimateCount uint64
	leadCount     uint64
	failedCount   uint64
}

// NewService builds the service graph. db may be nil, in which case no
// audit trail is written.
func NewService(cfg *config.Config, tables *calculator.Tables, db *config.InfluxDatabase) *Service {
	geocodeCache := cache.New(10 * time.Minute)
	irradianceCache := cache.New(time.Hour)

	svc := &Service{
		cfg:             cfg,
		engine:          calculator.NewEngine(tables),
		geocoder:        geocode.NewClient(cfg.GeocoderBaseURL, geocodeCache),
		solar:           irradiance.NewClient(cfg.IrradianceBaseURL, irradianceCache),
		leadRepo:        repository.NewMemoryLeadRepo(),
		geocodeCache:    geocodeCache,
		irradianceCache: irradianceCache,
	}

	if db != nil {
		svc.audit = NewBatchWriter(
			repository.NewInfluxAuditRepo(db),
			cfg.BatchSize,
			time.Duration(cfg.FlushInterval)*time.Millisecond,
		)
	}

	logger.Infof("Service initialized (geocoder: %s, irradiance: %s, audit: %v)",
		cfg.GeocoderBaseURL, orNone(cfg.IrradianceBaseURL), db != nil)

	return svc
}

// Estimate resolves the location if a postcode was given, picks the best
// available irradiance figure and runs the calculation. The returned
// geocode result is nil when the caller supplied raw coordinates.
func (svc *Service) Estimate(ctx context.Context, postcode string, inputs domain.CalculatorInputs) (*domain.CalculatorResults, *domain.GeocodeResult, error) {
	var geo *domain.GeocodeResult
	region := ""

	if postcode != "" {
		var err error
		geo, err = svc.geocoder.Lookup(ctx, postcode)
		if err != nil {
			atomic.AddUint64(&svc.failedCount, 1)
			if errors.Is(err, geocode.ErrPostcodeNotFound) {
				return nil, nil, err
			}
			return nil, nil, fmt.Errorf("geocoding failed: %w", err)
		}
		inputs.Latitude = geo.Latitude
		inputs.Longitude = geo.Longitude
		region = geo.Region
	}

	irr := svc.resolveIrradiance(ctx, inputs.Latitude, inputs.Longitude, region)
	results := svc.engine.Estimate(inputs, irr)

	atomic.AddUint64(&svc.estimateCount, 1)
	svc.auditEstimate("estimate", uuid.NewString(), region, results, nil)

	return results, geo, nil
}

// CaptureLead runs an estimate for the supplied property, scores the
// contact against it and persists the lead
func (svc *Service) CaptureLead(ctx context.Context, postcode string, inputs domain.CalculatorInputs, contact domain.Contact) (*domain.Lead, error) {
	results, geo, err := svc.Estimate(ctx, postcode, inputs)
	if err != nil {
		return nil, err
	}

	score := scoring.CalculateLeadScore(results, contact)

	lead := &domain.Lead{
		ID:        uuid.NewString(),
		Contact:   contact,
		Postcode:  postcode,
		Inputs:    inputs,
		Results:   results,
		Score:     &score,
		CreatedAt: time.Now().UTC(),
	}
	if geo != nil {
		lead.Inputs.Latitude = geo.Latitude
		lead.Inputs.Longitude = geo.Longitude
	}

	if err := svc.leadRepo.Save(ctx, lead); err != nil {
		atomic.AddUint64(&svc.failedCount, 1)
		return nil, fmt.Errorf("failed to save lead: %w", err)
	}

	atomic.AddUint64(&svc.leadCount, 1)

	region := ""
	if geo != nil {
		region = geo.Region
	}
	svc.auditEstimate("lead", lead.ID, region, results, &score)

	logger.Infof("Lead captured: %s score=%d category=%s", lead.ID, score.Total, score.Category)
	return lead, nil
}

// GetLead returns a stored lead
func (svc *Service) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	return svc.leadRepo.Get(ctx, id)
}

// ListLeads returns stored leads newest-first
func (svc *Service) ListLeads(ctx context.Context, limit, offset int) ([]*domain.Lead, error) {
	return svc.leadRepo.List(ctx, limit, offset)
}

// Tables exposes the active coefficient set
func (svc *Service) Tables() *calculator.Tables {
	return svc.engine.Tables()
}

// Stats aggregates service, cache and audit-writer statistics
func (svc *Service) Stats(ctx context.Context) map[string]interface{} {
	leadTotal, _ := svc.leadRepo.Count(ctx)

	stats := map[string]interface{}{
		"estimates_calculated": atomic.LoadUint64(&svc.estimateCount),
		"leads_captured":       atomic.LoadUint64(&svc.leadCount),
		"failed_requests":      atomic.LoadUint64(&svc.failedCount),
		"leads_stored":         leadTotal,
		"geocode_cache":        svc.geocodeCache.Stats(),
		"irradiance_cache":     svc.irradianceCache.Stats(),
	}
	if svc.audit != nil {
		stats["audit_writer"] = svc.audit.Stats()
	}
	return stats
}

// Close flushes the audit trail and stops background goroutines
func (svc *Service) Close() {
	if svc.audit != nil {
		svc.audit.Close()
	}
	svc.geocodeCache.Close()
	svc.irradianceCache.Close()
}

// resolveIrradiance prefers a measured figure, then the regional table,
// and finally nil so the engine applies its UK-average fallback
func (svc *Service) resolveIrradiance(ctx context.Context, latitude, longitude float64, region string) *domain.Irradiance {
	measured, err := svc.solar.Lookup(ctx, latitude, longitude)
	if err == nil {
		return measured
	}
	if !errors.Is(err, irradiance.ErrUnavailable) {
		logger.Warnf("Irradiance lookup error for (%.4f, %.4f): %v", latitude, longitude, err)
	}

	if region != "" {
		return &domain.Irradiance{
			Annual: svc.engine.Tables().RegionalIrradianceFor(region),
			Source: domain.IrradianceSourceRegional,
		}
	}

	return nil
}

func (svc *Service) auditEstimate(kind, requestID, region string, results *domain.CalculatorResults, score *domain.LeadScore) {
	if svc.audit == nil {
		return
	}

	record := repository.AuditRecord{
		Timestamp:           time.Now().UTC(),
		Kind:                kind,
		RequestID:           requestID,
		Region:              region,
		IrradianceSource:    results.Metadata.IrradianceSource,
		IrradianceUsed:      results.Metadata.IrradianceUsed,
		SystemSizeKwp:       results.FinalSystemSizeKwp,
		AnnualGenerationKwh: results.EstimatedAnnualGeneration,
		TotalAnnualBenefit:  results.TotalAnnualBenefit,
	}
	if !results.PaybackPeriodYears.IsInfinite() {
		record.PaybackYears = float64(results.PaybackPeriodYears)
	}
	if score != nil {
		record.ScoreTotal = score.Total
		record.ScoreCategory = score.Category
	}

	svc.audit.Add(record)
}

func orNone(s string) string {
	if s == "" {
		return "(disabled)"
	}
	return s
}
