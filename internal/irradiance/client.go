package irradiance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"solar_estimator/internal/cache"
	"solar_estimator/internal/domain"
	"solar_estimator/pkg/logger"
)

// ErrUnavailable signals that no measured irradiance could be retrieved
// and the caller should fall back to regional or UK-average figures
var ErrUnavailable = errors.New("irradiance data unavailable")

const defaultCacheTTL = 7 * 24 * time.Hour

// Client retrieves annual solar irradiance for coordinates from a
// PVGIS-style API, with a TTL cache in front of it. A nil/empty base URL
// disables retrieval entirely and every lookup reports ErrUnavailable.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
}

// providerResponse mirrors the provider's wire format
type providerResponse struct {
	AnnualKwhM2  float64   `json:"annual_kwh_m2"`
	MonthlyKwhM2 []float64 `json:"monthly_kwh_m2"`
}

// NewClient creates an irradiance client
func NewClient(baseURL string, c *cache.Cache) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      c,
		cacheTTL:   defaultCacheTTL,
	}
}

// Lookup returns the measured annual irradiance for a location. Cache
// keys round coordinates to ~1 km so neighbouring lookups share entries.
func (c *Client) Lookup(ctx context.Context, latitude, longitude float64) (*domain.Irradiance, error) {
	if c.baseURL == "" {
		return nil, ErrUnavailable
	}

	key := fmt.Sprintf("irradiance:%.2f:%.2f", latitude, longitude)
	if cached, found := c.cache.Get(key); found {
		return cached.(*domain.Irradiance), nil
	}

	result, err := c.fetch(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, result, c.cacheTTL)
	return result, nil
}

func (c *Client) fetch(ctx context.Context, latitude, longitude float64) (*domain.Irradiance, error) {
	endpoint := fmt.Sprintf("%s/v1/irradiance?lat=%.4f&lon=%.4f", c.baseURL, latitude, longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build irradiance request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warnf("Irradiance request failed: %v", err)
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warnf("Irradiance provider returned status %d", resp.StatusCode)
		return nil, ErrUnavailable
	}

	var body providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode irradiance response: %w", err)
	}

	if body.AnnualKwhM2 <= 0 {
		return nil, ErrUnavailable
	}

	return &domain.Irradiance{
		Annual:  body.AnnualKwhM2,
		Monthly: body.MonthlyKwhM2,
		Source:  domain.IrradianceSourceMeasured,
	}, nil
}
