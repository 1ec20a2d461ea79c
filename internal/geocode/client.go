package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solar_estimator/internal/cache"
	"solar_estimator/internal/domain"
	"solar_estimator/pkg/logger"
)

// ErrPostcodeNotFound signals an explicit "no such postcode" from the
// provider, as opposed to a transport failure
var ErrPostcodeNotFound = errors.New("postcode not found")

const defaultCacheTTL = 24 * time.Hour

// Client resolves UK postcodes to coordinates and a region name through a
// postcodes.io-style API, with a TTL cache in front of it
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	cacheTTL   time.Duration
}

// lookupResponse mirrors the provider's wire format
type lookupResponse struct {
	Status int `json:"status"`
	Result struct {
		Postcode  string  `json:"postcode"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Region    string  `json:"region"`
		Country   string  `json:"country"`
	} `json:"result"`
}

// NewClient creates a geocoding client
func NewClient(baseURL string, c *cache.Cache) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      c,
		cacheTTL:   defaultCacheTTL,
	}
}

// Lookup resolves a postcode. Returns ErrPostcodeNotFound when the
// provider reports the postcode does not exist.
func (c *Client) Lookup(ctx context.Context, postcode string) (*domain.GeocodeResult, error) {
	normalized := Normalize(postcode)
	if normalized == "" {
		return nil, ErrPostcodeNotFound
	}

	if cached, found := c.cache.Get("geocode:" + normalized); found {
		return cached.(*domain.GeocodeResult), nil
	}

	result, err := c.fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}

	c.cache.Set("geocode:"+normalized, result, c.cacheTTL)
	return result, nil
}

func (c *Client) fetch(ctx context.Context, postcode string) (*domain.GeocodeResult, error) {
	endpoint := fmt.Sprintf("%s/postcodes/%s", c.baseURL, url.PathEscape(postcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPostcodeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode provider returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	region := body.Result.Region
	if region == "" {
		// Scotland, Wales and NI come back with an empty region field
		region = body.Result.Country
	}

	logger.Debugf("Geocoded %s -> (%.4f, %.4f) region=%s",
		postcode, body.Result.Latitude, body.Result.Longitude, region)

	return &domain.GeocodeResult{
		Postcode:  body.Result.Postcode,
		Latitude:  body.Result.Latitude,
		Longitude: body.Result.Longitude,
		Region:    region,
	}, nil
}

// Normalize uppercases a postcode and strips whitespace so cache keys and
// provider paths are stable
func Normalize(postcode string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(postcode), " ", ""))
}
