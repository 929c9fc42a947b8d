package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/valueobjects"
	apperrors "schoolride-backend/pkg/errors"
)

const defaultEndpoint = "https://geocode.search.hereapi.com/v1/geocode"

// HereClient resolves free-form addresses using the HERE geocoding API.
// It implements ports.Geocoder.
type HereClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     *zap.Logger
}

// NewHereClient creates a geocoding client
func NewHereClient(apiKey string, logger *zap.Logger) *HereClient {
	return &HereClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// WithEndpoint overrides the API endpoint. Used by tests.
func (c *HereClient) WithEndpoint(endpoint string) *HereClient {
	c.endpoint = endpoint
	return c
}

type hereResponse struct {
	Items []struct {
		Title    string `json:"title"`
		Position struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"position"`
	} `json:"items"`
}

// Geocode resolves an address to coordinates.
// Returns a not found error when the API has no match.
func (c *HereClient) Geocode(ctx context.Context, address string) (valueobjects.GeoLocation, error) {
	if c.apiKey == "" {
		return valueobjects.GeoLocation{}, apperrors.NewExternalError("here", fmt.Errorf("api key not configured"))
	}

	query := url.Values{}
	query.Set("q", address)
	query.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return valueobjects.GeoLocation{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return valueobjects.GeoLocation{}, apperrors.NewExternalError("here", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return valueobjects.GeoLocation{}, apperrors.NewExternalError("here", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body hereResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return valueobjects.GeoLocation{}, apperrors.NewExternalError("here", err)
	}

	if len(body.Items) == 0 {
		return valueobjects.GeoLocation{}, apperrors.NewNotFoundError("location for address")
	}

	position := body.Items[0].Position
	location, err := valueobjects.NewGeoLocation(position.Lat, position.Lng)
	if err != nil {
		return valueobjects.GeoLocation{}, apperrors.NewExternalError("here", err)
	}

	c.logger.Debug("Geocoded address",
		zap.String("address", address),
		zap.Float64("latitude", location.Latitude()),
		zap.Float64("longitude", location.Longitude()),
	)

	return location, nil
}

// NopGeocoder is used when no geocoding API key is configured
type NopGeocoder struct{}

// Geocode always reports no match
func (NopGeocoder) Geocode(ctx context.Context, address string) (valueobjects.GeoLocation, error) {
	return valueobjects.GeoLocation{}, apperrors.NewNotFoundError("location for address")
}

var _ ports.Geocoder = (*HereClient)(nil)
var _ ports.Geocoder = NopGeocoder{}
