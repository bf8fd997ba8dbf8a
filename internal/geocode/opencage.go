package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"photosort/internal/gps"
)

// OpenCageClient queries the OpenCage geocoding API. Requires an API key.
type OpenCageClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenCage creates an OpenCage client. An empty key is tolerated at
// construction; Reverse fails until one is configured.
func NewOpenCage(baseURL, apiKey string, httpClient *http.Client) *OpenCageClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenCageClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
}

func (c *OpenCageClient) Name() string { return ServiceOpenCage }

// openCageResponse models the subset of the OpenCage payload this tool reads.
// Unlike the OSM-style providers, components live under results[0].
type openCageResponse struct {
	Results []struct {
		Components struct {
			Road        string `json:"road"`
			Suburb      string `json:"suburb"`
			City        string `json:"city"`
			State       string `json:"state"`
			CountryCode string `json:"country_code"`
		} `json:"components"`
	} `json:"results"`
}

// Reverse performs the reverse-geocoding request.
func (c *OpenCageClient) Reverse(ctx context.Context, coord gps.Coordinate) (Address, error) {
	if c.apiKey == "" {
		return Address{}, errMissingKey
	}

	endpoint, err := url.Parse(c.baseURL + "/geocode/v1/json")
	if err != nil {
		return Address{}, fmt.Errorf("parse opencage url: %w", err)
	}
	params := url.Values{}
	params.Set("q", formatCoord(coord.Lat)+"+"+formatCoord(coord.Lon))
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Address{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("opencage reverse returned %d", resp.StatusCode)
	}

	var payload openCageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Address{}, fmt.Errorf("decode opencage response: %w", err)
	}
	if len(payload.Results) == 0 {
		return Address{}, fmt.Errorf("opencage returned no results")
	}

	components := payload.Results[0].Components
	return Address{
		Road:        components.Road,
		Suburb:      components.Suburb,
		City:        components.City,
		State:       components.State,
		CountryCode: components.CountryCode,
	}, nil
}
