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

// LocationIQClient queries the LocationIQ reverse endpoint. Requires an API
// key; the response reuses the OSM-style address object.
type LocationIQClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewLocationIQ creates a LocationIQ client. An empty key is tolerated at
// construction; Reverse fails until one is configured.
func NewLocationIQ(baseURL, apiKey string, httpClient *http.Client) *LocationIQClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &LocationIQClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
}

func (c *LocationIQClient) Name() string { return ServiceLocationIQ }

type locationIQResponse struct {
	Address osmAddress `json:"address"`
}

// Reverse performs the reverse-geocoding request.
func (c *LocationIQClient) Reverse(ctx context.Context, coord gps.Coordinate) (Address, error) {
	if c.apiKey == "" {
		return Address{}, errMissingKey
	}

	endpoint, err := url.Parse(c.baseURL + "/v1/reverse.php")
	if err != nil {
		return Address{}, fmt.Errorf("parse locationiq url: %w", err)
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("lat", formatCoord(coord.Lat))
	params.Set("lon", formatCoord(coord.Lon))
	params.Set("format", "json")
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
		return Address{}, fmt.Errorf("locationiq reverse returned %d", resp.StatusCode)
	}

	var payload locationIQResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Address{}, fmt.Errorf("decode locationiq response: %w", err)
	}
	return payload.Address.toAddress(), nil
}
