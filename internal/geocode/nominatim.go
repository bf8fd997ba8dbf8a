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

	"photosort/internal/gps"
)

// NominatimClient queries the OpenStreetMap Nominatim reverse endpoint. It is
// the only keyless provider but requires a descriptive User-Agent per the
// service's usage policy.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatim creates a Nominatim client.
func NewNominatim(baseURL, userAgent string, httpClient *http.Client) *NominatimClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

func (c *NominatimClient) Name() string { return ServiceNominatim }

// nominatimResponse models the jsonv2 reverse payload; any subset of the
// address fields may be absent.
type nominatimResponse struct {
	Address osmAddress `json:"address"`
}

// osmAddress is the OSM-style address object shared by Nominatim and
// LocationIQ. City falls back to town, then village.
type osmAddress struct {
	Road        string `json:"road"`
	Suburb      string `json:"suburb"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	CountryCode string `json:"country_code"`
}

func (a osmAddress) toAddress() Address {
	city := a.City
	if city == "" {
		city = a.Town
	}
	if city == "" {
		city = a.Village
	}
	return Address{
		Road:        a.Road,
		Suburb:      a.Suburb,
		City:        city,
		State:       a.State,
		CountryCode: a.CountryCode,
	}
}

// Reverse performs the reverse-geocoding request.
func (c *NominatimClient) Reverse(ctx context.Context, coord gps.Coordinate) (Address, error) {
	endpoint, err := url.Parse(c.baseURL + "/reverse")
	if err != nil {
		return Address{}, fmt.Errorf("parse nominatim url: %w", err)
	}
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", formatCoord(coord.Lat))
	params.Set("lon", formatCoord(coord.Lon))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Address{}, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("nominatim reverse returned %d", resp.StatusCode)
	}

	var payload nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Address{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	return payload.Address.toAddress(), nil
}

var errMissingKey = errors.New("api key not configured")
