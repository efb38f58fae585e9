// services/geo_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

// GeoClient resolves free-text court locations to coordinates through a
// Kakao-style local address search API.
type GeoClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewGeoClient(baseURL, apiKey string) *GeoClient {
	return &GeoClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func NewGeoClientFromEnv() *GeoClient {
	baseURL := os.Getenv("GEO_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://dapi.kakao.com"
	}
	apiKey := os.Getenv("GEO_API_KEY")
	if apiKey == "" {
		log.Fatal("GEO_API_KEY environment variable not set")
	}
	return NewGeoClient(baseURL, apiKey)
}

type addressDocument struct {
	X string `json:"x"` // longitude
	Y string `json:"y"` // latitude
}

type addressSearchResponse struct {
	Documents []addressDocument `json:"documents"`
}

// Resolve looks up the first address document for the given text. Any
// transport failure, empty result, or malformed coordinate maps to
// LAT_AND_LON_NOT_FOUND.
func (c *GeoClient) Resolve(ctx context.Context, address string) (float64, float64, error) {
	endpoint := fmt.Sprintf("%s/v2/local/search/address?query=%s", c.BaseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return 0, 0, models.ErrLatAndLonNotFound
	}
	req.Header.Set("Authorization", "KakaoAK "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[Geo] request failed for %q: %v", address, err)
		return 0, 0, models.ErrLatAndLonNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Geo] address search returned %d for %q", resp.StatusCode, address)
		return 0, 0, models.ErrLatAndLonNotFound
	}

	var parsed addressSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, 0, models.ErrLatAndLonNotFound
	}
	if len(parsed.Documents) == 0 {
		return 0, 0, models.ErrLatAndLonNotFound
	}

	first := parsed.Documents[0]
	lat, latErr := strconv.ParseFloat(first.Y, 64)
	lon, lonErr := strconv.ParseFloat(first.X, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, models.ErrLatAndLonNotFound
	}
	return lat, lon, nil
}
