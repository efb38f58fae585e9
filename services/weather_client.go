// services/weather_client.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

// WeatherClient fetches the short-term precipitation forecast for a
// matching's coordinates and date.
type WeatherClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewWeatherClient(baseURL, apiKey string) *WeatherClient {
	return &WeatherClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func NewWeatherClientFromEnv() *WeatherClient {
	baseURL := os.Getenv("WEATHER_API_BASE_URL")
	if baseURL == "" {
		log.Fatal("WEATHER_API_BASE_URL environment variable not set")
	}
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		log.Fatal("WEATHER_API_KEY environment variable not set")
	}
	return NewWeatherClient(baseURL, apiKey)
}

// ForecastFor queries the forecast for the matching's location on its
// match day. Timeouts and non-200 responses surface as
// WEATHER_UNAVAILABLE; callers in scheduled jobs log and skip, callers in
// interactive flows propagate.
func (c *WeatherClient) ForecastFor(ctx context.Context, m *models.Matching) (models.WeatherForecast, error) {
	endpoint := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&date=%s",
		c.BaseURL, m.Lat, m.Lon, m.Date.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return models.WeatherForecast{}, models.ErrWeatherUnavailable
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		log.Printf("[Weather] request failed for matching %s: %v", m.ID, err)
		return models.WeatherForecast{}, models.ErrWeatherUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Weather] forecast returned %d for matching %s", resp.StatusCode, m.ID)
		return models.WeatherForecast{}, models.ErrWeatherUnavailable
	}

	var forecast models.WeatherForecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return models.WeatherForecast{}, models.ErrWeatherUnavailable
	}
	if forecast.PrecipitationType == "" {
		forecast.PrecipitationType = models.PrecipitationNice
	}
	return forecast, nil
}
