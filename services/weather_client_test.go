package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

func testMatching() *models.Matching {
	return &models.Matching{
		ID:   "m-1",
		Lat:  37.5206,
		Lon:  127.1214,
		Date: time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local),
	}
}

func TestWeatherClientForecastFor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date"); got != "2026-08-29" {
			t.Errorf("unexpected date param %q", got)
		}
		w.Write([]byte(`{"precipitation_type":"RAIN","precipitation_probability":80}`))
	}))
	defer srv.Close()

	client := NewWeatherClient(srv.URL, "test-key")
	forecast, err := client.ForecastFor(context.Background(), testMatching())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forecast.PrecipitationType != models.PrecipitationRain {
		t.Fatalf("got %s, want RAIN", forecast.PrecipitationType)
	}
	if forecast.PrecipitationProbability != 80 {
		t.Fatalf("got %d%%, want 80%%", forecast.PrecipitationProbability)
	}
	if !forecast.HasPrecipitation() {
		t.Error("rain forecast should report precipitation")
	}
}

func TestWeatherClientDefaultsToNice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"precipitation_probability":0}`))
	}))
	defer srv.Close()

	client := NewWeatherClient(srv.URL, "test-key")
	forecast, err := client.ForecastFor(context.Background(), testMatching())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forecast.PrecipitationType != models.PrecipitationNice {
		t.Fatalf("missing type should default to NICE, got %s", forecast.PrecipitationType)
	}
}

func TestWeatherClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewWeatherClient(srv.URL, "test-key")
	_, err := client.ForecastFor(context.Background(), testMatching())
	if !errors.Is(err, models.ErrWeatherUnavailable) {
		t.Fatalf("want WEATHER_UNAVAILABLE, got %v", err)
	}
}

func TestWeatherClientUnreachable(t *testing.T) {
	client := NewWeatherClient("http://127.0.0.1:1", "test-key")
	client.Client.Timeout = 200 * time.Millisecond

	_, err := client.ForecastFor(context.Background(), testMatching())
	if !errors.Is(err, models.ErrWeatherUnavailable) {
		t.Fatalf("want WEATHER_UNAVAILABLE, got %v", err)
	}
}
