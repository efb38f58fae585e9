package services

import (
	"context"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

// GeoLookup resolves a free-text location to coordinates. Implemented by
// GeoClient; faked in tests.
type GeoLookup interface {
	Resolve(ctx context.Context, address string) (lat, lon float64, err error)
}

// WeatherLookup returns the precipitation forecast for a matching's
// location and date.
type WeatherLookup interface {
	ForecastFor(ctx context.Context, m *models.Matching) (models.WeatherForecast, error)
}

// NotificationSink records and pushes a notification. Fire-and-forget:
// implementations log their own failures and never propagate them.
type NotificationSink interface {
	// Connect establishes delivery-channel bookkeeping prior to sends in
	// job contexts.
	Connect(userID string)
	CreateAndSend(user models.SiteUser, m *models.Matching, t models.NotificationType)
	CreateAndSendWeatherIssue(user models.SiteUser, m *models.Matching, w models.WeatherForecast)
}
