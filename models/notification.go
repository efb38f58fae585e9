package models

import (
	"fmt"
	"time"
)

// PrecipitationType is the weather adapter's verdict for a matching's slot.
type PrecipitationType string

const (
	PrecipitationNice        PrecipitationType = "NICE"
	PrecipitationRain        PrecipitationType = "RAIN"
	PrecipitationSnow        PrecipitationType = "SNOW"
	PrecipitationRainAndSnow PrecipitationType = "RAIN_AND_SNOW"
	PrecipitationShower      PrecipitationType = "SHOWER"
)

var precipitationLabels = map[PrecipitationType]string{
	PrecipitationNice:        "clear skies",
	PrecipitationRain:        "rain",
	PrecipitationSnow:        "snow",
	PrecipitationRainAndSnow: "rain and snow",
	PrecipitationShower:      "showers",
}

// Label returns a human-readable name for the precipitation type.
func (p PrecipitationType) Label() string {
	if l, ok := precipitationLabels[p]; ok {
		return l
	}
	return string(p)
}

// WeatherForecast is what the weather adapter returns for a matching.
type WeatherForecast struct {
	PrecipitationType        PrecipitationType `json:"precipitation_type"`
	PrecipitationProbability int               `json:"precipitation_probability"` // percent
}

// HasPrecipitation reports whether the forecast calls the match into
// question.
func (w WeatherForecast) HasPrecipitation() bool {
	return w.PrecipitationType != PrecipitationNice && w.PrecipitationType != ""
}

// NotificationType classifies a notification and drives its message.
type NotificationType string

const (
	NotifyModifyMatching   NotificationType = "MODIFY_MATCHING"
	NotifyDeleteMatching   NotificationType = "DELETE_MATCHING"
	NotifyMatchingClosed   NotificationType = "MATCHING_CLOSED"
	NotifyMatchingFailed   NotificationType = "MATCHING_FAILED"
	NotifyMatchingFinished NotificationType = "MATCHING_FINISHED"
	NotifyWeatherIssue     NotificationType = "WEATHER_ISSUE"
	NotifyWeatherOK        NotificationType = "WEATHER_OK"
)

var notificationMessages = map[NotificationType]string{
	NotifyModifyMatching:   "The matching you applied to has been edited. Please confirm your participation again.",
	NotifyDeleteMatching:   "The matching you applied to has been deleted by the organizer.",
	NotifyMatchingClosed:   "Recruitment closed — your matching is confirmed. See you on court!",
	NotifyMatchingFailed:   "Recruitment closed without filling all seats. The matching has been cancelled.",
	NotifyMatchingFinished: "Your matching has finished. How did it go?",
	NotifyWeatherOK:        "Weather check: clear skies expected today. Your matching is on.",
}

// Notification is a stored, pushed message for one user about one matching.
type Notification struct {
	ID         string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SiteUserID string           `gorm:"index;not null" json:"site_user_id"`
	MatchingID string           `gorm:"index" json:"matching_id,omitempty"`
	Type       NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title      string           `gorm:"not null" json:"title"`
	Content    string           `gorm:"type:text" json:"content"`
	CreateTime time.Time        `gorm:"index;autoCreateTime" json:"create_time"`
}

// MessageFor returns the notification body for a type with no weather
// context.
func MessageFor(t NotificationType) string {
	return notificationMessages[t]
}

// WeatherIssueMessage builds the weather-cancellation body from a forecast.
func WeatherIssueMessage(w WeatherForecast) string {
	return fmt.Sprintf(
		"Weather check: %s expected today (%d%% chance). Your matching is cancelled due to weather.",
		w.PrecipitationType.Label(), w.PrecipitationProbability,
	)
}
