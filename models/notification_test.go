package models

import (
	"strings"
	"testing"
)

func TestHasPrecipitation(t *testing.T) {
	if (WeatherForecast{PrecipitationType: PrecipitationNice}).HasPrecipitation() {
		t.Error("NICE should not count as precipitation")
	}
	if (WeatherForecast{}).HasPrecipitation() {
		t.Error("empty forecast should not count as precipitation")
	}
	for _, p := range []PrecipitationType{PrecipitationRain, PrecipitationSnow, PrecipitationRainAndSnow, PrecipitationShower} {
		if !(WeatherForecast{PrecipitationType: p}).HasPrecipitation() {
			t.Errorf("%s should count as precipitation", p)
		}
	}
}

func TestWeatherIssueMessage(t *testing.T) {
	msg := WeatherIssueMessage(WeatherForecast{
		PrecipitationType:        PrecipitationRain,
		PrecipitationProbability: 80,
	})
	if !strings.Contains(msg, "rain") || !strings.Contains(msg, "80%") {
		t.Fatalf("weather issue message missing forecast details: %q", msg)
	}
}

func TestMessageFor(t *testing.T) {
	for _, nt := range []NotificationType{
		NotifyModifyMatching, NotifyDeleteMatching, NotifyMatchingClosed,
		NotifyMatchingFailed, NotifyMatchingFinished, NotifyWeatherOK,
	} {
		if MessageFor(nt) == "" {
			t.Errorf("no message defined for %s", nt)
		}
	}
}
