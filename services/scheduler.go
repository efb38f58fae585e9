package services

import (
	"log"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Default job cadences, overridable via CONFIRM_JOB_INTERVAL (Go
// duration), WEATHER_JOB_TIME and PURGE_JOB_TIME (HH:MM).
const (
	defaultConfirmInterval = 1 * time.Minute
	defaultWeatherJobTime  = "06:30"
	defaultPurgeJobTime    = "00:30"
)

// jobInterval reads a Go duration from env, falling back on empty,
// unparsable, or non-positive values.
func jobInterval(envKey string, fallback time.Duration) time.Duration {
	raw := os.Getenv(envKey)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("⚠️  invalid %s=%q, using %s", envKey, raw, fallback)
		return fallback
	}
	return d
}

// jobAtTime reads an HH:MM wall-clock time from env, falling back on
// empty or unparsable values.
func jobAtTime(envKey, fallback string) (hour, minute uint) {
	raw := os.Getenv(envKey)
	if raw == "" {
		raw = fallback
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		log.Printf("⚠️  invalid %s=%q, using %s", envKey, raw, fallback)
		t, _ = time.Parse("15:04", fallback)
	}
	return uint(t.Hour()), uint(t.Minute())
}

// StartScheduler wires the three resolution jobs onto a gocron scheduler:
// deadline confirmation every minute, the weather recheck each morning,
// and notification retention shortly after midnight. Returns the running
// scheduler so the host can shut it down.
func (s *ResolutionService) StartScheduler() (gocron.Scheduler, error) {
	confirmEvery := jobInterval("CONFIRM_JOB_INTERVAL", defaultConfirmInterval)
	weatherHour, weatherMinute := jobAtTime("WEATHER_JOB_TIME", defaultWeatherJobTime)
	purgeHour, purgeMinute := jobAtTime("PURGE_JOB_TIME", defaultPurgeJobTime)

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DurationJob(confirmEvery),
		gocron.NewTask(func() {
			s.ConfirmDueMatchings(time.Now())
		}),
	); err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(weatherHour, weatherMinute, 0))),
		gocron.NewTask(func() {
			s.MorningWeatherCheck(time.Now())
		}),
	); err != nil {
		return nil, err
	}

	if _, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(purgeHour, purgeMinute, 0))),
		gocron.NewTask(func() {
			s.PurgeOldNotifications(time.Now())
		}),
	); err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("✅ Resolution scheduler running (confirm: every %s, weather: %02d:%02d, purge: %02d:%02d)",
		confirmEvery, weatherHour, weatherMinute, purgeHour, purgeMinute)
	return sched, nil
}
