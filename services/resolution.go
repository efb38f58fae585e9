// services/resolution.go
package services

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

// Notification records are kept this long before the retention job
// removes them.
const notificationRetention = 3 * 24 * time.Hour

// ResolutionService owns the time-driven jobs that settle matchings:
// deadline confirmation, the morning weather recheck, and notification
// retention. Each job body takes an explicit "now" so the host (or a
// test) controls timing; the gocron wiring in scheduler.go just feeds in
// the wall clock.
type ResolutionService struct {
	DB       *gorm.DB
	Weather  WeatherLookup
	Notifier NotificationSink
}

func NewResolutionService(db *gorm.DB, weather WeatherLookup, notifier NotificationSink) *ResolutionService {
	return &ResolutionService{DB: db, Weather: weather, Notifier: notifier}
}

// JobReport summarizes one job run.
type JobReport struct {
	StartedAt    time.Time `json:"started_at"`
	Processed    int       `json:"processed"`
	Transitioned int       `json:"transitioned"`
	Notified     int       `json:"notified"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
}

// decideDueTransition is the deadline rule: FULL confirms, OPEN fails,
// anything else (WEATHER_ISSUE in particular) is untouched.
func decideDueTransition(status models.RecruitStatus) (models.RecruitStatus, models.NotificationType, bool) {
	switch status {
	case models.RecruitFull:
		return models.RecruitConfirmed, models.NotifyMatchingClosed, true
	case models.RecruitOpen:
		return models.RecruitFailed, models.NotifyMatchingFailed, true
	default:
		return status, "", false
	}
}

// settleDecision runs the deadline rule against the matching's current
// status and applies the transition in memory. Reports whether the row
// changed and which notification to fan out.
func settleDecision(m *models.Matching) (models.NotificationType, bool, error) {
	target, notify, ok := decideDueTransition(m.RecruitStatus)
	if !ok {
		return "", false, nil
	}
	if err := m.ChangeRecruitStatus(target); err != nil {
		return "", false, err
	}
	return notify, true, nil
}

// weatherIssueFinishes reports whether a weather-cancelled matching still
// "finishes": only if it had in fact filled up before the cancellation.
func weatherIssueFinishes(m *models.Matching) bool {
	return m.AcceptedNum == m.RecruitNum
}

// finishDecision moves a matching to FINISHED when its current status
// allows it; a weather-cancelled matching finishes only if it had filled
// up before the cancellation.
func finishDecision(m *models.Matching) (bool, error) {
	if m.RecruitStatus == models.RecruitWeatherIssue && !weatherIssueFinishes(m) {
		return false, nil
	}
	if !m.CanTransitionTo(models.RecruitFinished) {
		return false, nil
	}
	if err := m.ChangeRecruitStatus(models.RecruitFinished); err != nil {
		return false, err
	}
	return true, nil
}

// morningOutcome is the morning recheck's verdict for one matching.
type morningOutcome int

const (
	morningSkip morningOutcome = iota
	morningNotifyOK
	morningNotifyIssue
	morningCancel
)

// morningSettled reports whether the matching is past the point where the
// morning recheck has anything to say about it.
func morningSettled(status models.RecruitStatus) bool {
	switch status {
	case models.RecruitFailed, models.RecruitFinished, models.RecruitWeatherIssue:
		return true
	}
	return false
}

// decideMorningAction maps a matching's status and forecast to the
// morning recheck's action. Settled rows get nothing. A confirmed
// matching can no longer be cancelled, but its players still hear about
// bad weather.
func decideMorningAction(status models.RecruitStatus, precipitation bool) morningOutcome {
	if morningSettled(status) {
		return morningSkip
	}
	if !precipitation {
		return morningNotifyOK
	}
	if status == models.RecruitConfirmed {
		return morningNotifyIssue
	}
	return morningCancel
}

// ConfirmDueMatchings settles every matching whose recruit deadline falls
// in the minute containing now, then finishes CONFIRMED and filled
// WEATHER_ISSUE matchings whose end time has passed. Failures on one
// matching never abort the rest of the batch.
func (s *ResolutionService) ConfirmDueMatchings(now time.Time) JobReport {
	report := JobReport{StartedAt: now}
	log.Printf("[Scheduler] deadline confirmation started at %s", now.Format("2006-01-02 15:04"))

	minuteStart := now.Truncate(time.Minute)
	var dueMatchings []models.Matching
	if err := s.DB.
		Where("recruit_due >= ? AND recruit_due < ?", minuteStart, minuteStart.Add(time.Minute)).
		Find(&dueMatchings).Error; err != nil {
		log.Printf("[Scheduler] DB error loading due matchings: %v", err)
		return report
	}

	for i := range dueMatchings {
		report.Processed++
		if !s.settleDueMatching(&dueMatchings[i], &report) {
			report.Failed++
		}
	}

	var confirmedEnded []models.Matching
	if err := s.DB.
		Where("recruit_status = ? AND end_time <= ?", models.RecruitConfirmed, now).
		Find(&confirmedEnded).Error; err != nil {
		log.Printf("[Scheduler] DB error loading confirmed matchings: %v", err)
		return report
	}
	for i := range confirmedEnded {
		report.Processed++
		if !s.finishMatching(&confirmedEnded[i], &report) {
			report.Failed++
		}
	}

	var weatherEnded []models.Matching
	if err := s.DB.
		Where("recruit_status = ? AND end_time <= ?", models.RecruitWeatherIssue, now).
		Find(&weatherEnded).Error; err != nil {
		log.Printf("[Scheduler] DB error loading weather-issue matchings: %v", err)
		return report
	}
	for i := range weatherEnded {
		report.Processed++
		if !s.finishMatching(&weatherEnded[i], &report) {
			report.Failed++
		}
	}

	log.Printf("[Scheduler] deadline confirmation done: %d processed, %d transitioned, %d notified, %d failed",
		report.Processed, report.Transitioned, report.Notified, report.Failed)
	return report
}

// settleDueMatching applies the deadline rule to one matching in its own
// transaction. The row is re-read under a row lock and the rule re-run
// against its current status: a weather cancellation landing between the
// batch query and this write wins.
func (s *ResolutionService) settleDueMatching(m *models.Matching, report *JobReport) bool {
	var notifyType models.NotificationType
	settled := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var fresh models.Matching
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&fresh, "id = ?", m.ID).Error; err != nil {
			return err
		}
		notify, changed, err := settleDecision(&fresh)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := tx.Save(&fresh).Error; err != nil {
			return err
		}
		*m = fresh
		notifyType = notify
		settled = true
		return nil
	})
	if err != nil {
		log.Printf("[Scheduler] failed to settle matching %s: %v", m.ID, err)
		return false
	}
	if !settled {
		report.Skipped++
		return true
	}

	switch m.RecruitStatus {
	case models.RecruitConfirmed:
		log.Printf("[Scheduler] matching confirmed -> %s", m.ID)
	case models.RecruitFailed:
		log.Printf("[Scheduler] matching failed -> %s", m.ID)
	}
	report.Transitioned++
	report.Notified += s.notifyAcceptedApplicants(m, notifyType)
	return true
}

// finishMatching transitions one matching to FINISHED and notifies its
// accepted applicants. The row is re-read under a row lock; a status that
// no longer allows finishing counts as skipped, not failed.
func (s *ResolutionService) finishMatching(m *models.Matching, report *JobReport) bool {
	finished := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var fresh models.Matching
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&fresh, "id = ?", m.ID).Error; err != nil {
			return err
		}
		done, err := finishDecision(&fresh)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		if err := tx.Save(&fresh).Error; err != nil {
			return err
		}
		*m = fresh
		finished = true
		return nil
	})
	if err != nil {
		log.Printf("[Scheduler] failed to finish matching %s: %v", m.ID, err)
		return false
	}
	if !finished {
		report.Skipped++
		return true
	}

	log.Printf("[Scheduler] matching finished -> %s", m.ID)
	report.Transitioned++
	report.Notified += s.notifyAcceptedApplicants(m, models.NotifyMatchingFinished)
	return true
}

// MorningWeatherCheck re-queries the forecast for every matching
// scheduled today, whatever its status. Precipitation flips OPEN/FULL
// matchings to WEATHER_ISSUE; CONFIRMED matchings cannot be cancelled
// anymore but their accepted applicants are still warned. Clear weather
// sends the all-good message. A weather lookup failure skips that
// matching in this pass.
func (s *ResolutionService) MorningWeatherCheck(now time.Time) JobReport {
	report := JobReport{StartedAt: now}
	log.Printf("[Scheduler] morning weather recheck started at %s", now.Format("2006-01-02"))

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var todays []models.Matching
	if err := s.DB.
		Where("date >= ? AND date < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Find(&todays).Error; err != nil {
		log.Printf("[Scheduler] DB error loading today's matchings: %v", err)
		return report
	}

	ctx := context.Background()
	for i := range todays {
		m := &todays[i]
		report.Processed++

		if morningSettled(m.RecruitStatus) {
			report.Skipped++
			continue
		}

		forecast, err := s.Weather.ForecastFor(ctx, m)
		if err != nil {
			log.Printf("[Scheduler] weather lookup failed for matching %s, skipping: %v", m.ID, err)
			report.Failed++
			continue
		}

		action := decideMorningAction(m.RecruitStatus, forecast.HasPrecipitation())
		if action == morningCancel {
			err = s.DB.Transaction(func(tx *gorm.DB) error {
				var fresh models.Matching
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					First(&fresh, "id = ?", m.ID).Error; err != nil {
					return err
				}
				// Re-decide on the current row; the deadline job may
				// have settled it since the batch query.
				action = decideMorningAction(fresh.RecruitStatus, true)
				if action != morningCancel {
					return nil
				}
				if err := fresh.ChangeRecruitStatus(models.RecruitWeatherIssue); err != nil {
					return err
				}
				if err := tx.Save(&fresh).Error; err != nil {
					return err
				}
				*m = fresh
				return nil
			})
			if err != nil {
				log.Printf("[Scheduler] failed to cancel matching %s for weather: %v", m.ID, err)
				report.Failed++
				continue
			}
			if action == morningCancel {
				log.Printf("[Scheduler] precipitation %d%% (%s) -> cancelling matching %s",
					forecast.PrecipitationProbability, forecast.PrecipitationType.Label(), m.ID)
				report.Transitioned++
			}
		}

		switch action {
		case morningNotifyOK:
			report.Notified += s.notifyAcceptedApplicants(m, models.NotifyWeatherOK)
		case morningNotifyIssue, morningCancel:
			report.Notified += s.notifyAcceptedWeatherIssue(m, forecast)
		case morningSkip:
			report.Skipped++
		}
	}

	log.Printf("[Scheduler] morning weather recheck done: %d processed, %d cancelled, %d notified, %d skipped on error",
		report.Processed, report.Transitioned, report.Notified, report.Failed)
	return report
}

// PurgeOldNotifications drops notification records past the retention
// window. Pure storage hygiene.
func (s *ResolutionService) PurgeOldNotifications(now time.Time) JobReport {
	report := JobReport{StartedAt: now}
	cutoff := now.Add(-notificationRetention)
	log.Printf("[Scheduler] notification purge started at %s (cutoff %s)",
		now.Format("2006-01-02 15:04"), cutoff.Format("2006-01-02 15:04"))

	res := s.DB.Where("create_time < ?", cutoff).Delete(&models.Notification{})
	if res.Error != nil {
		log.Printf("[Scheduler] notification purge failed: %v", res.Error)
		report.Failed++
		return report
	}
	report.Processed = int(res.RowsAffected)
	log.Printf("[Scheduler] notification purge done: %d removed", res.RowsAffected)
	return report
}

// notifyAcceptedApplicants fans a notification out to every accepted
// applicant of the matching, connecting each delivery channel first.
func (s *ResolutionService) notifyAcceptedApplicants(m *models.Matching, t models.NotificationType) int {
	applies, err := s.acceptedApplies(m.ID)
	if err != nil {
		log.Printf("[Scheduler] failed to load accepted applies for matching %s: %v", m.ID, err)
		return 0
	}
	for _, a := range applies {
		s.Notifier.Connect(a.SiteUserID)
		s.Notifier.CreateAndSend(a.SiteUser, m, t)
	}
	return len(applies)
}

func (s *ResolutionService) notifyAcceptedWeatherIssue(m *models.Matching, w models.WeatherForecast) int {
	applies, err := s.acceptedApplies(m.ID)
	if err != nil {
		log.Printf("[Scheduler] failed to load accepted applies for matching %s: %v", m.ID, err)
		return 0
	}
	for _, a := range applies {
		s.Notifier.Connect(a.SiteUserID)
		s.Notifier.CreateAndSendWeatherIssue(a.SiteUser, m, w)
	}
	return len(applies)
}

func (s *ResolutionService) acceptedApplies(matchingID string) ([]models.Apply, error) {
	var applies []models.Apply
	err := s.DB.Preload("SiteUser").
		Where("matching_id = ? AND apply_status = ?", matchingID, models.ApplyAccepted).
		Find(&applies).Error
	return applies, err
}
