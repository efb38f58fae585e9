package services

import (
	"testing"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

func TestDecideDueTransition(t *testing.T) {
	cases := []struct {
		name       string
		status     models.RecruitStatus
		wantTarget models.RecruitStatus
		wantNotify models.NotificationType
		wantOK     bool
	}{
		{"full confirms", models.RecruitFull, models.RecruitConfirmed, models.NotifyMatchingClosed, true},
		{"open fails", models.RecruitOpen, models.RecruitFailed, models.NotifyMatchingFailed, true},
		{"weather issue untouched", models.RecruitWeatherIssue, models.RecruitWeatherIssue, "", false},
		{"confirmed untouched", models.RecruitConfirmed, models.RecruitConfirmed, "", false},
		{"failed untouched", models.RecruitFailed, models.RecruitFailed, "", false},
		{"finished untouched", models.RecruitFinished, models.RecruitFinished, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, notify, ok := decideDueTransition(tc.status)
			if ok != tc.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tc.wantOK)
			}
			if target != tc.wantTarget {
				t.Fatalf("target: got %s, want %s", target, tc.wantTarget)
			}
			if notify != tc.wantNotify {
				t.Fatalf("notification: got %s, want %s", notify, tc.wantNotify)
			}
		})
	}
}

func TestWeatherIssueFinishes(t *testing.T) {
	filled := &models.Matching{RecruitNum: 4, AcceptedNum: 4}
	if !weatherIssueFinishes(filled) {
		t.Error("a filled weather-cancelled matching should finish")
	}

	partial := &models.Matching{RecruitNum: 4, AcceptedNum: 2}
	if weatherIssueFinishes(partial) {
		t.Error("a partially filled weather-cancelled matching should stay terminal without finishing")
	}
}

func TestSettleDecision(t *testing.T) {
	full := &models.Matching{RecruitStatus: models.RecruitFull}
	notify, changed, err := settleDecision(full)
	if err != nil || !changed {
		t.Fatalf("full matching should confirm: changed=%v err=%v", changed, err)
	}
	if full.RecruitStatus != models.RecruitConfirmed || notify != models.NotifyMatchingClosed {
		t.Fatalf("got %s with %s notification", full.RecruitStatus, notify)
	}

	// The deadline job decides against the row as re-read inside its
	// transaction: a weather cancellation committed after the batch
	// query saw FULL must leave the row untouched, never CONFIRMED.
	cancelled := &models.Matching{RecruitStatus: models.RecruitWeatherIssue}
	_, changed, err = settleDecision(cancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Fatal("weather-cancelled matching must not be settled by the deadline rule")
	}
	if cancelled.RecruitStatus != models.RecruitWeatherIssue {
		t.Fatalf("status overwritten: got %s", cancelled.RecruitStatus)
	}
}

func TestFinishDecision(t *testing.T) {
	confirmed := &models.Matching{RecruitStatus: models.RecruitConfirmed}
	done, err := finishDecision(confirmed)
	if err != nil || !done || confirmed.RecruitStatus != models.RecruitFinished {
		t.Fatalf("confirmed should finish: done=%v err=%v status=%s", done, err, confirmed.RecruitStatus)
	}

	filled := &models.Matching{RecruitStatus: models.RecruitWeatherIssue, RecruitNum: 4, AcceptedNum: 4}
	done, err = finishDecision(filled)
	if err != nil || !done || filled.RecruitStatus != models.RecruitFinished {
		t.Fatalf("filled weather-cancelled should finish: done=%v err=%v", done, err)
	}

	partial := &models.Matching{RecruitStatus: models.RecruitWeatherIssue, RecruitNum: 4, AcceptedNum: 2}
	done, err = finishDecision(partial)
	if err != nil || done {
		t.Fatalf("partial weather-cancelled must not finish: done=%v err=%v", done, err)
	}
	if partial.RecruitStatus != models.RecruitWeatherIssue {
		t.Fatalf("status overwritten: got %s", partial.RecruitStatus)
	}

	// A row that changed between the batch query and the transaction
	// (e.g. reopened) is skipped rather than forced.
	reopened := &models.Matching{RecruitStatus: models.RecruitOpen}
	done, err = finishDecision(reopened)
	if err != nil || done {
		t.Fatalf("open matching must not finish: done=%v err=%v", done, err)
	}
}

func TestDecideMorningAction(t *testing.T) {
	cases := []struct {
		name          string
		status        models.RecruitStatus
		precipitation bool
		want          morningOutcome
	}{
		{"open clear weather", models.RecruitOpen, false, morningNotifyOK},
		{"open with rain cancels", models.RecruitOpen, true, morningCancel},
		{"full with rain cancels", models.RecruitFull, true, morningCancel},
		{"confirmed clear weather", models.RecruitConfirmed, false, morningNotifyOK},
		{"confirmed with rain warns without cancelling", models.RecruitConfirmed, true, morningNotifyIssue},
		{"already cancelled skipped", models.RecruitWeatherIssue, true, morningSkip},
		{"failed skipped", models.RecruitFailed, false, morningSkip},
		{"finished skipped", models.RecruitFinished, true, morningSkip},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := decideMorningAction(tc.status, tc.precipitation); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}
