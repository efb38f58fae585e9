package models

import (
	"testing"
	"time"
)

func TestRecruitStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    RecruitStatus
		to      RecruitStatus
		allowed bool
	}{
		{"open fills up", RecruitOpen, RecruitFull, true},
		{"open fails at deadline", RecruitOpen, RecruitFailed, true},
		{"open cancelled for weather", RecruitOpen, RecruitWeatherIssue, true},
		{"full reopens when seat frees", RecruitFull, RecruitOpen, true},
		{"full confirms at deadline", RecruitFull, RecruitConfirmed, true},
		{"full cancelled for weather", RecruitFull, RecruitWeatherIssue, true},
		{"confirmed finishes", RecruitConfirmed, RecruitFinished, true},
		{"weather issue finishes", RecruitWeatherIssue, RecruitFinished, true},
		{"open cannot confirm directly", RecruitOpen, RecruitConfirmed, false},
		{"weather issue cannot confirm", RecruitWeatherIssue, RecruitConfirmed, false},
		{"weather issue cannot reopen", RecruitWeatherIssue, RecruitOpen, false},
		{"failed is terminal", RecruitFailed, RecruitOpen, false},
		{"finished is terminal", RecruitFinished, RecruitOpen, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &Matching{RecruitStatus: tc.from}
			err := m.ChangeRecruitStatus(tc.to)
			if tc.allowed && err != nil {
				t.Fatalf("expected %s -> %s to be allowed, got %v", tc.from, tc.to, err)
			}
			if !tc.allowed {
				if err == nil {
					t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
				}
				if m.RecruitStatus != tc.from {
					t.Fatalf("status mutated on rejected transition: got %s", m.RecruitStatus)
				}
			}
		})
	}
}

func TestIsOrganizer(t *testing.T) {
	m := &Matching{SiteUserID: "organizer-1"}
	if !m.IsOrganizer("organizer-1") {
		t.Error("organizer not recognized")
	}
	if m.IsOrganizer("someone-else") {
		t.Error("non-organizer recognized as organizer")
	}
}

func TestMatchingFilterIsEmpty(t *testing.T) {
	if !(MatchingFilter{}).IsEmpty() {
		t.Error("zero filter should be empty")
	}

	date := time.Now()
	populated := []MatchingFilter{
		{Date: &date},
		{Region: "Seoul"},
		{MatchingType: MatchingDouble},
		{Ntrp: "3.5"},
	}
	for i, f := range populated {
		if f.IsEmpty() {
			t.Errorf("filter %d should not be empty", i)
		}
	}
}

func TestPenalizeWeights(t *testing.T) {
	u := &SiteUser{}
	u.Penalize(PenaltyMatchingModify)
	if u.PenaltyScore != 1 {
		t.Fatalf("modify penalty: got %d, want 1", u.PenaltyScore)
	}
	u.Penalize(PenaltyMatchingDelete)
	if u.PenaltyScore != 3 {
		t.Fatalf("delete penalty: got %d, want 3", u.PenaltyScore)
	}
	u.Penalize(PenaltyType("UNKNOWN"))
	if u.PenaltyScore != 3 {
		t.Fatalf("unknown penalty type should add nothing: got %d", u.PenaltyScore)
	}
}

func TestApplyRequestFields(t *testing.T) {
	req := MatchingRequest{
		Title:        "Evening singles",
		Location:     "Olympic Park Tennis Center",
		RecruitNum:   4,
		MatchingType: MatchingDouble,
		Ntrp:         "4.0",
	}
	m := &Matching{Lat: 37.5, Lon: 127.1}
	m.ApplyRequestFields(req)

	if m.Title != req.Title || m.Location != req.Location || m.RecruitNum != 4 {
		t.Error("request fields not applied")
	}
	if m.Lat != 37.5 || m.Lon != 127.1 {
		t.Error("coordinates must not be touched by request fields")
	}
}
