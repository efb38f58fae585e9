package services

import (
	"errors"
	"testing"

	"github.com/hyun-Jin-Park-4808/racket-puncher-server/models"
)

func TestDecideCapacity(t *testing.T) {
	cases := []struct {
		name     string
		accepted int
		capacity int
		current  models.RecruitStatus
		want     models.RecruitStatus
		wantErr  bool
	}{
		{"over capacity rejected", 5, 4, models.RecruitOpen, models.RecruitOpen, true},
		{"exact capacity fills up", 4, 4, models.RecruitOpen, models.RecruitFull, false},
		{"full stays full at capacity", 4, 4, models.RecruitFull, models.RecruitFull, false},
		{"freed seat reopens a full matching", 3, 4, models.RecruitFull, models.RecruitOpen, false},
		{"under capacity stays open", 2, 4, models.RecruitOpen, models.RecruitOpen, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decideCapacity(tc.accepted, tc.capacity, tc.current)
			if tc.wantErr {
				if !errors.Is(err, models.ErrRecruitNumOver) {
					t.Fatalf("want RECRUIT_NUM_OVER, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFreeSeat(t *testing.T) {
	full := &models.Matching{RecruitNum: 4, AcceptedNum: 4, RecruitStatus: models.RecruitFull}
	if err := freeSeat(full); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full.AcceptedNum != 3 {
		t.Fatalf("accepted: got %d, want 3", full.AcceptedNum)
	}
	if full.RecruitStatus != models.RecruitOpen {
		t.Fatalf("full matching must reopen when a seat frees, got %s", full.RecruitStatus)
	}

	open := &models.Matching{RecruitNum: 4, AcceptedNum: 2, RecruitStatus: models.RecruitOpen}
	if err := freeSeat(open); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.AcceptedNum != 1 || open.RecruitStatus != models.RecruitOpen {
		t.Fatalf("open matching after freed seat: got %d seats, status %s", open.AcceptedNum, open.RecruitStatus)
	}

	empty := &models.Matching{RecruitNum: 4, AcceptedNum: 0, RecruitStatus: models.RecruitOpen}
	if err := freeSeat(empty); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.AcceptedNum != 0 {
		t.Fatalf("accepted count must not go negative: got %d", empty.AcceptedNum)
	}
}
