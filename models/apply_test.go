package models

import "testing"

func TestApplyStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    ApplyStatus
		to      ApplyStatus
		allowed bool
	}{
		{"pending to accepted", ApplyPending, ApplyAccepted, true},
		{"pending to canceled", ApplyPending, ApplyCanceled, true},
		{"accepted to canceled", ApplyAccepted, ApplyCanceled, true},
		{"accepted back to pending", ApplyAccepted, ApplyPending, true},
		{"canceled is terminal", ApplyCanceled, ApplyPending, false},
		{"canceled cannot be accepted", ApplyCanceled, ApplyAccepted, false},
		{"pending cannot skip to itself", ApplyPending, ApplyPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apply := &Apply{ApplyStatus: tc.from}
			err := apply.ChangeApplyStatus(tc.to)
			if tc.allowed {
				if err != nil {
					t.Fatalf("expected transition %s -> %s to be allowed, got %v", tc.from, tc.to, err)
				}
				if apply.ApplyStatus != tc.to {
					t.Fatalf("status not updated: got %s", apply.ApplyStatus)
				}
			} else {
				if err == nil {
					t.Fatalf("expected transition %s -> %s to be rejected", tc.from, tc.to)
				}
				if apply.ApplyStatus != tc.from {
					t.Fatalf("status mutated on rejected transition: got %s", apply.ApplyStatus)
				}
			}
		})
	}
}

func TestApplyIsLive(t *testing.T) {
	if !(&Apply{ApplyStatus: ApplyPending}).IsLive() {
		t.Error("pending apply should be live")
	}
	if !(&Apply{ApplyStatus: ApplyAccepted}).IsLive() {
		t.Error("accepted apply should be live")
	}
	if (&Apply{ApplyStatus: ApplyCanceled}).IsLive() {
		t.Error("canceled apply should not be live")
	}
}

func TestLiveApplyStatuses(t *testing.T) {
	live := LiveApplyStatuses()
	if len(live) != 2 {
		t.Fatalf("want PENDING and ACCEPTED, got %v", live)
	}
	// Re-applying after a cancel is allowed because CANCELED never
	// counts as live.
	for _, status := range live {
		if status == ApplyCanceled {
			t.Fatal("canceled applies must not count as live")
		}
		a := &Apply{ApplyStatus: status}
		if !a.IsLive() {
			t.Fatalf("%s should agree with IsLive", status)
		}
	}
}
