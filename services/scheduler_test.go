package services

import (
	"testing"
	"time"
)

func TestJobInterval(t *testing.T) {
	const key = "CONFIRM_JOB_INTERVAL"

	t.Setenv(key, "")
	if got := jobInterval(key, time.Minute); got != time.Minute {
		t.Fatalf("empty env: got %s, want 1m0s", got)
	}

	t.Setenv(key, "30s")
	if got := jobInterval(key, time.Minute); got != 30*time.Second {
		t.Fatalf("override: got %s, want 30s", got)
	}

	t.Setenv(key, "soon")
	if got := jobInterval(key, time.Minute); got != time.Minute {
		t.Fatalf("unparsable value must fall back: got %s", got)
	}

	t.Setenv(key, "-5m")
	if got := jobInterval(key, time.Minute); got != time.Minute {
		t.Fatalf("non-positive value must fall back: got %s", got)
	}
}

func TestJobAtTime(t *testing.T) {
	const key = "WEATHER_JOB_TIME"

	t.Setenv(key, "")
	if h, m := jobAtTime(key, "06:30"); h != 6 || m != 30 {
		t.Fatalf("empty env: got %02d:%02d, want 06:30", h, m)
	}

	t.Setenv(key, "07:45")
	if h, m := jobAtTime(key, "06:30"); h != 7 || m != 45 {
		t.Fatalf("override: got %02d:%02d, want 07:45", h, m)
	}

	t.Setenv(key, "late")
	if h, m := jobAtTime(key, "06:30"); h != 6 || m != 30 {
		t.Fatalf("unparsable value must fall back: got %02d:%02d", h, m)
	}
}
