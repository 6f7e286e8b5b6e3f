package common

import (
	"testing"
	"time"
)

// Helper to create a time easily
func mustTime(t *testing.T, layout, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func TestIsFresh(t *testing.T) {
	const layout = "2006-01-02 15:04:05"

	tests := []struct {
		name      string
		asOfDate  string
		now       string
		wantFresh bool
	}{
		{"same day morning", "2025-03-14", "2025-03-14 09:30:00", true},
		{"same day last second", "2025-03-14", "2025-03-14 23:59:59", true},
		{"next day midnight", "2025-03-14", "2025-03-15 00:00:00", false},
		{"previous entry week old", "2025-03-07", "2025-03-14 10:00:00", false},
		{"entry dated in future", "2025-03-15", "2025-03-14 10:00:00", false},
		{"empty stamp", "", "2025-03-14 10:00:00", false},
		{"malformed stamp", "20250314", "2025-03-14 10:00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := mustTime(t, layout, tt.now)
			if got := IsFresh(tt.asOfDate, now); got != tt.wantFresh {
				t.Errorf("IsFresh(%q, %s) = %v, want %v", tt.asOfDate, tt.now, got, tt.wantFresh)
			}
		})
	}
}

func TestAsOfDateAndProviderDate(t *testing.T) {
	now := mustTime(t, "2006-01-02 15:04", "2025-01-06 16:45")

	if got := AsOfDate(now); got != "2025-01-06" {
		t.Errorf("AsOfDate() = %q", got)
	}
	if got := ProviderDate(now); got != "20250106" {
		t.Errorf("ProviderDate() = %q", got)
	}
}

func TestIsFresh_RoundTripsAsOfDate(t *testing.T) {
	now := mustTime(t, "2006-01-02 15:04", "2025-06-30 08:00")
	stamp := AsOfDate(now)

	if !IsFresh(stamp, now.Add(15*time.Hour)) {
		t.Errorf("expected %s to be fresh later the same day", stamp)
	}
	if IsFresh(stamp, now.Add(16*time.Hour)) {
		t.Errorf("expected %s to be stale after midnight", stamp)
	}
}
