// Package common provides shared utilities across the application.
package common

import (
	"time"
)

// Date layouts.
const (
	// AsOfDateLayout stamps cache entries with a calendar day.
	AsOfDateLayout = "2006-01-02"
	// ProviderDateLayout is the compact date used in market-data requests and rows.
	ProviderDateLayout = "20060102"
)

// Clock returns the current time. Services take one so tests can roll the day over.
type Clock func() time.Time

// SystemClock is the wall clock in the process's local time zone.
func SystemClock() time.Time {
	return time.Now()
}

// AsOfDate returns the calendar day of t in its own location.
func AsOfDate(t time.Time) string {
	return t.Format(AsOfDateLayout)
}

// ProviderDate returns t formatted for provider date parameters (YYYYMMDD).
func ProviderDate(t time.Time) string {
	return t.Format(ProviderDateLayout)
}

// IsFresh reports whether an entry stamped asOfDate is still fresh at now.
// An entry is fresh only on the calendar day it was written; nothing survives midnight.
func IsFresh(asOfDate string, now time.Time) bool {
	if asOfDate == "" {
		return false
	}
	return asOfDate == AsOfDate(now)
}
