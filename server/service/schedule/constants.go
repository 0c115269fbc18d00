package schedule

// Package-level constants for conflict detection.

const (
	// NearMissWindow is the largest gap, in minutes, between two same-day
	// meetings that still warrants a travel-time check.
	NearMissWindow = 30

	// MinutesPerDay bounds every parsed interval.
	MinutesPerDay = 24 * 60

	// elmsPlaceholder is the catalog's time string for sections with no fixed meeting.
	elmsPlaceholder = "Class time/details on ELMS"
)
