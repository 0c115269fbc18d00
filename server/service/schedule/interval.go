package schedule

// Overlaps reports whether a and b share any minute on the same weekday.
// Touching endpoints do not overlap, and Other never overlaps anything.
func Overlaps(a, b TimeInterval) bool {
	if a.Day == Other || b.Day == Other {
		return false
	}
	return a.Day == b.Day && a.Start < b.End && b.Start < a.End
}

// GapMinutes returns the shorter back-to-back gap between two intervals on
// the same day. It is only meaningful when the intervals do not overlap.
func GapMinutes(a, b TimeInterval) int {
	return min(abs(b.Start-a.End), abs(a.Start-b.End))
}

// isNearMiss reports whether a and b are distinct same-day meetings close
// enough that walking between them might not be possible.
func isNearMiss(a, b TimeInterval) bool {
	return a.Day != Other && a.Day == b.Day && !Overlaps(a, b) && GapMinutes(a, b) <= NearMissWindow
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
