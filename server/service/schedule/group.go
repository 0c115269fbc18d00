package schedule

// Group is a maximal set of TimeBlocks connected by the overlap relation.
type Group []TimeBlock

// GroupOverlapping partitions blocks into groups of directly or transitively
// overlapping blocks. Each block joins every existing group it overlaps,
// merging them. Output order follows the order groups were last merged.
func GroupOverlapping(blocks []TimeBlock) []Group {
	var groups []Group

	for _, block := range blocks {
		merged := Group{block}
		kept := groups[:0:0]

		for _, group := range groups {
			if groupOverlaps(group, block) {
				merged = append(merged, group...)
			} else {
				kept = append(kept, group)
			}
		}

		groups = append(kept, merged)
	}

	return groups
}

func groupOverlaps(group Group, block TimeBlock) bool {
	for _, member := range group {
		if Overlaps(member.TimeInterval, block.TimeInterval) {
			return true
		}
	}
	return false
}
