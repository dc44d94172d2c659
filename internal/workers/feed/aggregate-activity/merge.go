// internal/workers/feed/aggregate-activity/merge.go
package aggregateactivity

import (
	"time"

	"sponsorhub-workers/internal/models"
)

// timestamped pairs a feed entry with its parsed timestamp so the merge
// compares times instead of strings.
type timestamped struct {
	event models.ActivityEvent
	at    time.Time
}

// mergeByRecency interleaves two lists that are each already sorted by
// descending timestamp. The merge is stable: entries from the same list
// keep their relative order, and on a cross-list tie the entry from the
// first list wins.
func mergeByRecency(a, b []timestamped) []models.ActivityEvent {
	merged := make([]models.ActivityEvent, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if !a[i].at.Before(b[j].at) {
			merged = append(merged, a[i].event)
			i++
		} else {
			merged = append(merged, b[j].event)
			j++
		}
	}
	for ; i < len(a); i++ {
		merged = append(merged, a[i].event)
	}
	for ; j < len(b); j++ {
		merged = append(merged, b[j].event)
	}
	return merged
}
