package event

import "sort"

// Rank returns a new slice ordered from most highly rated to least.
// Events with equal ratings keep their relative input order. Neither the
// input slice nor the events themselves are modified.
func Rank(events []*Event) []*Event {
	ranked := make([]*Event, len(events))
	copy(ranked, events)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rating > ranked[j].Rating
	})

	return ranked
}
