package model

import "time"

// Dataset is an ordered, read-only collection of events from one source.
type Dataset struct {
	Source   string    // example name or uploaded file name
	Uploaded bool      // true when the events came from a user file
	LoadedAt time.Time // when the source was parsed
	Events   []Event
}

// Len returns the number of events.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Events)
}

// Filter returns the events whose type is accepted by keep, in order.
// The dataset itself is never modified.
func (d *Dataset) Filter(keep func(EventType) bool) []Event {
	if d == nil {
		return nil
	}
	out := make([]Event, 0, len(d.Events))
	for _, e := range d.Events {
		if keep(e.Type) {
			out = append(out, e)
		}
	}
	return out
}

// CountByType returns how many events of each type the dataset holds.
func (d *Dataset) CountByType() map[EventType]int {
	counts := make(map[EventType]int, len(EventTypes))
	if d == nil {
		return counts
	}
	for _, e := range d.Events {
		counts[e.Type]++
	}
	return counts
}

// Head returns at most n leading events.
func (d *Dataset) Head(n int) []Event {
	if d == nil || n <= 0 {
		return nil
	}
	if n > len(d.Events) {
		n = len(d.Events)
	}
	return d.Events[:n]
}
