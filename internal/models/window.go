package models

import "fmt"

// TimeWindow is a configured daily time range during which the feed is
// visible. Start and End are hours of the day; a window spans
// [Start:00, End:00). Windows are immutable once constructed.
type TimeWindow struct {
	Start       int
	End         int
	Label       string
	DisplayText string
}

// NewTimeWindow validates and constructs a time window.
// The invariant is 0 <= Start < End <= 24.
func NewTimeWindow(start, end int, label, displayText string) (TimeWindow, error) {
	if start < 0 || end > 24 || start >= end {
		return TimeWindow{}, fmt.Errorf("invalid time window %d-%d: start must be before end and within the day", start, end)
	}
	return TimeWindow{Start: start, End: end, Label: label, DisplayText: displayText}, nil
}

// Contains reports whether the given hour of the day falls inside the window
func (w TimeWindow) Contains(hour int) bool {
	return w.Start <= hour && hour < w.End
}

// DefaultWindows is the hardcoded fallback used when no window
// configuration could be loaded from the backend
func DefaultWindows() []TimeWindow {
	return []TimeWindow{
		{Start: 8, End: 9, Label: "Morning", DisplayText: "Matin"},
		{Start: 19, End: 20, Label: "Evening", DisplayText: "Soir"},
	}
}
