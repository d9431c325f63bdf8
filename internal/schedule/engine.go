package schedule

import (
	"fmt"
	"sort"
	"time"

	"tymer/internal/models"
)

// DemoModeCountdown is the sentinel countdown text reported while the
// debug override keeps the feed permanently open
const DemoModeCountdown = "Mode démo"

// WindowStatus is the derived gating state at a single instant. It is
// never stored; recompute it from the window list and a timestamp.
type WindowStatus struct {
	IsOpen                   bool
	ActiveWindow             *models.TimeWindow
	SecondsRemainingInWindow int
	SecondsUntilNextWindow   int
	CountdownText            string
}

// ComputeStatus determines whether the feed is open at the given time.
//
// The open scan walks the windows in input order and picks the first
// one containing the current hour. The next-window scan, used only when
// nothing is open, walks a copy sorted by start hour. The two scans
// deliberately use different orders: the open scan honors the
// configured priority, the countdown always points at the soonest
// opening.
func ComputeStatus(windows []models.TimeWindow, now time.Time, debugOverride bool) WindowStatus {
	if len(windows) == 0 {
		windows = models.DefaultWindows()
	}

	if debugOverride {
		active := windows[0]
		return WindowStatus{
			IsOpen:        true,
			ActiveWindow:  &active,
			CountdownText: DemoModeCountdown,
		}
	}

	hour := now.Hour()

	// Open scan: first match in input order wins.
	for _, w := range windows {
		if w.Contains(hour) {
			active := w
			end := time.Date(now.Year(), now.Month(), now.Day(), w.End, 0, 0, 0, now.Location())
			return WindowStatus{
				IsOpen:                   true,
				ActiveWindow:             &active,
				SecondsRemainingInWindow: int(end.Sub(now).Seconds()),
			}
		}
	}

	// Closed: find the soonest upcoming window, scanning sorted by start.
	sorted := make([]models.TimeWindow, len(windows))
	copy(sorted, windows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var next models.TimeWindow
	var nextStart time.Time
	found := false
	for _, w := range sorted {
		if w.Start > hour {
			next = w
			nextStart = time.Date(now.Year(), now.Month(), now.Day(), w.Start, 0, 0, 0, now.Location())
			found = true
			break
		}
	}
	if !found {
		// Nothing left today, the earliest window tomorrow is next.
		next = sorted[0]
		tomorrow := now.AddDate(0, 0, 1)
		nextStart = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), next.Start, 0, 0, 0, now.Location())
	}

	seconds := int(nextStart.Sub(now).Seconds())
	return WindowStatus{
		SecondsUntilNextWindow: seconds,
		CountdownText:          formatCountdown(next.Label, seconds),
	}
}

// formatCountdown renders the time until the next window opening
func formatCountdown(label string, seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%s dans %dh%d", label, seconds/3600, (seconds%3600)/60)
	}
	return fmt.Sprintf("Dans %dmin", seconds/60)
}

// Teaser blur parameters: content stays at maxBlur until the next
// opening is closer than maxBlurDuration, then eases linearly down to
// minBlur, clearing entirely only once the window is open.
const (
	maxBlurDurationSeconds = 21600
	maxBlur                = 30.0
	minBlur                = 8.0
)

// BlurRadius computes the teaser blur intensity for the given status.
// It is continuous and non-increasing as the next opening approaches.
func BlurRadius(status WindowStatus) float64 {
	if status.IsOpen {
		return 0
	}
	if status.SecondsUntilNextWindow >= maxBlurDurationSeconds {
		return maxBlur
	}
	return minBlur + (maxBlur-minBlur)*(float64(status.SecondsUntilNextWindow)/float64(maxBlurDurationSeconds))
}
