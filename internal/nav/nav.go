// Package nav models navigation as an explicit state machine: a screen
// enum plus a transition table. Rendering lives elsewhere; consumers
// only ask which moves are legal.
package nav

import "fmt"

// Screen identifies a top-level screen of the app
type Screen int

const (
	ScreenOnboarding Screen = iota
	ScreenFeed
	ScreenCamera
	ScreenFriends
	ScreenProfile
	ScreenSettings
)

func (s Screen) String() string {
	switch s {
	case ScreenOnboarding:
		return "onboarding"
	case ScreenFeed:
		return "feed"
	case ScreenCamera:
		return "camera"
	case ScreenFriends:
		return "friends"
	case ScreenProfile:
		return "profile"
	case ScreenSettings:
		return "settings"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// transitions lists the legal moves out of each screen. Onboarding is
// one-way; everything else routes through the feed.
var transitions = map[Screen][]Screen{
	ScreenOnboarding: {ScreenFeed},
	ScreenFeed:       {ScreenCamera, ScreenFriends, ScreenProfile, ScreenSettings},
	ScreenCamera:     {ScreenFeed},
	ScreenFriends:    {ScreenFeed, ScreenProfile},
	ScreenProfile:    {ScreenFeed, ScreenSettings},
	ScreenSettings:   {ScreenFeed},
}

// ErrIllegalTransition is returned for a move the table does not allow
type ErrIllegalTransition struct {
	From, To Screen
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal navigation from %s to %s", e.From, e.To)
}

// Machine tracks the current screen
type Machine struct {
	current Screen
	guard   func(to Screen) bool
}

// NewMachine starts on the given screen; new installs begin at
// onboarding, returning users at the feed
func NewMachine(start Screen) *Machine {
	return &Machine{current: start}
}

// SetGuard installs a veto consulted after the table allows a move.
// The caller wires runtime conditions through it, such as keeping the
// camera unreachable while no window is open. A nil guard vetoes
// nothing.
func (m *Machine) SetGuard(guard func(to Screen) bool) {
	m.guard = guard
}

// Current returns the screen the user is on
func (m *Machine) Current() Screen {
	return m.current
}

// CanTransition reports whether moving to the given screen is legal
func (m *Machine) CanTransition(to Screen) bool {
	for _, allowed := range transitions[m.current] {
		if allowed == to {
			if m.guard != nil && !m.guard(to) {
				return false
			}
			return true
		}
	}
	return false
}

// Transition moves to the given screen if the table allows it
func (m *Machine) Transition(to Screen) error {
	if !m.CanTransition(to) {
		return &ErrIllegalTransition{From: m.current, To: to}
	}
	m.current = to
	return nil
}
