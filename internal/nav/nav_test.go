package nav

import (
	"errors"
	"testing"
	"time"

	"tymer/internal/schedule"
)

func TestLegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Screen
		to   Screen
		ok   bool
	}{
		{"onboarding to feed", ScreenOnboarding, ScreenFeed, true},
		{"feed to camera", ScreenFeed, ScreenCamera, true},
		{"camera back to feed", ScreenCamera, ScreenFeed, true},
		{"feed to settings", ScreenFeed, ScreenSettings, true},
		{"onboarding cannot skip to camera", ScreenOnboarding, ScreenCamera, false},
		{"camera cannot jump to settings", ScreenCamera, ScreenSettings, false},
		{"feed cannot return to onboarding", ScreenFeed, ScreenOnboarding, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.from)
			if got := m.CanTransition(tt.to); got != tt.ok {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
			}
		})
	}
}

func TestTransitionMovesOnlyWhenLegal(t *testing.T) {
	m := NewMachine(ScreenFeed)

	if err := m.Transition(ScreenCamera); err != nil {
		t.Fatalf("Transition to camera failed: %v", err)
	}
	if m.Current() != ScreenCamera {
		t.Errorf("Current = %s, want camera", m.Current())
	}

	err := m.Transition(ScreenSettings)
	if err == nil {
		t.Fatal("expected illegal transition error")
	}
	var illegal *ErrIllegalTransition
	if !errors.As(err, &illegal) {
		t.Fatalf("expected *ErrIllegalTransition, got %T", err)
	}
	if m.Current() != ScreenCamera {
		t.Errorf("failed transition moved the machine to %s", m.Current())
	}
}

// cameraGuard blocks the camera unless the window status says open,
// mirroring how the entrypoint wires the machine to the session store.
func cameraGuard(status schedule.WindowStatus) func(to Screen) bool {
	return func(to Screen) bool {
		return to != ScreenCamera || status.IsOpen
	}
}

func TestCameraGatedByWindowStatus(t *testing.T) {
	closedAt := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	openAt := time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)

	t.Run("rejected while closed", func(t *testing.T) {
		m := NewMachine(ScreenFeed)
		m.SetGuard(cameraGuard(schedule.ComputeStatus(nil, closedAt, false)))

		if m.CanTransition(ScreenCamera) {
			t.Error("camera reachable while every window is closed")
		}
		var illegal *ErrIllegalTransition
		if err := m.Transition(ScreenCamera); !errors.As(err, &illegal) {
			t.Fatalf("Transition = %v, want *ErrIllegalTransition", err)
		}
		if !m.CanTransition(ScreenFriends) {
			t.Error("guard blocked a screen it should not gate")
		}
	})

	t.Run("allowed while open", func(t *testing.T) {
		m := NewMachine(ScreenFeed)
		m.SetGuard(cameraGuard(schedule.ComputeStatus(nil, openAt, false)))

		if err := m.Transition(ScreenCamera); err != nil {
			t.Fatalf("Transition to camera failed inside an open window: %v", err)
		}
	})

	t.Run("allowed under debug override", func(t *testing.T) {
		m := NewMachine(ScreenFeed)
		m.SetGuard(cameraGuard(schedule.ComputeStatus(nil, closedAt, true)))

		if err := m.Transition(ScreenCamera); err != nil {
			t.Fatalf("Transition to camera failed under the override: %v", err)
		}
	})
}
