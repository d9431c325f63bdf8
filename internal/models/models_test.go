package models

import (
	"testing"
	"time"
)

func TestNewTimeWindowValidation(t *testing.T) {
	tests := []struct {
		name    string
		start   int
		end     int
		wantErr bool
	}{
		{
			name:  "valid morning window",
			start: 8,
			end:   9,
		},
		{
			name:  "full day window",
			start: 0,
			end:   24,
		},
		{
			name:    "start equals end",
			start:   10,
			end:     10,
			wantErr: true,
		},
		{
			name:    "start after end",
			start:   20,
			end:     8,
			wantErr: true,
		},
		{
			name:    "negative start",
			start:   -1,
			end:     5,
			wantErr: true,
		},
		{
			name:    "end past midnight",
			start:   20,
			end:     25,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeWindow(tt.start, tt.end, "test", "test")
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTimeWindow(%d, %d) error = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
			}
		})
	}
}

func TestTimeWindowContains(t *testing.T) {
	window := TimeWindow{Start: 8, End: 9, Label: "Morning"}

	tests := []struct {
		hour int
		want bool
	}{
		{7, false},
		{8, true},
		{9, false}, // end hour is exclusive
		{23, false},
	}

	for _, tt := range tests {
		if got := window.Contains(tt.hour); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestNewVoiceReactionClampsDuration(t *testing.T) {
	author := User{Username: "marie"}
	now := time.Now()

	tests := []struct {
		name     string
		duration float64
		want     float64
	}{
		{
			name:     "within limit",
			duration: 2.5,
			want:     2.5,
		},
		{
			name:     "over limit clamped",
			duration: 7.2,
			want:     3.0,
		},
		{
			name:     "negative clamped to zero",
			duration: -1,
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewVoiceReaction(author, tt.duration, "voice.m4a", nil, now)
			if r.DurationSeconds != tt.want {
				t.Errorf("DurationSeconds = %v, want %v", r.DurationSeconds, tt.want)
			}
			if r.Type != ReactionTypeVoice {
				t.Errorf("Type = %v, want %v", r.Type, ReactionTypeVoice)
			}
		})
	}
}

func TestMomentIsFromSameDay(t *testing.T) {
	captured := time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)
	moment := Moment{CapturedAt: captured}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{
			name: "same day later",
			at:   time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC),
			want: true,
		},
		{
			name: "next day",
			at:   time.Date(2025, 3, 15, 8, 30, 0, 0, time.UTC),
			want: false,
		},
		{
			name: "previous day",
			at:   time.Date(2025, 3, 13, 23, 59, 0, 0, time.UTC),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moment.IsFromSameDay(tt.at); got != tt.want {
				t.Errorf("IsFromSameDay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppendReactionPreservesOrder(t *testing.T) {
	moment := Moment{}
	author := User{Username: "paul"}
	now := time.Now()

	first := NewTextReaction(author, "first", now)
	second := NewTextReaction(author, "second", now)
	moment.AppendReaction(first)
	moment.AppendReaction(second)

	if len(moment.Reactions) != 2 {
		t.Fatalf("expected 2 reactions, got %d", len(moment.Reactions))
	}
	if moment.Reactions[0].Text != "first" || moment.Reactions[1].Text != "second" {
		t.Errorf("reactions out of order: %q, %q", moment.Reactions[0].Text, moment.Reactions[1].Text)
	}
}
