package models

import (
	"time"

	"github.com/google/uuid"
)

// ReactionType distinguishes text reactions from voice reactions
type ReactionType string

const (
	ReactionTypeText  ReactionType = "text"
	ReactionTypeVoice ReactionType = "voice"
)

// MaxVoiceReactionSeconds is the longest a voice reaction may be;
// recordings are clamped, never rejected
const MaxVoiceReactionSeconds = 3.0

// Reaction is a single reaction on a moment. Reactions are immutable
// once created and kept in insertion order on the moment.
type Reaction struct {
	ID              uuid.UUID
	Author          User
	Type            ReactionType
	Text            string
	DurationSeconds float64
	AudioPath       string
	Waveform        []float32
	CreatedAt       time.Time
}

// NewTextReaction creates a text reaction from the given author
func NewTextReaction(author User, text string, createdAt time.Time) Reaction {
	return Reaction{
		ID:        uuid.New(),
		Author:    author,
		Type:      ReactionTypeText,
		Text:      text,
		CreatedAt: createdAt,
	}
}

// NewVoiceReaction creates a voice reaction from the given author.
// The duration is clamped to [0, MaxVoiceReactionSeconds].
func NewVoiceReaction(author User, durationSeconds float64, audioPath string, waveform []float32, createdAt time.Time) Reaction {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	if durationSeconds > MaxVoiceReactionSeconds {
		durationSeconds = MaxVoiceReactionSeconds
	}
	return Reaction{
		ID:              uuid.New(),
		Author:          author,
		Type:            ReactionTypeVoice,
		DurationSeconds: durationSeconds,
		AudioPath:       audioPath,
		Waveform:        waveform,
		CreatedAt:       createdAt,
	}
}
