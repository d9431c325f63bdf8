package models

import (
	"time"

	"github.com/google/uuid"
)

// Moment is a single daily post: one photo, an optional description,
// and an append-only list of reactions
type Moment struct {
	ID          uuid.UUID
	Author      User
	ImagePath   string
	CapturedAt  time.Time
	Description string
	Reactions   []Reaction
}

// NewMoment creates a moment captured at the given time
func NewMoment(author User, imagePath, description string, capturedAt time.Time) Moment {
	return Moment{
		ID:          uuid.New(),
		Author:      author,
		ImagePath:   imagePath,
		CapturedAt:  capturedAt,
		Description: description,
	}
}

// IsFromSameDay reports whether the moment was captured on the same
// calendar day as the given time, in that time's location
func (m *Moment) IsFromSameDay(t time.Time) bool {
	y1, m1, d1 := m.CapturedAt.In(t.Location()).Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// AppendReaction adds a reaction to the end of the moment's reaction
// list, preserving insertion order
func (m *Moment) AppendReaction(r Reaction) {
	m.Reactions = append(m.Reactions, r)
}
