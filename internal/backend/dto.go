package backend

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tymer/internal/models"
)

// Wire types for the remote API. The backend schema is the source of
// truth; everything is mapped into internal/models before leaving this
// package.

type windowDTO struct {
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Label       string `json:"label"`
	DisplayText string `json:"display_text"`
}

type profileDTO struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarPath  string    `json:"avatar_path"`
	CreatedAt   time.Time `json:"created_at"`
}

type reactionDTO struct {
	ID              string     `json:"id"`
	Author          profileDTO `json:"author"`
	Type            string     `json:"type"`
	Text            string     `json:"text,omitempty"`
	DurationSeconds float64    `json:"duration_seconds,omitempty"`
	AudioPath       string     `json:"audio_path,omitempty"`
	Waveform        []float32  `json:"waveform,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type momentDTO struct {
	ID          string        `json:"id"`
	Author      profileDTO    `json:"author"`
	ImagePath   string        `json:"image_path"`
	CapturedAt  time.Time     `json:"captured_at"`
	Description string        `json:"description,omitempty"`
	Reactions   []reactionDTO `json:"reactions"`
}

// TokenPair is the credential pair issued by the auth endpoints
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (d windowDTO) toWindow() (models.TimeWindow, error) {
	return models.NewTimeWindow(d.Start, d.End, d.Label, d.DisplayText)
}

func (d profileDTO) toUser() (models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("invalid profile id %q: %w", d.ID, err)
	}
	return models.User{
		ID:          id,
		Username:    d.Username,
		DisplayName: d.DisplayName,
		AvatarPath:  d.AvatarPath,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func (d reactionDTO) toReaction() (models.Reaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Reaction{}, fmt.Errorf("invalid reaction id %q: %w", d.ID, err)
	}
	author, err := d.Author.toUser()
	if err != nil {
		return models.Reaction{}, err
	}
	duration := d.DurationSeconds
	if duration > models.MaxVoiceReactionSeconds {
		duration = models.MaxVoiceReactionSeconds
	}
	return models.Reaction{
		ID:              id,
		Author:          author,
		Type:            models.ReactionType(d.Type),
		Text:            d.Text,
		DurationSeconds: duration,
		AudioPath:       d.AudioPath,
		Waveform:        d.Waveform,
		CreatedAt:       d.CreatedAt,
	}, nil
}

func (d momentDTO) toMoment() (models.Moment, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Moment{}, fmt.Errorf("invalid moment id %q: %w", d.ID, err)
	}
	author, err := d.Author.toUser()
	if err != nil {
		return models.Moment{}, err
	}
	moment := models.Moment{
		ID:          id,
		Author:      author,
		ImagePath:   d.ImagePath,
		CapturedAt:  d.CapturedAt,
		Description: d.Description,
	}
	for _, r := range d.Reactions {
		reaction, err := r.toReaction()
		if err != nil {
			return models.Moment{}, err
		}
		moment.Reactions = append(moment.Reactions, reaction)
	}
	return moment, nil
}
