package session

import (
	"context"

	"github.com/google/uuid"

	"tymer/internal/models"
	"tymer/internal/validation"
)

// AddTextReaction appends a text reaction to the given moment. The
// append is applied locally first; the remote write runs in the
// background and a failure there never rolls the reaction back.
// Reactions are eventually consistent.
func (s *Store) AddTextReaction(ctx context.Context, momentID uuid.UUID, text string) error {
	if err := validation.ValidateReactionText(text); err != nil {
		return err
	}
	s.mu.Lock()
	reaction := models.NewTextReaction(s.currentUser, text, s.clock.Now())
	if !s.appendReactionLocked(momentID, reaction) {
		s.mu.Unlock()
		return ErrMomentNotFound
	}
	s.mu.Unlock()
	s.notify()

	// The write outlives the caller's context; WaitForSync bounds it
	// instead, so a dismissed screen cannot drop the sync.
	syncCtx := context.WithoutCancel(ctx)
	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		if err := s.api.AddTextReaction(syncCtx, momentID, text); err != nil {
			s.log.Printf("text reaction sync failed for %s, kept locally: %v", momentID, err)
		}
	}()
	return nil
}

// AddVoiceReaction appends a voice reaction to the given moment. The
// duration is clamped to the three second cap before anything is
// stored or sent. Same consistency policy as text reactions.
func (s *Store) AddVoiceReaction(ctx context.Context, momentID uuid.UUID, durationSeconds float64, audioPath string, waveform []float32) error {
	s.mu.Lock()
	reaction := models.NewVoiceReaction(s.currentUser, durationSeconds, audioPath, waveform, s.clock.Now())
	if !s.appendReactionLocked(momentID, reaction) {
		s.mu.Unlock()
		return ErrMomentNotFound
	}
	s.mu.Unlock()
	s.notify()

	syncCtx := context.WithoutCancel(ctx)
	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		if err := s.api.AddVoiceReaction(syncCtx, momentID, reaction.DurationSeconds, audioPath); err != nil {
			s.log.Printf("voice reaction sync failed for %s, kept locally: %v", momentID, err)
		}
	}()
	return nil
}

// appendReactionLocked finds the target moment and appends in place.
// Friends' moments are located through the id index, so the append
// costs O(1) amortized and never disturbs other moments.
func (s *Store) appendReactionLocked(momentID uuid.UUID, r models.Reaction) bool {
	if s.myTodayMoment != nil && s.myTodayMoment.ID == momentID {
		s.myTodayMoment.AppendReaction(r)
		return true
	}
	if i, ok := s.momentIndex[momentID]; ok {
		s.friendsMoments[i].AppendReaction(r)
		return true
	}
	return false
}
