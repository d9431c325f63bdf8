package session

import (
	"context"

	"tymer/internal/backend"
	"tymer/internal/models"
	"tymer/internal/validation"
)

// PostMoment publishes today's moment. The local state flips to
// Posting immediately, before any network traffic, so the UI never
// waits on the backend. When the remote write fails the moment is kept
// as a local-only artifact instead of being lost.
func (s *Store) PostMoment(ctx context.Context, imageData []byte, description string) (models.Moment, error) {
	if err := validation.ValidateDescription(description); err != nil {
		return models.Moment{}, err
	}
	s.mu.Lock()
	if s.postState == PostStatePosting {
		s.mu.Unlock()
		return models.Moment{}, ErrPostInProgress
	}
	s.resetStaleDayLocked()
	if s.postState == PostStatePosted || s.hasPostedToday {
		s.mu.Unlock()
		return models.Moment{}, ErrAlreadyPostedToday
	}
	placeholder := s.applyLocalPostLocked(description)
	s.mu.Unlock()
	s.notify()

	return s.finishPost(ctx, placeholder, imageData, description), nil
}

// RetakeMoment replaces today's already posted moment with a new
// capture. This is the only way back from Posted to Posting.
func (s *Store) RetakeMoment(ctx context.Context, imageData []byte, description string) (models.Moment, error) {
	s.mu.Lock()
	if s.postState == PostStatePosting {
		s.mu.Unlock()
		return models.Moment{}, ErrPostInProgress
	}
	s.resetStaleDayLocked()
	if s.postState != PostStatePosted {
		s.mu.Unlock()
		return models.Moment{}, ErrNothingToRetake
	}
	prior := s.myTodayMoment
	placeholder := s.applyLocalPostLocked(description)
	s.mu.Unlock()
	s.notify()

	if prior != nil {
		if err := s.api.DeleteMoment(ctx, prior.ID); err != nil && !backend.IsCancelled(err) {
			s.log.Printf("failed to delete replaced moment %s: %v", prior.ID, err)
		}
		if err := s.local.DeleteLocalMoment(prior.ID.String()); err != nil {
			s.log.Printf("failed to delete local copy of %s: %v", prior.ID, err)
		}
	}

	return s.finishPost(ctx, placeholder, imageData, description), nil
}

// resetStaleDayLocked clears post state carried over from an earlier
// calendar day. The one-moment limit is scoped to the day of capture,
// not the process lifetime, so a session kept alive across midnight
// may post again. An in-flight post is left alone.
func (s *Store) resetStaleDayLocked() {
	if s.postState == PostStatePosting {
		return
	}
	if s.myTodayMoment != nil && !s.myTodayMoment.IsFromSameDay(s.clock.Now()) {
		s.myTodayMoment = nil
		s.postState = PostStateNotPosted
		s.hasPostedToday = false
	}
}

// applyLocalPostLocked is the synchronous half of the two-phase post:
// it always succeeds, installing an optimistic placeholder as today's
// moment
func (s *Store) applyLocalPostLocked(description string) models.Moment {
	placeholder := models.NewMoment(s.currentUser, "", description, s.clock.Now())
	s.postState = PostStatePosting
	s.myTodayMoment = &placeholder
	s.hasPostedToday = true
	s.lastPostErr = nil
	return placeholder
}

// finishPost runs the remote half: upload, create, reconcile
func (s *Store) finishPost(ctx context.Context, placeholder models.Moment, imageData []byte, description string) models.Moment {
	imagePath := ""
	if len(imageData) > 0 {
		path, err := s.api.UploadMomentImage(ctx, imageData)
		if err != nil {
			// Degraded path: the moment still goes out, just without
			// its image.
			s.log.Printf("image upload failed, posting without image: %v", err)
		} else {
			imagePath = path
		}
	}

	server, err := s.api.CreateMoment(ctx, imagePath, description)
	return s.reconcilePost(placeholder, server, err)
}

// reconcilePost merges the remote outcome into the optimistic local
// state. It is idempotent: replaying the same outcome leaves the same
// state.
//
// On success the server's copy wins when it echoes the placeholder id;
// otherwise the local moment is kept with the image path the server
// assigned. On failure the moment is persisted locally so the user's
// action survives, and the error is recorded for the UI. Either way the
// post ends in Posted.
func (s *Store) reconcilePost(placeholder models.Moment, server models.Moment, remoteErr error) models.Moment {
	final := placeholder

	if remoteErr == nil {
		if server.ID == placeholder.ID {
			final = server
		} else {
			final.ImagePath = server.ImagePath
		}
		if err := s.local.DeleteLocalMoment(placeholder.ID.String()); err != nil {
			s.log.Printf("failed to drop local copy of %s: %v", placeholder.ID, err)
		}
	} else {
		s.log.Printf("posting failed, keeping local copy: %v", remoteErr)
		if err := s.local.SaveLocalMoment(placeholder); err != nil {
			s.log.Printf("failed to persist local moment: %v", err)
		}
	}

	if err := s.local.SetLastPostDate(final.CapturedAt); err != nil {
		s.log.Printf("failed to record last post date: %v", err)
	}

	s.mu.Lock()
	s.postState = PostStatePosted
	s.myTodayMoment = &final
	s.hasPostedToday = true
	s.lastPostErr = remoteErr
	s.prependHistoryLocked(final)
	s.mu.Unlock()
	s.notify()
	return final
}

// prependHistoryLocked puts today's moment at the head of the weekly
// history, replacing any entry from the same day
func (s *Store) prependHistoryLocked(m models.Moment) {
	kept := make([]models.Moment, 0, len(s.weeklyHistory)+1)
	kept = append(kept, m)
	for _, old := range s.weeklyHistory {
		if old.IsFromSameDay(m.CapturedAt) {
			continue
		}
		kept = append(kept, old)
	}
	if len(kept) > weeklyHistoryLimit {
		kept = kept[:weeklyHistoryLimit]
	}
	s.weeklyHistory = kept
}
