package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tymer/internal/backend"
	"tymer/internal/models"
	"tymer/internal/validation"
)

// AddFriend adds the user with the given username to the friend
// circle. The add is rejected outright once the circle is full; the
// backend resolves the username, so this one is not optimistic.
func (s *Store) AddFriend(ctx context.Context, username string) (models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	if len(s.friends) >= MaxFriends {
		s.mu.Unlock()
		return models.User{}, ErrFriendLimitReached
	}
	s.mu.Unlock()

	friend, err := s.api.AddFriend(ctx, username)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to add friend %q: %w", username, err)
	}

	s.mu.Lock()
	if len(s.friends) >= MaxFriends {
		s.mu.Unlock()
		return models.User{}, ErrFriendLimitReached
	}
	s.friends = append(s.friends, friend)
	s.mu.Unlock()
	s.notify()
	return friend, nil
}

// RemoveFriend removes a friend and, locally, every moment of theirs
// from the loaded feed. The cascade happens regardless of whether the
// remote delete succeeds; a failure there is only logged.
func (s *Store) RemoveFriend(ctx context.Context, userID uuid.UUID) {
	s.mu.Lock()
	kept := s.friends[:0]
	for _, f := range s.friends {
		if f.ID != userID {
			kept = append(kept, f)
		}
	}
	s.friends = kept

	moments := make([]models.Moment, 0, len(s.friendsMoments))
	for _, m := range s.friendsMoments {
		if m.Author.ID != userID {
			moments = append(moments, m)
		}
	}
	s.setFriendsMomentsLocked(moments)
	s.mu.Unlock()
	s.notify()

	if err := s.api.RemoveFriend(ctx, userID); err != nil && !backend.IsCancelled(err) {
		s.log.Printf("failed to remove friend %s remotely: %v", userID, err)
	}
}
