package session

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tymer/internal/backend"
	"tymer/internal/models"
)

// LoadData refreshes the session from the backend: friends, friends'
// moments, own recent moments and the posted-today flag, fetched in
// parallel. Each fetch independently replaces its slice of state on
// success and leaves it untouched on failure, so partial completion is
// a normal outcome. A newer call cancels whatever the previous one
// still has in flight; those requests report cancellation and are
// dropped silently.
func (s *Store) LoadData(ctx context.Context) {
	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	s.loadGen++
	gen := s.loadGen
	s.isLoading = true
	s.mu.Unlock()
	s.notify()

	// A plain group, not WithContext: one failed fetch must not cancel
	// its siblings.
	var g errgroup.Group

	g.Go(func() error {
		friends, err := s.api.FetchFriends(ctx)
		if err != nil {
			s.logFetchError("friends", err)
			return nil
		}
		s.mu.Lock()
		s.friends = friends
		s.mu.Unlock()
		s.notify()
		return nil
	})

	g.Go(func() error {
		moments, err := s.api.FetchFriendsMoments(ctx)
		if err != nil {
			s.logFetchError("friends' moments", err)
			return nil
		}
		s.mu.Lock()
		s.setFriendsMomentsLocked(moments)
		s.mu.Unlock()
		s.notify()
		return nil
	})

	g.Go(func() error {
		moments, err := s.api.FetchMyMoments(ctx, weeklyHistoryLimit)
		if err != nil {
			s.logFetchError("own moments", err)
			return nil
		}
		s.mu.Lock()
		s.weeklyHistory = moments
		s.reconcileTodayMomentLocked(moments)
		s.mu.Unlock()
		s.notify()
		return nil
	})

	g.Go(func() error {
		posted, err := s.api.HasPostedToday(ctx)
		if err != nil {
			s.logFetchError("posted-today flag", err)
			return nil
		}
		s.mu.Lock()
		s.resetStaleDayLocked()
		// A degraded post the server never received still counts as
		// today's moment; the server's flag cannot retract it.
		if s.myTodayMoment != nil && s.myTodayMoment.IsFromSameDay(s.clock.Now()) {
			posted = true
		}
		s.hasPostedToday = posted
		if posted && s.postState == PostStateNotPosted {
			s.postState = PostStatePosted
		} else if !posted && s.postState == PostStatePosted {
			s.postState = PostStateNotPosted
		}
		s.mu.Unlock()
		s.notify()
		return nil
	})

	g.Wait()

	s.mu.Lock()
	// A newer refresh may have started while we waited; only the
	// latest one owns the loading flag and cancel func.
	if s.loadGen == gen {
		s.isLoading = false
		s.cancelLoad = nil
	}
	s.mu.Unlock()
	cancel()
	s.notify()
}

// reconcileTodayMomentLocked adopts the server's copy of today's post
// when the fetched history contains one. A locally persisted post from
// the current day with no server copy is kept; a fetch never destroys
// it. A moment left over from a previous day is discarded first.
func (s *Store) reconcileTodayMomentLocked(history []models.Moment) {
	s.resetStaleDayLocked()
	now := s.clock.Now()
	for i := range history {
		if history[i].IsFromSameDay(now) {
			m := history[i]
			s.myTodayMoment = &m
			s.hasPostedToday = true
			if s.postState == PostStateNotPosted {
				s.postState = PostStatePosted
			}
			return
		}
	}
}

// LoadWindows fetches the window configuration, falling back to the
// hardcoded defaults when none has ever been loaded
func (s *Store) LoadWindows(ctx context.Context) {
	windows, err := s.api.FetchWindows(ctx)
	if err != nil {
		s.logFetchError("windows", err)
		s.mu.Lock()
		if len(s.windows) == 0 {
			s.windows = models.DefaultWindows()
		}
		s.mu.Unlock()
		s.notify()
		return
	}
	if len(windows) == 0 {
		windows = models.DefaultWindows()
	}
	s.SetWindows(windows)
}

// logFetchError applies the shared refresh failure policy: cancelled
// requests were superseded and are dropped silently, anything else is
// logged and the existing state kept
func (s *Store) logFetchError(what string, err error) {
	if backend.IsCancelled(err) {
		return
	}
	s.log.Printf("failed to refresh %s: %v", what, err)
}
