package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tymer/internal/models"
	"tymer/internal/schedule"
)

// MaxFriends is the friend-circle cap; adds beyond it are rejected
const MaxFriends = 25

// weeklyHistoryLimit is how many of the user's own recent moments a
// refresh pulls
const weeklyHistoryLimit = 7

var (
	ErrPostInProgress     = errors.New("a post is already in progress")
	ErrAlreadyPostedToday = errors.New("already posted today")
	ErrNothingToRetake    = errors.New("no posted moment to retake")
	ErrMomentNotFound     = errors.New("moment not found")
	ErrFriendLimitReached = errors.New("friend limit reached")
)

// PostState tracks today's post through its lifecycle
type PostState int

const (
	PostStateNotPosted PostState = iota
	PostStatePosting
	PostStatePosted
)

func (s PostState) String() string {
	switch s {
	case PostStateNotPosted:
		return "not-posted"
	case PostStatePosting:
		return "posting"
	case PostStatePosted:
		return "posted"
	default:
		return "unknown"
	}
}

// Backend is the slice of the remote client the store depends on
type Backend interface {
	FetchWindows(ctx context.Context) ([]models.TimeWindow, error)
	FetchFriends(ctx context.Context) ([]models.User, error)
	FetchFriendsMoments(ctx context.Context) ([]models.Moment, error)
	FetchMyMoments(ctx context.Context, limit int) ([]models.Moment, error)
	HasPostedToday(ctx context.Context) (bool, error)
	UploadMomentImage(ctx context.Context, data []byte) (string, error)
	CreateMoment(ctx context.Context, imagePath, description string) (models.Moment, error)
	DeleteMoment(ctx context.Context, id uuid.UUID) error
	AddTextReaction(ctx context.Context, momentID uuid.UUID, text string) error
	AddVoiceReaction(ctx context.Context, momentID uuid.UUID, durationSeconds float64, voicePath string) error
	AddFriend(ctx context.Context, username string) (models.User, error)
	RemoveFriend(ctx context.Context, userID uuid.UUID) error
}

// LocalStore is the on-device persistence the store falls back to when
// the backend is unreachable
type LocalStore interface {
	SaveLocalMoment(m models.Moment) error
	LocalMomentForDay(t time.Time) (*models.Moment, error)
	DeleteLocalMoment(id string) error
	ClearLocalMoments() error
	SetLastPostDate(t time.Time) error
	DebugAlwaysOpen() bool
}

// Store is the observable session state: the friend circle, today's
// posts, and the gating inputs. All mutation happens under the store
// lock; background fetches marshal their results back by taking it, so
// there are never concurrent writers.
type Store struct {
	api   Backend
	local LocalStore
	clock schedule.Clock
	log   *log.Logger

	mu             sync.Mutex
	currentUser    models.User
	friends        []models.User
	friendsMoments []models.Moment
	momentIndex    map[uuid.UUID]int
	myTodayMoment  *models.Moment
	weeklyHistory  []models.Moment
	windows        []models.TimeWindow
	postState      PostState
	hasPostedToday bool
	isLoading      bool
	lastPostErr    error
	cancelLoad     context.CancelFunc
	loadGen        int
	observers      []func()

	syncWG sync.WaitGroup
}

// NewStore creates an empty session store
func NewStore(api Backend, local LocalStore, clock schedule.Clock, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		api:         api,
		local:       local,
		clock:       clock,
		log:         logger,
		momentIndex: map[uuid.UUID]int{},
	}
}

// SetCurrentUser records the signed-in user
func (s *Store) SetCurrentUser(u models.User) {
	s.mu.Lock()
	s.currentUser = u
	s.mu.Unlock()
	s.notify()
}

// CurrentUser returns the signed-in user
func (s *Store) CurrentUser() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser
}

// Friends returns a copy of the friend circle
func (s *Store) Friends() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, len(s.friends))
	copy(out, s.friends)
	return out
}

// FriendsMoments returns a copy of the friends' feed
func (s *Store) FriendsMoments() []models.Moment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Moment, len(s.friendsMoments))
	copy(out, s.friendsMoments)
	return out
}

// MyTodayMoment returns today's own post, nil when not posted
func (s *Store) MyTodayMoment() *models.Moment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.myTodayMoment == nil {
		return nil
	}
	m := *s.myTodayMoment
	return &m
}

// WeeklyHistory returns a copy of the user's own recent moments,
// newest first
func (s *Store) WeeklyHistory() []models.Moment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Moment, len(s.weeklyHistory))
	copy(out, s.weeklyHistory)
	return out
}

// HasPostedToday reports whether a moment was posted during the
// current day
func (s *Store) HasPostedToday() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPostedToday
}

// PostState returns where today's post is in its lifecycle
func (s *Store) PostState() PostState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postState
}

// IsLoading reports whether a refresh is in flight
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// LastPostError returns the error recorded when the last post degraded
// to local-only persistence, nil when the post reached the backend
func (s *Store) LastPostError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPostErr
}

// Windows returns the configured time windows
func (s *Store) Windows() []models.TimeWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.TimeWindow, len(s.windows))
	copy(out, s.windows)
	return out
}

// SetWindows atomically replaces the window configuration
func (s *Store) SetWindows(windows []models.TimeWindow) {
	s.mu.Lock()
	s.windows = windows
	s.mu.Unlock()
	s.notify()
}

// Status computes the current gating state
func (s *Store) Status() schedule.WindowStatus {
	s.mu.Lock()
	windows := s.windows
	s.mu.Unlock()
	return schedule.ComputeStatus(windows, s.clock.Now(), s.local.DebugAlwaysOpen())
}

// BlurRadius computes the teaser blur for the current instant
func (s *Store) BlurRadius() float64 {
	return schedule.BlurRadius(s.Status())
}

// setFriendsMomentsLocked replaces the friends' feed and rebuilds the
// id index that keeps reaction appends O(1)
func (s *Store) setFriendsMomentsLocked(moments []models.Moment) {
	s.friendsMoments = moments
	s.momentIndex = make(map[uuid.UUID]int, len(moments))
	for i, m := range moments {
		s.momentIndex[m.ID] = i
	}
}

// RestoreLocalMoment rehydrates today's post from the local fallback
// copy, used at startup when the last post never reached the backend
func (s *Store) RestoreLocalMoment() {
	m, err := s.local.LocalMomentForDay(s.clock.Now())
	if err != nil {
		s.log.Printf("failed to restore local moment: %v", err)
		return
	}
	if m == nil {
		return
	}

	s.mu.Lock()
	if s.myTodayMoment == nil {
		s.myTodayMoment = m
		s.hasPostedToday = true
		s.postState = PostStatePosted
	}
	s.mu.Unlock()
	s.notify()
}

// ClearAllData resets every piece of session state. It must run after
// sign-out, before the next account's LoadData, so nothing from the
// previous account remains visible.
func (s *Store) ClearAllData() {
	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.currentUser = models.User{}
	s.friends = nil
	s.setFriendsMomentsLocked(nil)
	s.myTodayMoment = nil
	s.weeklyHistory = nil
	s.windows = nil
	s.postState = PostStateNotPosted
	s.hasPostedToday = false
	s.isLoading = false
	s.lastPostErr = nil
	s.mu.Unlock()

	if err := s.local.ClearLocalMoments(); err != nil {
		s.log.Printf("failed to clear local moments: %v", err)
	}
	s.notify()
}

// RegisterObserver adds a callback invoked after every state change.
// Callbacks run outside the store lock and read through the accessors.
func (s *Store) RegisterObserver(fn func()) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	observers := make([]func(), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// WaitForSync blocks until all fire-and-forget remote writes have
// settled. Called on shutdown so reactions are not dropped mid-flight.
func (s *Store) WaitForSync() {
	s.syncWG.Wait()
}

// RunStatusTicker recomputes the gating status every period and wakes
// the observers, until the context ends. Run it on its own goroutine.
func (s *Store) RunStatusTicker(ctx context.Context, period time.Duration) {
	ticks, stop := s.clock.Tick(period)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			s.notify()
		}
	}
}
