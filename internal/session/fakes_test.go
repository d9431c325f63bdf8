package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tymer/internal/models"
)

// fakeBackend implements Backend with per-endpoint hooks. A nil hook
// succeeds with a zero value. Mutating calls are recorded for
// assertions.
type fakeBackend struct {
	fetchWindows       func(ctx context.Context) ([]models.TimeWindow, error)
	fetchFriends       func(ctx context.Context) ([]models.User, error)
	fetchFriendsMoms   func(ctx context.Context) ([]models.Moment, error)
	fetchMyMoments     func(ctx context.Context, limit int) ([]models.Moment, error)
	hasPostedToday     func(ctx context.Context) (bool, error)
	uploadMomentImage  func(ctx context.Context, data []byte) (string, error)
	createMoment       func(ctx context.Context, imagePath, description string) (models.Moment, error)
	deleteMoment       func(ctx context.Context, id uuid.UUID) error
	addTextReaction    func(ctx context.Context, momentID uuid.UUID, text string) error
	addVoiceReaction   func(ctx context.Context, momentID uuid.UUID, duration float64, voicePath string) error
	addFriend          func(ctx context.Context, username string) (models.User, error)
	removeFriendRemote func(ctx context.Context, userID uuid.UUID) error

	mu             sync.Mutex
	deletedMoments []uuid.UUID
	removedFriends []uuid.UUID
	createdPaths   []string
}

func (f *fakeBackend) FetchWindows(ctx context.Context) ([]models.TimeWindow, error) {
	if f.fetchWindows != nil {
		return f.fetchWindows(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) FetchFriends(ctx context.Context) ([]models.User, error) {
	if f.fetchFriends != nil {
		return f.fetchFriends(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) FetchFriendsMoments(ctx context.Context) ([]models.Moment, error) {
	if f.fetchFriendsMoms != nil {
		return f.fetchFriendsMoms(ctx)
	}
	return nil, nil
}

func (f *fakeBackend) FetchMyMoments(ctx context.Context, limit int) ([]models.Moment, error) {
	if f.fetchMyMoments != nil {
		return f.fetchMyMoments(ctx, limit)
	}
	return nil, nil
}

func (f *fakeBackend) HasPostedToday(ctx context.Context) (bool, error) {
	if f.hasPostedToday != nil {
		return f.hasPostedToday(ctx)
	}
	return false, nil
}

func (f *fakeBackend) UploadMomentImage(ctx context.Context, data []byte) (string, error) {
	if f.uploadMomentImage != nil {
		return f.uploadMomentImage(ctx, data)
	}
	return "uploads/default.jpg", nil
}

func (f *fakeBackend) CreateMoment(ctx context.Context, imagePath, description string) (models.Moment, error) {
	f.mu.Lock()
	f.createdPaths = append(f.createdPaths, imagePath)
	f.mu.Unlock()
	if f.createMoment != nil {
		return f.createMoment(ctx, imagePath, description)
	}
	return models.Moment{}, nil
}

func (f *fakeBackend) DeleteMoment(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	f.deletedMoments = append(f.deletedMoments, id)
	f.mu.Unlock()
	if f.deleteMoment != nil {
		return f.deleteMoment(ctx, id)
	}
	return nil
}

func (f *fakeBackend) AddTextReaction(ctx context.Context, momentID uuid.UUID, text string) error {
	if f.addTextReaction != nil {
		return f.addTextReaction(ctx, momentID, text)
	}
	return nil
}

func (f *fakeBackend) AddVoiceReaction(ctx context.Context, momentID uuid.UUID, duration float64, voicePath string) error {
	if f.addVoiceReaction != nil {
		return f.addVoiceReaction(ctx, momentID, duration, voicePath)
	}
	return nil
}

func (f *fakeBackend) AddFriend(ctx context.Context, username string) (models.User, error) {
	if f.addFriend != nil {
		return f.addFriend(ctx, username)
	}
	return models.User{ID: uuid.New(), Username: username}, nil
}

func (f *fakeBackend) RemoveFriend(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	f.removedFriends = append(f.removedFriends, userID)
	f.mu.Unlock()
	if f.removeFriendRemote != nil {
		return f.removeFriendRemote(ctx, userID)
	}
	return nil
}

// fakeLocal is an in-memory LocalStore
type fakeLocal struct {
	mu           sync.Mutex
	saved        map[string]models.Moment
	lastPostDate time.Time
	alwaysOpen   bool
	cleared      bool
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{saved: map[string]models.Moment{}}
}

func (f *fakeLocal) SaveLocalMoment(m models.Moment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[m.ID.String()] = m
	return nil
}

func (f *fakeLocal) LocalMomentForDay(t time.Time) (*models.Moment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.saved {
		if m.IsFromSameDay(t) {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeLocal) DeleteLocalMoment(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, id)
	return nil
}

func (f *fakeLocal) ClearLocalMoments() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = map[string]models.Moment{}
	f.cleared = true
	return nil
}

func (f *fakeLocal) SetLastPostDate(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPostDate = t
	return nil
}

func (f *fakeLocal) DebugAlwaysOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alwaysOpen
}

// fakeClock pins the session to a fixed instant and lets tests fire
// ticks by hand
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	ticks chan time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now, ticks: make(chan time.Time, 1)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) Tick(period time.Duration) (<-chan time.Time, func()) {
	return c.ticks, func() {}
}
