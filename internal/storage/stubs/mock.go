package stubs

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidbot/internal/models"
	"vidbot/internal/storage"
)

type voteKey struct {
	userID  int64
	videoID string
}

// MockDB is an in-memory implementation of the Storage interface for testing
// and for running the bot without a database (USE_MOCK_DB=true)
type MockDB struct {
	mu        sync.RWMutex
	videos    []models.Video
	byFileID  map[string]int
	users     map[int64]models.UserState
	bookmarks map[int64][]models.Bookmark
	votes     map[voteKey]models.Vote
	settings  map[string]models.Setting

	// failing makes every call return err, to exercise unavailability paths
	failing error
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		byFileID:  make(map[string]int),
		users:     make(map[int64]models.UserState),
		bookmarks: make(map[int64][]models.Bookmark),
		votes:     make(map[voteKey]models.Vote),
		settings:  make(map[string]models.Setting),
	}
}

// Fail makes all subsequent calls return err. Pass nil to recover.
func (m *MockDB) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = err
}

// Initialize is a no-op for the mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// AddVideo appends a video, rejecting duplicate file ids
func (m *MockDB) AddVideo(ctx context.Context, video *models.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}

	if _, exists := m.byFileID[video.FileID]; exists {
		return storage.ErrDuplicate
	}
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	if video.AddedAt.IsZero() {
		video.AddedAt = time.Now()
	}

	m.byFileID[video.FileID] = len(m.videos)
	m.videos = append(m.videos, *video)
	return nil
}

// ListVideosByCategory returns the category's videos in insertion order
func (m *MockDB) ListVideosByCategory(ctx context.Context, category int) ([]models.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return nil, m.failing
	}

	var videos []models.Video
	for _, v := range m.videos {
		if v.Category == category {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// SampleVideos returns a fresh random sample of at most limit videos
func (m *MockDB) SampleVideos(ctx context.Context, limit int) ([]models.Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return nil, m.failing
	}

	perm := rand.Perm(len(m.videos))
	if limit < len(perm) {
		perm = perm[:limit]
	}
	videos := make([]models.Video, 0, len(perm))
	for _, i := range perm {
		videos = append(videos, m.videos[i])
	}
	return videos, nil
}

// CountVideosByCategory counts videos in one category
func (m *MockDB) CountVideosByCategory(ctx context.Context, category int) (int, error) {
	videos, err := m.ListVideosByCategory(ctx, category)
	return len(videos), err
}

// GetUser returns a user by id
func (m *MockDB) GetUser(ctx context.Context, userID int64) (models.UserState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return models.UserState{}, m.failing
	}

	user, ok := m.users[userID]
	if !ok {
		return models.UserState{}, storage.ErrNotFound
	}
	return user, nil
}

// SaveUser upserts a user, clearing an expired premium flag
func (m *MockDB) SaveUser(ctx context.Context, user models.UserState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}

	now := time.Now()
	user = storage.RepairPremium(user, now)
	user.UpdatedAt = now
	m.users[user.UserID] = user
	return nil
}

// ListUserIDs returns all known user ids in ascending order
func (m *MockDB) ListUserIDs(ctx context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return nil, m.failing
	}

	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// CountUsers counts all users
func (m *MockDB) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return 0, m.failing
	}
	return len(m.users), nil
}

// CountPremiumUsers counts users whose premium is active at now
func (m *MockDB) CountPremiumUsers(ctx context.Context, now time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return 0, m.failing
	}

	count := 0
	for _, u := range m.users {
		if u.IsPremium && (u.PremiumExpires == nil || u.PremiumExpires.After(now)) {
			count++
		}
	}
	return count, nil
}

// AddBookmark stores a bookmark, rejecting duplicates
func (m *MockDB) AddBookmark(ctx context.Context, bookmark models.Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}

	for _, b := range m.bookmarks[bookmark.UserID] {
		if b.VideoID == bookmark.VideoID {
			return storage.ErrDuplicate
		}
	}
	m.bookmarks[bookmark.UserID] = append(m.bookmarks[bookmark.UserID], bookmark)
	return nil
}

// ListBookmarks returns the user's bookmarks newest first
func (m *MockDB) ListBookmarks(ctx context.Context, userID int64) ([]models.Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return nil, m.failing
	}

	bookmarks := make([]models.Bookmark, len(m.bookmarks[userID]))
	copy(bookmarks, m.bookmarks[userID])
	// Stable so that equal timestamps keep reverse insertion order
	for i, j := 0, len(bookmarks)-1; i < j; i, j = i+1, j-1 {
		bookmarks[i], bookmarks[j] = bookmarks[j], bookmarks[i]
	}
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].CreatedAt.After(bookmarks[j].CreatedAt)
	})
	return bookmarks, nil
}

// CountBookmarks counts the user's bookmarks
func (m *MockDB) CountBookmarks(ctx context.Context, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return 0, m.failing
	}
	return len(m.bookmarks[userID]), nil
}

// HasBookmark reports whether the (user, video) pair is bookmarked
func (m *MockDB) HasBookmark(ctx context.Context, userID int64, videoID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return false, m.failing
	}

	for _, b := range m.bookmarks[userID] {
		if b.VideoID == videoID {
			return true, nil
		}
	}
	return false, nil
}

// RemoveBookmark deletes a bookmark
func (m *MockDB) RemoveBookmark(ctx context.Context, userID int64, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}

	list := m.bookmarks[userID]
	for i, b := range list {
		if b.VideoID == videoID {
			m.bookmarks[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// UpsertVote stores the vote, replacing any previous one
func (m *MockDB) UpsertVote(ctx context.Context, vote models.Vote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}

	if vote.UpdatedAt.IsZero() {
		vote.UpdatedAt = time.Now()
	}
	m.votes[voteKey{vote.UserID, vote.VideoID}] = vote
	return nil
}

// CountVotes aggregates likes and dislikes for a video
func (m *MockDB) CountVotes(ctx context.Context, videoID string) (models.VoteCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return models.VoteCount{}, m.failing
	}

	var count models.VoteCount
	for key, vote := range m.votes {
		if key.videoID != videoID {
			continue
		}
		if vote.Liked {
			count.Likes++
		} else {
			count.Dislikes++
		}
	}
	return count, nil
}

// GetSetting returns a setting by name
func (m *MockDB) GetSetting(ctx context.Context, name string) (models.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return models.Setting{}, m.failing
	}

	setting, ok := m.settings[name]
	if !ok {
		return models.Setting{}, storage.ErrNotFound
	}
	return setting, nil
}

// SetSetting upserts a setting
func (m *MockDB) SetSetting(ctx context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return m.failing
	}

	m.settings[name] = models.Setting{Name: name, Value: value, UpdatedAt: time.Now()}
	return nil
}

// ListSettings returns all settings sorted by name
func (m *MockDB) ListSettings(ctx context.Context) ([]models.Setting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failing != nil {
		return nil, m.failing
	}

	settings := make([]models.Setting, 0, len(m.settings))
	for _, s := range m.settings {
		settings = append(settings, s)
	}
	sort.Slice(settings, func(i, j int) bool {
		return settings[i].Name < settings[j].Name
	})
	return settings, nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
