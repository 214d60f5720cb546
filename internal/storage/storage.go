package storage

import (
	"context"
	"errors"
	"time"

	"vidbot/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key already exists
	ErrDuplicate = errors.New("duplicate record")
)

// MixedSampleSize caps the random cross-category sample
const MixedSampleSize = 100

// VideoCatalog is the append-only store of indexed videos
type VideoCatalog interface {
	// AddVideo inserts the video and fills in its ID.
	// Returns ErrDuplicate if a video with the same FileID already exists.
	AddVideo(ctx context.Context, video *models.Video) error

	// ListVideosByCategory returns videos of one category in insertion order
	ListVideosByCategory(ctx context.Context, category int) ([]models.Video, error)

	// SampleVideos returns up to limit videos drawn at random from all categories.
	// Every call draws a new sample.
	SampleVideos(ctx context.Context, limit int) ([]models.Video, error)
	CountVideosByCategory(ctx context.Context, category int) (int, error)
}

// UserStore keeps one record per user.
//
// SaveUser is the read-repair point for premium expiry: implementations must
// persist IsPremium=false when PremiumExpires is not after the current time,
// whatever the caller passed in. Backends judge that against their own wall
// clock (time.Now), not an injected one; callers with their own clock repair
// before saving.
type UserStore interface {
	// GetUser returns ErrNotFound if the user has never interacted with the bot
	GetUser(ctx context.Context, userID int64) (models.UserState, error)
	SaveUser(ctx context.Context, user models.UserState) error
	ListUserIDs(ctx context.Context) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)

	// CountPremiumUsers counts users whose premium is active at now
	CountPremiumUsers(ctx context.Context, now time.Time) (int, error)
}

// BookmarkStore keeps per-user saved videos
type BookmarkStore interface {
	// AddBookmark returns ErrDuplicate if the (user, video) pair exists
	AddBookmark(ctx context.Context, bookmark models.Bookmark) error

	// ListBookmarks returns the user's bookmarks newest first
	ListBookmarks(ctx context.Context, userID int64) ([]models.Bookmark, error)
	CountBookmarks(ctx context.Context, userID int64) (int, error)
	HasBookmark(ctx context.Context, userID int64, videoID string) (bool, error)

	// RemoveBookmark returns ErrNotFound if there was nothing to remove
	RemoveBookmark(ctx context.Context, userID int64, videoID string) error
}

// VoteStore keeps one vote per (user, video)
type VoteStore interface {
	// UpsertVote overwrites any previous vote of the same user for the same video
	UpsertVote(ctx context.Context, vote models.Vote) error
	CountVotes(ctx context.Context, videoID string) (models.VoteCount, error)
}

// SettingsStore is a small key/value table for runtime toggles
type SettingsStore interface {
	// GetSetting returns ErrNotFound if the setting was never written
	GetSetting(ctx context.Context, name string) (models.Setting, error)
	SetSetting(ctx context.Context, name, value string) error
	ListSettings(ctx context.Context) ([]models.Setting, error)
}

// Storage defines the interface for data storage operations
type Storage interface {
	VideoCatalog
	UserStore
	BookmarkStore
	VoteStore
	SettingsStore

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}

// RepairPremium clears a premium flag whose expiry is at or before now.
// Backends call it from SaveUser.
func RepairPremium(user models.UserState, now time.Time) models.UserState {
	if user.IsPremium && user.PremiumExpires != nil && !user.PremiumExpires.After(now) {
		user.IsPremium = false
	}
	return user
}
