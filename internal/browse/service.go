// Package browse holds the bot's state machine: which video a user sees,
// how they move through a category, and the bookmark, vote, settings and
// premium bookkeeping around it. It knows nothing about Telegram.
//
// The service is stateless between calls. Every operation re-reads the user
// record and the category list from storage, so two concurrent requests from
// the same user may race; the last write to the user record wins.
package browse

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"vidbot/internal/models"
	"vidbot/internal/storage"
)

// MinFileIDLength is the shortest file reference accepted as playable
const MinFileIDLength = 20

// ShortIDLength is how many trailing characters of a video id are shown to users
const ShortIDLength = 5

// Service implements browsing, bookmarks, votes, settings and admin operations
type Service struct {
	db       storage.Storage
	logger   *zap.Logger
	channels map[int64]int
	now      func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithChannels sets the channel id to category table used by ingestion
func WithChannels(channels map[int64]int) Option {
	return func(s *Service) {
		s.channels = channels
	}
}

// NewService creates a browsing service on top of db
func NewService(db storage.Storage, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:       db,
		logger:   logger,
		channels: make(map[int64]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VideoView is what the transport needs to render one video
type VideoView struct {
	Video          models.Video
	ShortID        string
	LikePercentage int
	IsPremium      bool
	Index          int // 0-based position in the list
	Position       int // 1-based position for display
	Total          int
}

// IsPremiumActive reports whether the user's premium is in effect at now.
// The stored flag alone is not trusted.
func IsPremiumActive(user models.UserState, now time.Time) bool {
	if !user.IsPremium {
		return false
	}
	return user.PremiumExpires == nil || user.PremiumExpires.After(now)
}

// IsPlayable reports whether the video's file reference looks usable
func IsPlayable(video models.Video) bool {
	return len(video.FileID) >= MinFileIDLength
}

// ShortID returns the last ShortIDLength characters of id
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[len(id)-ShortIDLength:]
}

// EnsureUser returns the user's record, creating it with defaults on first contact
func (s *Service) EnsureUser(ctx context.Context, userID int64, username, firstName string) (models.UserState, bool, error) {
	user, err := s.db.GetUser(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if err = translate(err); !errors.Is(err, ErrNotFound) {
		return models.UserState{}, false, err
	}

	user = models.UserState{
		UserID:            userID,
		Username:          username,
		FirstName:         firstName,
		JoinedAt:          s.now(),
		CurrentCategory:   1,
		CurrentVideoIndex: 0,
	}
	if err := s.db.SaveUser(ctx, user); err != nil {
		return models.UserState{}, false, unavailable(err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", userID),
		zap.String("username", username),
	)
	return user, true, nil
}

// GetUser returns the stored user
func (s *Service) GetUser(ctx context.Context, userID int64) (models.UserState, error) {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return models.UserState{}, translate(err)
	}
	return user, nil
}

// Status returns the user with an explicit premium check. An expired flag is
// written back as false here rather than waiting for the next navigation.
func (s *Service) Status(ctx context.Context, userID int64) (models.UserState, bool, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.UserState{}, false, err
	}

	active := IsPremiumActive(user, s.now())
	if user.IsPremium && !active {
		user.IsPremium = false
		if err := s.saveUser(ctx, user); err != nil {
			return models.UserState{}, false, err
		}
		s.logger.Info("Expired premium cleared", zap.Int64("user_id", userID))
	}
	return user, active, nil
}

func (s *Service) saveUser(ctx context.Context, user models.UserState) error {
	user = storage.RepairPremium(user, s.now())
	if err := s.db.SaveUser(ctx, user); err != nil {
		return unavailable(err)
	}
	return nil
}
