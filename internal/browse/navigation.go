package browse

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vidbot/internal/models"
	"vidbot/internal/storage"
)

// Direction selects which way Advance moves
type Direction int

const (
	Next Direction = iota
	Previous
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// ParseCategory maps a category token from a button to a category number.
// "mix" selects the mixed view; anything unrecognised falls back to category 1.
func ParseCategory(token string) int {
	token = strings.TrimSpace(strings.ToLower(token))
	if token == "mix" {
		return models.CategoryMixed
	}
	n, err := strconv.Atoi(token)
	if err != nil || !validCategory(n) {
		return 1
	}
	return n
}

func validCategory(category int) bool {
	return category == models.CategoryMixed || (category >= 1 && category <= models.CategoryCount)
}

// videosFor loads the list a user browses. The mixed view is a new random
// sample on every call, so positions in it are not stable between requests.
func (s *Service) videosFor(ctx context.Context, category int) ([]models.Video, error) {
	var (
		videos []models.Video
		err    error
	)
	if category == models.CategoryMixed {
		videos, err = s.db.SampleVideos(ctx, storage.MixedSampleSize)
	} else {
		videos, err = s.db.ListVideosByCategory(ctx, category)
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return videos, nil
}

// firstPlayable walks forward from start, wrapping once, to the first video
// with a usable file reference
func firstPlayable(videos []models.Video, start int) (int, bool) {
	for i := 0; i < len(videos); i++ {
		idx := (start + i) % len(videos)
		if IsPlayable(videos[idx]) {
			return idx, true
		}
	}
	return 0, false
}

// ResolveCurrentVideo returns the video at the user's current position.
// An out-of-range index is reset to 0 and corrupt entries are skipped; either
// correction is persisted.
func (s *Service) ResolveCurrentVideo(ctx context.Context, userID int64) (VideoView, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return VideoView{}, err
	}

	videos, err := s.videosFor(ctx, user.CurrentCategory)
	if err != nil {
		return VideoView{}, err
	}
	if len(videos) == 0 {
		return VideoView{}, ErrNoVideosInCategory
	}

	idx := user.CurrentVideoIndex
	if idx < 0 || idx >= len(videos) {
		idx = 0
	}

	valid, ok := firstPlayable(videos, idx)
	if !ok {
		s.logger.Warn("No playable videos in category",
			zap.Int64("user_id", userID),
			zap.Int("category", user.CurrentCategory),
			zap.Int("videos", len(videos)),
		)
		return VideoView{}, ErrNoValidVideos
	}
	if valid != idx {
		s.logger.Warn("Skipped invalid video",
			zap.String("video_id", videos[idx].ID),
			zap.Int("from_index", idx),
			zap.Int("to_index", valid),
		)
	}

	if valid != user.CurrentVideoIndex {
		user.CurrentVideoIndex = valid
		if err := s.saveUser(ctx, user); err != nil {
			return VideoView{}, err
		}
	}

	return s.view(ctx, user, videos, valid), nil
}

// Advance moves the user one step in the given direction, cycling at both ends.
// Only Next counts as a watched video. An empty category changes nothing.
func (s *Service) Advance(ctx context.Context, userID int64, direction Direction) (VideoView, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return VideoView{}, err
	}

	videos, err := s.videosFor(ctx, user.CurrentCategory)
	if err != nil {
		return VideoView{}, err
	}
	n := len(videos)
	if n == 0 {
		return VideoView{}, ErrNoVideosInCategory
	}

	idx := user.CurrentVideoIndex
	if direction == Next {
		idx = ((idx+1)%n + n) % n
		user.WatchedCount++
	} else {
		idx = ((idx-1)%n + n) % n
	}

	valid, ok := firstPlayable(videos, idx)
	if !ok {
		return VideoView{}, ErrNoValidVideos
	}

	user.CurrentVideoIndex = valid
	if err := s.saveUser(ctx, user); err != nil {
		return VideoView{}, err
	}

	s.logger.Debug("Advanced",
		zap.Int64("user_id", userID),
		zap.Stringer("direction", direction),
		zap.Int("index", valid),
		zap.Int("total", n),
	)
	return s.view(ctx, user, videos, valid), nil
}

// SwitchCategory moves the user to a category and rewinds to its first video.
// Categories outside 1..CategoryCount (other than mixed) become category 1.
func (s *Service) SwitchCategory(ctx context.Context, userID int64, category int) (models.UserState, error) {
	if !validCategory(category) {
		category = 1
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return models.UserState{}, err
	}

	user.CurrentCategory = category
	user.CurrentVideoIndex = 0
	if err := s.saveUser(ctx, user); err != nil {
		return models.UserState{}, err
	}
	return user, nil
}

func (s *Service) view(ctx context.Context, user models.UserState, videos []models.Video, idx int) VideoView {
	video := videos[idx]
	return VideoView{
		Video:          video,
		ShortID:        ShortID(video.ID),
		LikePercentage: s.LikePercentage(ctx, video.ID),
		IsPremium:      IsPremiumActive(user, s.now()),
		Index:          idx,
		Position:       idx + 1,
		Total:          len(videos),
	}
}
