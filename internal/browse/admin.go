package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vidbot/internal/models"
	"vidbot/internal/storage"
)

// MaxPremiumDays bounds a single premium grant
const MaxPremiumDays = 3650

// GrantPremium gives the user premium for days days from now
func (s *Service) GrantPremium(ctx context.Context, userID int64, days int) (time.Time, error) {
	if days < 1 || days > MaxPremiumDays {
		return time.Time{}, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidArgument, MaxPremiumDays)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}

	expires := s.now().AddDate(0, 0, days)
	user.IsPremium = true
	user.PremiumExpires = &expires
	if err := s.saveUser(ctx, user); err != nil {
		return time.Time{}, err
	}

	s.logger.Info("Premium granted",
		zap.Int64("user_id", userID),
		zap.Int("days", days),
		zap.Time("expires", expires),
	)
	return expires, nil
}

// RevokePremium removes the user's premium
func (s *Service) RevokePremium(ctx context.Context, userID int64) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	user.IsPremium = false
	user.PremiumExpires = nil
	if err := s.saveUser(ctx, user); err != nil {
		return err
	}

	s.logger.Info("Premium revoked", zap.Int64("user_id", userID))
	return nil
}

// Stats collects user and catalog counters
func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	total, err := s.db.CountUsers(ctx)
	if err != nil {
		return models.Stats{}, unavailable(err)
	}
	premium, err := s.db.CountPremiumUsers(ctx, s.now())
	if err != nil {
		return models.Stats{}, unavailable(err)
	}

	stats := models.Stats{
		TotalUsers:        total,
		PremiumUsers:      premium,
		VideosPerCategory: make(map[int]int, models.CategoryCount),
	}
	for cat := 1; cat <= models.CategoryCount; cat++ {
		n, err := s.db.CountVideosByCategory(ctx, cat)
		if err != nil {
			return models.Stats{}, unavailable(err)
		}
		stats.VideosPerCategory[cat] = n
	}
	return stats, nil
}

// ListUserIDs returns every known user id, for broadcasts
func (s *Service) ListUserIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.db.ListUserIDs(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	return ids, nil
}

// IngestRequest describes a video posted to a channel
type IngestRequest struct {
	ChannelID int64
	FileID    string
	FileName  string
	FileSize  int64
}

// CategoryForChannel looks up the category a channel feeds
func (s *Service) CategoryForChannel(channelID int64) (int, bool) {
	cat, ok := s.channels[channelID]
	return cat, ok
}

// IngestVideo indexes a channel post. Posts from channels outside the table
// return ErrNotFound; a file reference that is already indexed is not an
// error and reports added=false.
func (s *Service) IngestVideo(ctx context.Context, req IngestRequest) (models.Video, bool, error) {
	category, ok := s.CategoryForChannel(req.ChannelID)
	if !ok {
		return models.Video{}, false, ErrNotFound
	}
	if req.FileID == "" {
		return models.Video{}, false, fmt.Errorf("%w: empty file id", ErrInvalidArgument)
	}

	now := s.now()
	name := req.FileName
	if name == "" {
		name = "Video_" + now.Format("20060102_150405")
	}

	video := models.Video{
		FileID:   req.FileID,
		FileName: name,
		Category: category,
		FileSize: req.FileSize,
		AddedAt:  now,
	}
	err := s.db.AddVideo(ctx, &video)
	if errors.Is(err, storage.ErrDuplicate) {
		s.logger.Debug("Video already indexed", zap.String("file_id", req.FileID))
		return video, false, nil
	}
	if err != nil {
		return models.Video{}, false, unavailable(err)
	}

	s.logger.Info("Video indexed",
		zap.String("video_id", video.ID),
		zap.Int("category", category),
		zap.String("file_name", name),
		zap.Int64("file_size", req.FileSize),
	)
	return video, true, nil
}
