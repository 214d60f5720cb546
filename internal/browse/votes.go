package browse

import (
	"context"

	"go.uber.org/zap"

	"vidbot/internal/models"
)

// DefaultLikePercentage is shown for videos nobody has voted on yet
const DefaultLikePercentage = 77

// LikePercentage returns likes/(likes+dislikes) as a whole percentage,
// truncated. Videos without votes, or a failing vote store, yield
// DefaultLikePercentage.
func (s *Service) LikePercentage(ctx context.Context, videoID string) int {
	count, err := s.db.CountVotes(ctx, videoID)
	if err != nil {
		s.logger.Error("Failed to count votes", zap.Error(err), zap.String("video_id", videoID))
		return DefaultLikePercentage
	}
	return likePercentage(count)
}

func likePercentage(count models.VoteCount) int {
	total := count.Likes + count.Dislikes
	if total <= 0 {
		return DefaultLikePercentage
	}
	return count.Likes * 100 / total
}

// CastVote records the user's vote, replacing any earlier one, and returns
// the video's updated percentage
func (s *Service) CastVote(ctx context.Context, userID int64, videoID string, liked bool) (int, error) {
	err := s.db.UpsertVote(ctx, models.Vote{
		UserID:    userID,
		VideoID:   videoID,
		Liked:     liked,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return DefaultLikePercentage, unavailable(err)
	}
	return s.LikePercentage(ctx, videoID), nil
}

// VoteCurrent votes on the video the user is looking at and returns the
// refreshed view
func (s *Service) VoteCurrent(ctx context.Context, userID int64, liked bool) (VideoView, error) {
	view, err := s.ResolveCurrentVideo(ctx, userID)
	if err != nil {
		return VideoView{}, err
	}

	pct, err := s.CastVote(ctx, userID, view.Video.ID, liked)
	if err != nil {
		return VideoView{}, err
	}
	view.LikePercentage = pct
	return view, nil
}
