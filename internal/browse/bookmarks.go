package browse

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"vidbot/internal/models"
	"vidbot/internal/storage"
)

// MaxBookmarks is how many videos a user may keep bookmarked at once
const MaxBookmarks = 5

// AddBookmark saves video for the user. The cap is checked before the
// duplicate, matching the order users see the messages in.
func (s *Service) AddBookmark(ctx context.Context, userID int64, video models.Video) error {
	count, err := s.db.CountBookmarks(ctx, userID)
	if err != nil {
		return unavailable(err)
	}
	if count >= MaxBookmarks {
		return ErrLimitExceeded
	}

	exists, err := s.db.HasBookmark(ctx, userID, video.ID)
	if err != nil {
		return unavailable(err)
	}
	if exists {
		return ErrAlreadyBookmarked
	}

	err = s.db.AddBookmark(ctx, models.Bookmark{
		UserID:    userID,
		VideoID:   video.ID,
		FileID:    video.FileID,
		FileName:  video.FileName,
		Category:  video.Category,
		CreatedAt: s.now(),
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return ErrAlreadyBookmarked
	}
	if err != nil {
		return unavailable(err)
	}

	s.logger.Info("Bookmark added",
		zap.Int64("user_id", userID),
		zap.String("video_id", video.ID),
	)
	return nil
}

// BookmarkCurrent bookmarks the video the user is looking at
func (s *Service) BookmarkCurrent(ctx context.Context, userID int64) (VideoView, error) {
	view, err := s.ResolveCurrentVideo(ctx, userID)
	if err != nil {
		return VideoView{}, err
	}
	return view, s.AddBookmark(ctx, userID, view.Video)
}

// ListBookmarks returns the user's bookmarks, newest first
func (s *Service) ListBookmarks(ctx context.Context, userID int64) ([]models.Bookmark, error) {
	bookmarks, err := s.db.ListBookmarks(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	return bookmarks, nil
}

// RemoveBookmark deletes a bookmark. Removing one that does not exist
// reports ErrNotFound and changes nothing.
func (s *Service) RemoveBookmark(ctx context.Context, userID int64, videoID string) error {
	if err := s.db.RemoveBookmark(ctx, userID, videoID); err != nil {
		return translate(err)
	}
	return nil
}
