package browse

import (
	"errors"
	"fmt"

	"vidbot/internal/storage"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyBookmarked  = errors.New("video already bookmarked")
	ErrLimitExceeded      = errors.New("bookmark limit reached")
	ErrNoVideosInCategory = errors.New("no videos in category")
	ErrNoValidVideos      = errors.New("no valid videos in category")
	ErrUnavailable        = errors.New("storage unavailable")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// unavailable wraps a storage failure so callers can match ErrUnavailable
// while the cause stays in the message
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// translate maps storage sentinels onto the package's error kinds
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	default:
		return unavailable(err)
	}
}
