package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"vidbot/internal/models"
	"vidbot/internal/storage"
	"vidbot/migrations"
)

const videoColumns = `id, file_id, file_name, category, file_size, added_at`

const userColumns = `user_id, username, first_name, joined_at, is_premium, premium_expires,
	current_category, current_video_index, watched_count, updated_at`

var _ storage.Storage = (*ClickHouseDB)(nil)

type ClickHouseDB struct {
	conn    clickhouse.Conn
	options *clickhouse.Options
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn, options: options}, nil
}

// Initialize applies the embedded goose migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	sqlDB := clickhouse.OpenDB(db.options)
	defer sqlDB.Close()

	return migrations.Up(ctx, sqlDB)
}

// AddVideo inserts a video unless its file id is already indexed
func (db *ClickHouseDB) AddVideo(ctx context.Context, video *models.Video) error {
	var count uint64
	err := db.conn.QueryRow(ctx, `SELECT count() FROM videos WHERE file_id = ?`, video.FileID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check video: %w", err)
	}
	if count > 0 {
		return storage.ErrDuplicate
	}

	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	if video.AddedAt.IsZero() {
		video.AddedAt = time.Now()
	}

	err = db.conn.Exec(ctx, `INSERT INTO videos (`+videoColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		video.ID, video.FileID, video.FileName, int32(video.Category), video.FileSize, video.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to add video: %w", err)
	}
	return nil
}

// ListVideosByCategory returns the category's videos oldest first
func (db *ClickHouseDB) ListVideosByCategory(ctx context.Context, category int) ([]models.Video, error) {
	return db.queryVideos(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE category = ? ORDER BY added_at, id`, int32(category))
}

// SampleVideos draws a random sample across all categories
func (db *ClickHouseDB) SampleVideos(ctx context.Context, limit int) ([]models.Video, error) {
	return db.queryVideos(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY rand() LIMIT ?`, limit)
}

// CountVideosByCategory counts videos in one category
func (db *ClickHouseDB) CountVideosByCategory(ctx context.Context, category int) (int, error) {
	var count uint64
	err := db.conn.QueryRow(ctx, `SELECT count() FROM videos WHERE category = ?`, int32(category)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return int(count), nil
}

func (db *ClickHouseDB) queryVideos(ctx context.Context, query string, args ...any) ([]models.Video, error) {
	rows, err := db.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var (
			video    models.Video
			category int32
		)
		if err := rows.Scan(&video.ID, &video.FileID, &video.FileName, &category, &video.FileSize, &video.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		video.Category = int(category)
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// GetUser returns the latest version of a user row
func (db *ClickHouseDB) GetUser(ctx context.Context, userID int64) (models.UserState, error) {
	row := db.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users FINAL WHERE user_id = ?`, userID)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserState{}, storage.ErrNotFound
	}
	if err != nil {
		return models.UserState{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanUser(row driver.Row) (models.UserState, error) {
	var (
		user                    models.UserState
		category, index, watched int32
	)
	err := row.Scan(&user.UserID, &user.Username, &user.FirstName, &user.JoinedAt, &user.IsPremium,
		&user.PremiumExpires, &category, &index, &watched, &user.UpdatedAt)
	if err != nil {
		return models.UserState{}, err
	}
	user.CurrentCategory = int(category)
	user.CurrentVideoIndex = int(index)
	user.WatchedCount = int(watched)
	return user, nil
}

// SaveUser inserts a new version of the user row. ReplacingMergeTree keeps
// the one with the highest updated_at.
func (db *ClickHouseDB) SaveUser(ctx context.Context, user models.UserState) error {
	now := time.Now()
	user = storage.RepairPremium(user, now)
	user.UpdatedAt = now

	err := db.conn.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.UserID, user.Username, user.FirstName, user.JoinedAt, user.IsPremium, user.PremiumExpires,
		int32(user.CurrentCategory), int32(user.CurrentVideoIndex), int32(user.WatchedCount), user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// ListUserIDs returns every user id in ascending order
func (db *ClickHouseDB) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.conn.Query(ctx, `SELECT DISTINCT user_id FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountUsers counts distinct users
func (db *ClickHouseDB) CountUsers(ctx context.Context) (int, error) {
	var count uint64
	if err := db.conn.QueryRow(ctx, `SELECT uniqExact(user_id) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(count), nil
}

// CountPremiumUsers counts users whose premium is active at now
func (db *ClickHouseDB) CountPremiumUsers(ctx context.Context, now time.Time) (int, error) {
	var count uint64
	err := db.conn.QueryRow(ctx,
		`SELECT count() FROM users FINAL WHERE is_premium AND (premium_expires IS NULL OR premium_expires > ?)`,
		now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count premium users: %w", err)
	}
	return int(count), nil
}

// AddBookmark stores a bookmark, rejecting duplicates
func (db *ClickHouseDB) AddBookmark(ctx context.Context, bookmark models.Bookmark) error {
	exists, err := db.HasBookmark(ctx, bookmark.UserID, bookmark.VideoID)
	if err != nil {
		return err
	}
	if exists {
		return storage.ErrDuplicate
	}

	err = db.conn.Exec(ctx,
		`INSERT INTO bookmarks (user_id, video_id, file_id, file_name, category, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		bookmark.UserID, bookmark.VideoID, bookmark.FileID, bookmark.FileName, int32(bookmark.Category), bookmark.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	return nil
}

// ListBookmarks returns the user's bookmarks newest first
func (db *ClickHouseDB) ListBookmarks(ctx context.Context, userID int64) ([]models.Bookmark, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT user_id, video_id, file_id, file_name, category, created_at FROM bookmarks
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []models.Bookmark
	for rows.Next() {
		var (
			b        models.Bookmark
			category int32
		)
		if err := rows.Scan(&b.UserID, &b.VideoID, &b.FileID, &b.FileName, &category, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		b.Category = int(category)
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// CountBookmarks counts the user's bookmarks
func (db *ClickHouseDB) CountBookmarks(ctx context.Context, userID int64) (int, error) {
	var count uint64
	if err := db.conn.QueryRow(ctx, `SELECT count() FROM bookmarks WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return int(count), nil
}

// HasBookmark reports whether the (user, video) pair is bookmarked
func (db *ClickHouseDB) HasBookmark(ctx context.Context, userID int64, videoID string) (bool, error) {
	var count uint64
	err := db.conn.QueryRow(ctx,
		`SELECT count() FROM bookmarks WHERE user_id = ? AND video_id = ?`, userID, videoID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return count > 0, nil
}

// RemoveBookmark deletes a bookmark with a lightweight DELETE
func (db *ClickHouseDB) RemoveBookmark(ctx context.Context, userID int64, videoID string) error {
	exists, err := db.HasBookmark(ctx, userID, videoID)
	if err != nil {
		return err
	}
	if !exists {
		return storage.ErrNotFound
	}

	if err := db.conn.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = ? AND video_id = ?`, userID, videoID); err != nil {
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}

// UpsertVote inserts a new version of the user's vote
func (db *ClickHouseDB) UpsertVote(ctx context.Context, vote models.Vote) error {
	if vote.UpdatedAt.IsZero() {
		vote.UpdatedAt = time.Now()
	}
	err := db.conn.Exec(ctx, `INSERT INTO video_votes (user_id, video_id, liked, updated_at) VALUES (?, ?, ?, ?)`,
		vote.UserID, vote.VideoID, vote.Liked, vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}
	return nil
}

// CountVotes aggregates likes and dislikes for a video
func (db *ClickHouseDB) CountVotes(ctx context.Context, videoID string) (models.VoteCount, error) {
	var likes, dislikes uint64
	err := db.conn.QueryRow(ctx,
		`SELECT countIf(liked), countIf(NOT liked) FROM video_votes FINAL WHERE video_id = ?`,
		videoID).Scan(&likes, &dislikes)
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("failed to count votes: %w", err)
	}
	return models.VoteCount{Likes: int(likes), Dislikes: int(dislikes)}, nil
}

// GetSetting returns a setting by name
func (db *ClickHouseDB) GetSetting(ctx context.Context, name string) (models.Setting, error) {
	setting := models.Setting{Name: name}
	err := db.conn.QueryRow(ctx,
		`SELECT setting_value, updated_at FROM bot_settings FINAL WHERE setting_name = ?`,
		name).Scan(&setting.Value, &setting.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Setting{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Setting{}, fmt.Errorf("failed to get setting: %w", err)
	}
	return setting, nil
}

// SetSetting inserts a new version of the setting
func (db *ClickHouseDB) SetSetting(ctx context.Context, name, value string) error {
	err := db.conn.Exec(ctx, `INSERT INTO bot_settings (setting_name, setting_value, updated_at) VALUES (?, ?, ?)`,
		name, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	return nil
}

// ListSettings returns all settings sorted by name
func (db *ClickHouseDB) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := db.conn.Query(ctx,
		`SELECT setting_name, setting_value, updated_at FROM bot_settings FINAL ORDER BY setting_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var settings []models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Name, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
