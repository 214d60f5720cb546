// Package mongo stores the bot's data in MongoDB, using the same collection
// names and field names as the deployments that predate the other backends.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vidbot/internal/models"
	"vidbot/internal/storage"
)

const (
	collVideos    = "videos"
	collUsers     = "users"
	collBookmarks = "bookmarks"
	collVotes     = "video_likes"
	collSettings  = "bot_settings"
)

var _ storage.Storage = (*MongoDB)(nil)

type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database

	videos    *mongo.Collection
	users     *mongo.Collection
	bookmarks *mongo.Collection
	votes     *mongo.Collection
	settings  *mongo.Collection
}

// NewMongoDB connects to uri and uses the database name
func NewMongoDB(ctx context.Context, uri, name string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(name)
	return &MongoDB{
		client:    client,
		db:        db,
		videos:    db.Collection(collVideos),
		users:     db.Collection(collUsers),
		bookmarks: db.Collection(collBookmarks),
		votes:     db.Collection(collVotes),
		settings:  db.Collection(collSettings),
	}, nil
}

// Initialize creates the indexes every query relies on
func (m *MongoDB) Initialize(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		m.videos: {
			{Keys: bson.D{{Key: "file_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "added_date", Value: 1}}},
		},
		m.users: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		m.bookmarks: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "video_id", Value: 1}}, Options: unique},
		},
		m.votes: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "video_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "video_id", Value: 1}}},
		},
		m.settings: {
			{Keys: bson.D{{Key: "setting_name", Value: 1}}, Options: unique},
		},
	}

	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll.Name(), err)
		}
	}
	return nil
}

// AddVideo inserts a video; the unique file_id index rejects duplicates
func (m *MongoDB) AddVideo(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	if video.AddedAt.IsZero() {
		video.AddedAt = time.Now()
	}

	if _, err := m.videos.InsertOne(ctx, video); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// ListVideosByCategory returns the category's videos oldest first
func (m *MongoDB) ListVideosByCategory(ctx context.Context, category int) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := m.videos.Find(ctx, bson.M{"category": category}, opts)
	if err != nil {
		return nil, fmt.Errorf("find videos: %w", err)
	}
	defer cur.Close(ctx)

	var videos []models.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

// SampleVideos draws a random sample across all categories with $sample
func (m *MongoDB) SampleVideos(ctx context.Context, limit int) ([]models.Video, error) {
	pipeline := mongo.Pipeline{{{Key: "$sample", Value: bson.D{{Key: "size", Value: limit}}}}}
	cur, err := m.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sample videos: %w", err)
	}
	defer cur.Close(ctx)

	var videos []models.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	return videos, nil
}

// CountVideosByCategory counts videos in one category
func (m *MongoDB) CountVideosByCategory(ctx context.Context, category int) (int, error) {
	n, err := m.videos.CountDocuments(ctx, bson.M{"category": category})
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return int(n), nil
}

// GetUser returns a user by Telegram id
func (m *MongoDB) GetUser(ctx context.Context, userID int64) (models.UserState, error) {
	var user models.UserState
	err := m.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.UserState{}, storage.ErrNotFound
	}
	if err != nil {
		return models.UserState{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// SaveUser replaces the user document, creating it if needed
func (m *MongoDB) SaveUser(ctx context.Context, user models.UserState) error {
	now := time.Now()
	user = storage.RepairPremium(user, now)
	user.UpdatedAt = now

	_, err := m.users.ReplaceOne(ctx, bson.M{"user_id": user.UserID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// ListUserIDs returns every user id in ascending order
func (m *MongoDB) ListUserIDs(ctx context.Context) ([]int64, error) {
	opts := options.Find().
		SetProjection(bson.M{"user_id": 1, "_id": 0}).
		SetSort(bson.D{{Key: "user_id", Value: 1}})
	cur, err := m.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var ids []int64
	for cur.Next(ctx) {
		var doc struct {
			UserID int64 `bson:"user_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user id: %w", err)
		}
		ids = append(ids, doc.UserID)
	}
	return ids, cur.Err()
}

// CountUsers counts all users
func (m *MongoDB) CountUsers(ctx context.Context) (int, error) {
	n, err := m.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

// CountPremiumUsers counts users whose premium is active at now
func (m *MongoDB) CountPremiumUsers(ctx context.Context, now time.Time) (int, error) {
	filter := bson.M{
		"is_premium": true,
		"$or": bson.A{
			bson.M{"premium_expires": nil},
			bson.M{"premium_expires": bson.M{"$gt": now}},
		},
	}
	n, err := m.users.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count premium users: %w", err)
	}
	return int(n), nil
}

// AddBookmark stores a bookmark; the unique index rejects duplicates
func (m *MongoDB) AddBookmark(ctx context.Context, bookmark models.Bookmark) error {
	if _, err := m.bookmarks.InsertOne(ctx, bookmark); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// ListBookmarks returns the user's bookmarks newest first
func (m *MongoDB) ListBookmarks(ctx context.Context, userID int64) ([]models.Bookmark, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := m.bookmarks.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookmarks: %w", err)
	}
	defer cur.Close(ctx)

	var bookmarks []models.Bookmark
	if err := cur.All(ctx, &bookmarks); err != nil {
		return nil, fmt.Errorf("decode bookmarks: %w", err)
	}
	return bookmarks, nil
}

// CountBookmarks counts the user's bookmarks
func (m *MongoDB) CountBookmarks(ctx context.Context, userID int64) (int, error) {
	n, err := m.bookmarks.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("count bookmarks: %w", err)
	}
	return int(n), nil
}

// HasBookmark reports whether the (user, video) pair is bookmarked
func (m *MongoDB) HasBookmark(ctx context.Context, userID int64, videoID string) (bool, error) {
	n, err := m.bookmarks.CountDocuments(ctx, bson.M{"user_id": userID, "video_id": videoID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count bookmarks: %w", err)
	}
	return n > 0, nil
}

// RemoveBookmark deletes a bookmark
func (m *MongoDB) RemoveBookmark(ctx context.Context, userID int64, videoID string) error {
	res, err := m.bookmarks.DeleteOne(ctx, bson.M{"user_id": userID, "video_id": videoID})
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpsertVote stores the vote, replacing any previous one
func (m *MongoDB) UpsertVote(ctx context.Context, vote models.Vote) error {
	if vote.UpdatedAt.IsZero() {
		vote.UpdatedAt = time.Now()
	}
	filter := bson.M{"user_id": vote.UserID, "video_id": vote.VideoID}
	update := bson.M{"$set": bson.M{"liked": vote.Liked, "updated_at": vote.UpdatedAt}}

	if _, err := m.votes.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}
	return nil
}

// CountVotes aggregates likes and dislikes for a video
func (m *MongoDB) CountVotes(ctx context.Context, videoID string) (models.VoteCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "video_id", Value: videoID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$liked"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := m.votes.Aggregate(ctx, pipeline)
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("aggregate votes: %w", err)
	}
	defer cur.Close(ctx)

	var count models.VoteCount
	for cur.Next(ctx) {
		var row struct {
			Liked bool `bson:"_id"`
			N     int  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return models.VoteCount{}, fmt.Errorf("decode vote count: %w", err)
		}
		if row.Liked {
			count.Likes = row.N
		} else {
			count.Dislikes = row.N
		}
	}
	return count, cur.Err()
}

// GetSetting returns a setting by name
func (m *MongoDB) GetSetting(ctx context.Context, name string) (models.Setting, error) {
	var setting models.Setting
	err := m.settings.FindOne(ctx, bson.M{"setting_name": name}).Decode(&setting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Setting{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Setting{}, fmt.Errorf("find setting: %w", err)
	}
	return setting, nil
}

// SetSetting upserts a setting
func (m *MongoDB) SetSetting(ctx context.Context, name, value string) error {
	update := bson.M{"$set": bson.M{"setting_value": value, "updated_at": time.Now()}}
	_, err := m.settings.UpdateOne(ctx, bson.M{"setting_name": name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// ListSettings returns all settings sorted by name
func (m *MongoDB) ListSettings(ctx context.Context) ([]models.Setting, error) {
	opts := options.Find().SetSort(bson.D{{Key: "setting_name", Value: 1}})
	cur, err := m.settings.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	defer cur.Close(ctx)

	var settings []models.Setting
	if err := cur.All(ctx, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// Close disconnects the client
func (m *MongoDB) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
