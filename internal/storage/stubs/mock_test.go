package stubs

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidbot/internal/models"
	"vidbot/internal/storage"
)

func TestMockDB_AddVideo(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	if err := db.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	video := &models.Video{FileID: "BAACAgIAAxkBAAIBQmVideoFileOne", FileName: "one.mp4", Category: 1}
	if err := db.AddVideo(ctx, video); err != nil {
		t.Fatalf("Failed to add video: %v", err)
	}

	if video.ID == "" {
		t.Fatal("Expected video ID to be assigned")
	}
	if video.AddedAt.IsZero() {
		t.Error("Expected AddedAt to be set")
	}

	// Same file id again is rejected
	dup := &models.Video{FileID: "BAACAgIAAxkBAAIBQmVideoFileOne", Category: 2}
	if err := db.AddVideo(ctx, dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}

	videos, err := db.ListVideosByCategory(ctx, video.Category)
	if err != nil {
		t.Fatalf("Failed to list videos: %v", err)
	}
	if len(videos) != 1 || videos[0].FileName != "one.mp4" {
		t.Errorf("Expected only 'one.mp4', got %v", videos)
	}
}

func TestMockDB_ListVideosByCategory(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	names := []string{"a", "b", "c"}
	for _, name := range names {
		v := &models.Video{FileID: "file-id-for-category-one-" + name, FileName: name, Category: 1}
		if err := db.AddVideo(ctx, v); err != nil {
			t.Fatalf("Failed to add video: %v", err)
		}
	}
	_ = db.AddVideo(ctx, &models.Video{FileID: "file-id-for-category-two-x", FileName: "x", Category: 2})

	videos, err := db.ListVideosByCategory(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list videos: %v", err)
	}
	if len(videos) != 3 {
		t.Fatalf("Expected 3 videos, got %d", len(videos))
	}

	// Insertion order is preserved
	for i, name := range names {
		if videos[i].FileName != name {
			t.Errorf("Expected video %d to be '%s', got '%s'", i, name, videos[i].FileName)
		}
	}

	count, err := db.CountVideosByCategory(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to count videos: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 video in category 2, got %d", count)
	}
}

func TestMockDB_SampleVideos_Limit(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		v := &models.Video{FileID: "sample-file-id-000000000" + string(rune('a'+i)), Category: 1 + i%4}
		if err := db.AddVideo(ctx, v); err != nil {
			t.Fatalf("Failed to add video: %v", err)
		}
	}

	videos, err := db.SampleVideos(ctx, 4)
	if err != nil {
		t.Fatalf("Failed to sample videos: %v", err)
	}
	if len(videos) != 4 {
		t.Errorf("Expected 4 videos, got %d", len(videos))
	}

	all, _ := db.SampleVideos(ctx, 100)
	if len(all) != 10 {
		t.Errorf("Expected 10 videos, got %d", len(all))
	}
}

func TestMockDB_SaveUser_RepairsExpiredPremium(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	user := models.UserState{UserID: 42, IsPremium: true, PremiumExpires: &past, CurrentCategory: 1}
	if err := db.SaveUser(ctx, user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}

	got, err := db.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	if got.IsPremium {
		t.Error("Expected expired premium flag to be cleared on save")
	}

	count, _ := db.CountPremiumUsers(ctx, time.Now())
	if count != 0 {
		t.Errorf("Expected 0 premium users, got %d", count)
	}

	if _, err := db.GetUser(ctx, 7); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestMockDB_Bookmarks(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	now := time.Now()
	_ = db.AddBookmark(ctx, models.Bookmark{UserID: 1, VideoID: "old", CreatedAt: now.Add(-time.Minute)})
	_ = db.AddBookmark(ctx, models.Bookmark{UserID: 1, VideoID: "new", CreatedAt: now})

	if err := db.AddBookmark(ctx, models.Bookmark{UserID: 1, VideoID: "old"}); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}

	bookmarks, err := db.ListBookmarks(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list bookmarks: %v", err)
	}
	if len(bookmarks) != 2 {
		t.Fatalf("Expected 2 bookmarks, got %d", len(bookmarks))
	}
	if bookmarks[0].VideoID != "new" {
		t.Errorf("Expected newest bookmark first, got %s", bookmarks[0].VideoID)
	}

	if err := db.RemoveBookmark(ctx, 1, "old"); err != nil {
		t.Fatalf("Failed to remove bookmark: %v", err)
	}
	if err := db.RemoveBookmark(ctx, 1, "old"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second removal, got %v", err)
	}

	count, _ := db.CountBookmarks(ctx, 1)
	if count != 1 {
		t.Errorf("Expected 1 bookmark left, got %d", count)
	}
}

func TestMockDB_Votes(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	_ = db.UpsertVote(ctx, models.Vote{UserID: 1, VideoID: "v", Liked: true})
	_ = db.UpsertVote(ctx, models.Vote{UserID: 1, VideoID: "v", Liked: false})
	_ = db.UpsertVote(ctx, models.Vote{UserID: 2, VideoID: "v", Liked: true})

	count, err := db.CountVotes(ctx, "v")
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if count.Likes != 1 || count.Dislikes != 1 {
		t.Errorf("Expected 1 like and 1 dislike, got %+v", count)
	}
}

func TestMockDB_Settings(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	if _, err := db.GetSetting(ctx, "forward_protection_enabled"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	_ = db.SetSetting(ctx, "forward_protection_enabled", "true")
	_ = db.SetSetting(ctx, "forward_protection_enabled", "false")

	setting, err := db.GetSetting(ctx, "forward_protection_enabled")
	if err != nil {
		t.Fatalf("Failed to get setting: %v", err)
	}
	if setting.Value != "false" {
		t.Errorf("Expected 'false', got '%s'", setting.Value)
	}

	settings, _ := db.ListSettings(ctx)
	if len(settings) != 1 {
		t.Errorf("Expected 1 setting, got %d", len(settings))
	}
}

func TestMockDB_Fail(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	boom := errors.New("connection refused")
	db.Fail(boom)

	if _, err := db.ListVideosByCategory(ctx, 1); !errors.Is(err, boom) {
		t.Errorf("Expected injected error, got %v", err)
	}

	db.Fail(nil)
	if _, err := db.ListVideosByCategory(ctx, 1); err != nil {
		t.Errorf("Expected no error after recovery, got %v", err)
	}
}
