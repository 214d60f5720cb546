package browse

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vidbot/internal/models"
	"vidbot/internal/storage"
	"vidbot/internal/storage/stubs"
)

const (
	testUser    = int64(1001)
	testChannel = int64(-1001234567890)
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *stubs.MockDB, *fakeClock) {
	t.Helper()
	db := stubs.NewMockDB()
	require.NoError(t, db.Initialize(context.Background()))

	clock := &fakeClock{t: time.Now()}
	svc := NewService(db, zap.NewNop(),
		WithClock(clock.Now),
		WithChannels(map[int64]int{
			testChannel:     1,
			testChannel - 1: 2,
			testChannel - 2: 3,
			testChannel - 3: 4,
		}),
	)
	return svc, db, clock
}

func fileID(n int) string {
	return fmt.Sprintf("BAACAgIAAxkBAAI%06d-video", n)
}

// addVideos indexes count playable videos into category and returns them in order
func addVideos(t *testing.T, db *stubs.MockDB, category, count int) []models.Video {
	t.Helper()
	videos := make([]models.Video, 0, count)
	for i := 0; i < count; i++ {
		v := &models.Video{
			FileID:   fileID(category*1000 + i),
			FileName: fmt.Sprintf("cat%d-%d.mp4", category, i),
			Category: category,
		}
		require.NoError(t, db.AddVideo(context.Background(), v))
		videos = append(videos, *v)
	}
	return videos
}

func newUser(t *testing.T, svc *Service) models.UserState {
	t.Helper()
	user, _, err := svc.EnsureUser(context.Background(), testUser, "tester", "Test")
	require.NoError(t, err)
	return user
}

func setIndex(t *testing.T, db *stubs.MockDB, idx int) {
	t.Helper()
	ctx := context.Background()
	user, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)
	user.CurrentVideoIndex = idx
	require.NoError(t, db.SaveUser(ctx, user))
}

func TestFirstInteraction_EmptyThenIngested(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, created, err := svc.EnsureUser(ctx, testUser, "tester", "Test")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, user.CurrentCategory)
	assert.Equal(t, 0, user.CurrentVideoIndex)
	assert.False(t, user.IsPremium)

	_, created, err = svc.EnsureUser(ctx, testUser, "tester", "Test")
	require.NoError(t, err)
	assert.False(t, created, "second contact must not recreate the user")

	_, err = svc.ResolveCurrentVideo(ctx, testUser)
	assert.ErrorIs(t, err, ErrNoVideosInCategory)

	video, added, err := svc.IngestVideo(ctx, IngestRequest{
		ChannelID: testChannel,
		FileID:    fileID(1),
		FileName:  "first.mp4",
		FileSize:  1 << 20,
	})
	require.NoError(t, err)
	assert.True(t, added)

	view, err := svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, video.ID, view.Video.ID)
	assert.Equal(t, 1, view.Position)
	assert.Equal(t, 1, view.Total)
	assert.Equal(t, DefaultLikePercentage, view.LikePercentage)
	assert.Equal(t, ShortID(video.ID), view.ShortID)
}

func TestAdvance_CyclesBackToStart(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d videos", n), func(t *testing.T) {
			svc, db, _ := newTestService(t)
			ctx := context.Background()
			addVideos(t, db, 1, n)
			newUser(t, svc)

			start, err := svc.ResolveCurrentVideo(ctx, testUser)
			require.NoError(t, err)

			var view VideoView
			for i := 0; i < n; i++ {
				view, err = svc.Advance(ctx, testUser, Next)
				require.NoError(t, err)
			}
			assert.Equal(t, start.Video.ID, view.Video.ID)

			user, err := svc.GetUser(ctx, testUser)
			require.NoError(t, err)
			assert.Equal(t, n, user.WatchedCount)
		})
	}
}

func TestAdvance_PreviousThenNextIsIdentity(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	addVideos(t, db, 1, 4)
	newUser(t, svc)

	for idx := 0; idx < 4; idx++ {
		setIndex(t, db, idx)
		before, err := svc.ResolveCurrentVideo(ctx, testUser)
		require.NoError(t, err)

		_, err = svc.Advance(ctx, testUser, Previous)
		require.NoError(t, err)
		after, err := svc.Advance(ctx, testUser, Next)
		require.NoError(t, err)

		assert.Equal(t, before.Video.ID, after.Video.ID, "index %d", idx)
	}
}

func TestAdvance_PreviousWrapsWithoutCountingWatch(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	videos := addVideos(t, db, 1, 3)
	newUser(t, svc)

	view, err := svc.Advance(ctx, testUser, Previous)
	require.NoError(t, err)
	assert.Equal(t, videos[2].ID, view.Video.ID)
	assert.Equal(t, 3, view.Position)

	user, err := svc.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, user.CurrentVideoIndex)
	assert.Equal(t, 0, user.WatchedCount)
}

func TestAdvance_EmptyCategoryIsNoop(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	newUser(t, svc)

	before, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)

	_, err = svc.Advance(ctx, testUser, Next)
	assert.ErrorIs(t, err, ErrNoVideosInCategory)

	after, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestResolve_SkipsCorruptEntry(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	a := &models.Video{FileID: fileID(1), Category: 1}
	corrupt := &models.Video{FileID: "short", Category: 1}
	b := &models.Video{FileID: fileID(2), Category: 1}
	for _, v := range []*models.Video{a, corrupt, b} {
		require.NoError(t, db.AddVideo(ctx, v))
	}

	newUser(t, svc)
	setIndex(t, db, 1)

	view, err := svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, b.ID, view.Video.ID)
	assert.Equal(t, 2, view.Index)

	user, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, user.CurrentVideoIndex)
}

func TestResolve_SkipWrapsToStart(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	a := &models.Video{FileID: fileID(1), Category: 1}
	corrupt := &models.Video{FileID: "", Category: 1}
	require.NoError(t, db.AddVideo(ctx, a))
	require.NoError(t, db.AddVideo(ctx, corrupt))

	newUser(t, svc)
	setIndex(t, db, 1)

	view, err := svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, a.ID, view.Video.ID)
}

func TestAdvance_SkipsCorruptEntry(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	a := &models.Video{FileID: fileID(1), Category: 1}
	corrupt := &models.Video{FileID: "short", Category: 1}
	b := &models.Video{FileID: fileID(2), Category: 1}
	for _, v := range []*models.Video{a, corrupt, b} {
		require.NoError(t, db.AddVideo(ctx, v))
	}
	newUser(t, svc)

	// Next from A lands on the corrupt entry and moves on to B
	view, err := svc.Advance(ctx, testUser, Next)
	require.NoError(t, err)
	assert.Equal(t, b.ID, view.Video.ID)
	assert.Equal(t, 2, view.Index)

	user, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, user.CurrentVideoIndex)
	assert.Equal(t, 1, user.WatchedCount)

	// Previous from B also lands on it, and the skip still goes forward
	view, err = svc.Advance(ctx, testUser, Previous)
	require.NoError(t, err)
	assert.Equal(t, b.ID, view.Video.ID)
	assert.Equal(t, 2, view.Index)

	user, err = db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, user.CurrentVideoIndex)
	assert.Equal(t, 1, user.WatchedCount, "previous must not count as watched")
}

func TestResolve_NoValidVideos(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.AddVideo(ctx, &models.Video{FileID: "bad-1", Category: 1}))
	require.NoError(t, db.AddVideo(ctx, &models.Video{FileID: "bad-2", Category: 1}))
	newUser(t, svc)

	_, err := svc.ResolveCurrentVideo(ctx, testUser)
	assert.ErrorIs(t, err, ErrNoValidVideos)

	_, err = svc.Advance(ctx, testUser, Next)
	assert.ErrorIs(t, err, ErrNoValidVideos)
}

func TestResolve_ClampsOutOfRangeIndex(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	videos := addVideos(t, db, 1, 2)
	newUser(t, svc)
	setIndex(t, db, 10)

	view, err := svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, videos[0].ID, view.Video.ID)

	user, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 0, user.CurrentVideoIndex)
}

func TestResolve_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ResolveCurrentVideo(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_StorageFailureIsUnavailable(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	addVideos(t, db, 1, 2)
	newUser(t, svc)

	db.Fail(errors.New("connection reset"))

	_, err := svc.ResolveCurrentVideo(ctx, testUser)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = svc.Advance(ctx, testUser, Next)
	assert.ErrorIs(t, err, ErrUnavailable)

	err = svc.AddBookmark(ctx, testUser, models.Video{ID: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSwitchCategory(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	addVideos(t, db, 1, 3)
	cat3 := addVideos(t, db, 3, 2)
	newUser(t, svc)

	_, err := svc.Advance(ctx, testUser, Next)
	require.NoError(t, err)

	user, err := svc.SwitchCategory(ctx, testUser, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, user.CurrentCategory)
	assert.Equal(t, 0, user.CurrentVideoIndex)

	view, err := svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, cat3[0].ID, view.Video.ID)

	user, err = svc.SwitchCategory(ctx, testUser, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, user.CurrentCategory)

	user, err = svc.SwitchCategory(ctx, testUser, models.CategoryMixed)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryMixed, user.CurrentCategory)
}

func TestMixedCategory_SamplesAcrossCategories(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	addVideos(t, db, 1, 3)
	addVideos(t, db, 2, 3)
	newUser(t, svc)

	_, err := svc.SwitchCategory(ctx, testUser, models.CategoryMixed)
	require.NoError(t, err)

	view, err := svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 6, view.Total)

	view, err = svc.Advance(ctx, testUser, Next)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Position)
}

func TestParseCategory(t *testing.T) {
	testCases := []struct {
		token    string
		expected int
	}{
		{"1", 1},
		{"4", 4},
		{"mix", models.CategoryMixed},
		{"MIX", models.CategoryMixed},
		{"5", 1},
		{"-2", 1},
		{"abc", 1},
		{"", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseCategory(tc.token))
		})
	}
}

func TestBookmarks_DuplicateReported(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	videos := addVideos(t, db, 1, 1)
	newUser(t, svc)

	require.NoError(t, svc.AddBookmark(ctx, testUser, videos[0]))
	assert.ErrorIs(t, svc.AddBookmark(ctx, testUser, videos[0]), ErrAlreadyBookmarked)

	bookmarks, err := svc.ListBookmarks(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, bookmarks, 1)
}

func TestBookmarks_LimitOfFive(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	videos := addVideos(t, db, 1, 6)
	newUser(t, svc)

	for i := 0; i < MaxBookmarks; i++ {
		clock.t = clock.t.Add(time.Second)
		require.NoError(t, svc.AddBookmark(ctx, testUser, videos[i]))
	}
	assert.ErrorIs(t, svc.AddBookmark(ctx, testUser, videos[5]), ErrLimitExceeded)
	// Cap wins over duplicate when both apply
	assert.ErrorIs(t, svc.AddBookmark(ctx, testUser, videos[0]), ErrLimitExceeded)

	bookmarks, err := svc.ListBookmarks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, bookmarks, MaxBookmarks)
	assert.Equal(t, videos[4].ID, bookmarks[0].VideoID, "newest first")

	require.NoError(t, svc.RemoveBookmark(ctx, testUser, videos[0].ID))
	assert.NoError(t, svc.AddBookmark(ctx, testUser, videos[5]))
}

func TestBookmarks_RemoveMissing(t *testing.T) {
	svc, _, _ := newTestService(t)
	newUser(t, svc)

	err := svc.RemoveBookmark(context.Background(), testUser, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookmarkCurrent(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	videos := addVideos(t, db, 1, 2)
	newUser(t, svc)

	_, err := svc.Advance(ctx, testUser, Next)
	require.NoError(t, err)

	view, err := svc.BookmarkCurrent(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, videos[1].ID, view.Video.ID)

	bookmarks, err := svc.ListBookmarks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, videos[1].FileID, bookmarks[0].FileID)
	assert.Equal(t, 1, bookmarks[0].Category)
}

func TestLikePercentageArithmetic(t *testing.T) {
	testCases := []struct {
		name     string
		count    models.VoteCount
		expected int
	}{
		{"no votes", models.VoteCount{}, DefaultLikePercentage},
		{"three to one", models.VoteCount{Likes: 3, Dislikes: 1}, 75},
		{"truncates", models.VoteCount{Likes: 1, Dislikes: 2}, 33},
		{"all likes", models.VoteCount{Likes: 2}, 100},
		{"all dislikes", models.VoteCount{Dislikes: 5}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, likePercentage(tc.count))
		})
	}
}

func TestLikePercentage_FromVotes(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	assert.Equal(t, 77, svc.LikePercentage(ctx, "video"))

	for i, liked := range []bool{true, true, true, false} {
		_, err := svc.CastVote(ctx, int64(i+1), "video", liked)
		require.NoError(t, err)
	}
	assert.Equal(t, 75, svc.LikePercentage(ctx, "video"))

	db.Fail(errors.New("timeout"))
	assert.Equal(t, 77, svc.LikePercentage(ctx, "video"))
}

func TestCastVote_Overwrites(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CastVote(ctx, testUser, "video", true)
	require.NoError(t, err)
	pct, err := svc.CastVote(ctx, testUser, "video", false)
	require.NoError(t, err)
	assert.Equal(t, 0, pct)

	count, err := db.CountVotes(ctx, "video")
	require.NoError(t, err)
	assert.Equal(t, models.VoteCount{Likes: 0, Dislikes: 1}, count)
}

func TestVoteCurrent(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	addVideos(t, db, 1, 1)
	newUser(t, svc)

	view, err := svc.VoteCurrent(ctx, testUser, true)
	require.NoError(t, err)
	assert.Equal(t, 100, view.LikePercentage)
}

func TestPremiumExpiry_ReadPathsAndRepair(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	addVideos(t, db, 1, 2)
	newUser(t, svc)

	_, err := svc.GrantPremium(ctx, testUser, 1)
	require.NoError(t, err)

	view, err := svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, view.IsPremium)

	// Two days later the stored flag is still set, but nothing treats it as active
	clock.t = clock.t.Add(48 * time.Hour)

	stored, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, stored.IsPremium)
	assert.False(t, IsPremiumActive(stored, clock.Now()))

	view, err = svc.ResolveCurrentVideo(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, view.IsPremium)

	// The next write corrects the flag
	_, err = svc.Advance(ctx, testUser, Next)
	require.NoError(t, err)

	stored, err = db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, stored.IsPremium)
}

func TestStatus_RepairsExpiredPremium(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	newUser(t, svc)

	_, err := svc.GrantPremium(ctx, testUser, 3)
	require.NoError(t, err)

	_, active, err := svc.Status(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, active)

	clock.t = clock.t.AddDate(0, 0, 4)
	user, active, err := svc.Status(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, active)
	assert.False(t, user.IsPremium)

	stored, err := db.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, stored.IsPremium)
}

func TestIsPremiumActive(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	testCases := []struct {
		name     string
		user     models.UserState
		expected bool
	}{
		{"not premium", models.UserState{}, false},
		{"premium without expiry", models.UserState{IsPremium: true}, true},
		{"premium in future", models.UserState{IsPremium: true, PremiumExpires: &future}, true},
		{"premium expired", models.UserState{IsPremium: true, PremiumExpires: &past}, false},
		{"premium expiring this instant", models.UserState{IsPremium: true, PremiumExpires: &now}, false},
		{"flag off with future expiry", models.UserState{PremiumExpires: &future}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsPremiumActive(tc.user, now))
			// The write path keeps the flag exactly when the read path honours it
			assert.Equal(t, tc.expected, storage.RepairPremium(tc.user, now).IsPremium)
		})
	}
}

func TestGrantAndRevokePremium(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	_, err := svc.GrantPremium(ctx, testUser, 30)
	assert.ErrorIs(t, err, ErrNotFound)

	newUser(t, svc)

	for _, days := range []int{0, -1, MaxPremiumDays + 1} {
		_, err := svc.GrantPremium(ctx, testUser, days)
		assert.ErrorIs(t, err, ErrInvalidArgument, "days=%d", days)
	}

	expires, err := svc.GrantPremium(ctx, testUser, 30)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().AddDate(0, 0, 30), expires)

	require.NoError(t, svc.RevokePremium(ctx, testUser))
	user, err := svc.GetUser(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, user.IsPremium)
	assert.Nil(t, user.PremiumExpires)
}

func TestStats(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	addVideos(t, db, 1, 2)
	addVideos(t, db, 4, 1)

	for id := int64(1); id <= 3; id++ {
		_, _, err := svc.EnsureUser(ctx, id, "", "")
		require.NoError(t, err)
	}
	_, err := svc.GrantPremium(ctx, 2, 10)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.PremiumUsers)
	assert.Equal(t, map[int]int{1: 2, 2: 0, 3: 0, 4: 1}, stats.VideosPerCategory)

	ids, err := svc.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestIngestVideo(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.IngestVideo(ctx, IngestRequest{ChannelID: 42, FileID: fileID(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	video, added, err := svc.IngestVideo(ctx, IngestRequest{ChannelID: testChannel - 2, FileID: fileID(1)})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 3, video.Category)
	assert.Equal(t, "Video_"+clock.Now().Format("20060102_150405"), video.FileName)

	_, added, err = svc.IngestVideo(ctx, IngestRequest{ChannelID: testChannel, FileID: fileID(1)})
	require.NoError(t, err)
	assert.False(t, added, "duplicate file reference is ignored")

	_, _, err = svc.IngestVideo(ctx, IngestRequest{ChannelID: testChannel})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSettings(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	assert.False(t, svc.BoolSetting(ctx, SettingForwardProtection, false))
	assert.Equal(t, 10, svc.IntSetting(ctx, SettingAutoDeleteMinutes, 10))

	on, err := svc.ToggleSetting(ctx, SettingForwardProtection, false)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.BoolSetting(ctx, SettingForwardProtection, false))

	require.NoError(t, svc.SetAutoDeleteMinutes(ctx, 5))
	assert.Equal(t, 5, svc.IntSetting(ctx, SettingAutoDeleteMinutes, 10))
	assert.ErrorIs(t, svc.SetAutoDeleteMinutes(ctx, 0), ErrInvalidArgument)

	// Unparseable values fall back to the default
	require.NoError(t, svc.SetSetting(ctx, SettingAutoDelete, "maybe"))
	assert.True(t, svc.BoolSetting(ctx, SettingAutoDelete, true))

	defaults := Settings{AutoDelete: true, AutoDeleteMinutes: 10}
	assert.Equal(t, Settings{ForwardProtection: true, AutoDelete: true, AutoDeleteMinutes: 5},
		svc.CurrentSettings(ctx, defaults))

	db.Fail(errors.New("down"))
	assert.Equal(t, "fallback", svc.Setting(ctx, "anything", "fallback"))
	assert.Equal(t, defaults, svc.CurrentSettings(ctx, defaults))
	_, err = svc.ToggleSetting(ctx, SettingForwardProtection, false)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "cdef0", ShortID("65a1b2c3d4e5f6a7bcdef0"))
	assert.Equal(t, "abc", ShortID("abc"))
}
