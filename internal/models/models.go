package models

import "time"

// CategoryMixed is the pseudo-category that browses a random sample of all videos
const CategoryMixed = 0

// CategoryCount is the number of channel-backed categories (1..CategoryCount)
const CategoryCount = 4

// Video represents an indexed video from one of the monitored channels
type Video struct {
	ID       string    `bson:"_id,omitempty" json:"id"`
	FileID   string    `bson:"file_id" json:"file_id"`
	FileName string    `bson:"file_name" json:"file_name"`
	Category int       `bson:"category" json:"category"`
	FileSize int64     `bson:"file_size" json:"file_size"`
	AddedAt  time.Time `bson:"added_date" json:"added_at"`
}

// UserState holds a user's profile, browsing position and premium status
type UserState struct {
	UserID            int64      `bson:"user_id" json:"user_id"`
	Username          string     `bson:"username" json:"username"`
	FirstName         string     `bson:"first_name" json:"first_name"`
	JoinedAt          time.Time  `bson:"join_date" json:"joined_at"`
	IsPremium         bool       `bson:"is_premium" json:"is_premium"`
	PremiumExpires    *time.Time `bson:"premium_expires" json:"premium_expires,omitempty"`
	CurrentCategory   int        `bson:"current_category" json:"current_category"`
	CurrentVideoIndex int        `bson:"current_video_index" json:"current_video_index"`
	WatchedCount      int        `bson:"watched_videos" json:"watched_count"`
	UpdatedAt         time.Time  `bson:"updated_at" json:"updated_at"`
}

// Bookmark is a video saved by a user
type Bookmark struct {
	UserID    int64     `bson:"user_id" json:"user_id"`
	VideoID   string    `bson:"video_id" json:"video_id"`
	FileID    string    `bson:"file_id" json:"file_id"`
	FileName  string    `bson:"file_name" json:"file_name"`
	Category  int       `bson:"category" json:"category"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Vote is a user's like or dislike for a video
type Vote struct {
	UserID    int64     `bson:"user_id" json:"user_id"`
	VideoID   string    `bson:"video_id" json:"video_id"`
	Liked     bool      `bson:"liked" json:"liked"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// VoteCount aggregates votes for one video
type VoteCount struct {
	Likes    int
	Dislikes int
}

// Setting is a named runtime toggle
type Setting struct {
	Name      string    `bson:"setting_name" json:"name"`
	Value     string    `bson:"setting_value" json:"value"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Stats represents aggregate counters for the admin dashboard
type Stats struct {
	TotalUsers        int         `json:"total_users"`
	PremiumUsers      int         `json:"premium_users"`
	VideosPerCategory map[int]int `json:"videos_per_category"`
}
