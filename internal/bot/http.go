package bot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"vidbot/internal/browse"
)

// initDataMaxAge is how long a Mini App login stays valid
const initDataMaxAge = 24 * time.Hour

type userIDKey struct{}

// HTTPServer handles HTTP requests for the Mini App
type HTTPServer struct {
	bot     *Bot
	devAuth bool // Trust ?user_id= instead of initData; local development only
}

// NewHTTPServer creates a new HTTP server for the Mini App. Every request must
// carry Telegram initData unless devAuth is set.
func NewHTTPServer(bot *Bot, devAuth bool) *HTTPServer {
	hs := &HTTPServer{
		bot:     bot,
		devAuth: devAuth,
	}
	bot.httpServer = hs
	return hs
}

// RegisterRoutes registers Mini App routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/bookmarks", hs.authMiddleware(hs.handleBookmarks))
	mux.HandleFunc("/api/stats", hs.authMiddleware(hs.handleStats))
}

// validateTelegramInitData validates the Telegram Mini App initData and
// returns the user it was issued for
func (hs *HTTPServer) validateTelegramInitData(initData string, now time.Time) (int64, error) {
	if initData == "" {
		return 0, fmt.Errorf("missing initData")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	hash := values.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("missing hash in initData")
	}
	values.Del("hash")

	// Create data-check-string
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dataCheckString strings.Builder
	for i, k := range keys {
		if i > 0 {
			dataCheckString.WriteByte('\n')
		}
		dataCheckString.WriteString(k)
		dataCheckString.WriteByte('=')
		dataCheckString.WriteString(values.Get(k))
	}

	if !hmac.Equal([]byte(signInitData(hs.bot.token, dataCheckString.String())), []byte(hash)) {
		return 0, fmt.Errorf("invalid hash")
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("missing auth_date")
	}
	if now.Sub(time.Unix(authDate, 0)) > initDataMaxAge {
		return 0, fmt.Errorf("initData is too old")
	}

	userStr := values.Get("user")
	if userStr == "" {
		return 0, fmt.Errorf("missing user data")
	}

	var userData struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(userStr), &userData); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}
	return userData.ID, nil
}

// signInitData computes the hex HMAC Telegram attaches to Mini App initData
func signInitData(token, dataCheckString string) string {
	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(token))

	h := hmac.New(sha256.New, secretKey.Sum(nil))
	h.Write([]byte(dataCheckString))
	return hex.EncodeToString(h.Sum(nil))
}

// authMiddleware validates Telegram Mini App authentication.
// With devAuth the user is taken from ?user_id= unchecked.
func (hs *HTTPServer) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID int64

		if hs.devAuth {
			hs.bot.logger.Debug("Skipping authentication (dev auth)",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			userID, _ = strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		} else {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "tma ") {
				hs.bot.logger.Warn("Missing or invalid authorization header")
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			id, err := hs.validateTelegramInitData(strings.TrimPrefix(authHeader, "tma "), time.Now())
			if err != nil {
				hs.bot.logger.Warn("Failed to validate initData",
					zap.Error(err),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			userID = id
		}

		if userID == 0 {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		hs.bot.logger.Debug("Authenticated request",
			zap.Int64("user_id", userID),
			zap.String("path", r.URL.Path),
		)
		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	}
}

func requestUserID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey{}).(int64)
	return id
}

// bookmarkResponse is a bookmark as the Mini App shows it
type bookmarkResponse struct {
	VideoID   string    `json:"video_id"`
	ShortID   string    `json:"short_id"`
	FileName  string    `json:"file_name"`
	Category  int       `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// handleBookmarks lists (GET) or removes (DELETE ?video_id=) the caller's bookmarks
func (hs *HTTPServer) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)

	switch r.Method {
	case http.MethodGet:
		bookmarks, err := hs.bot.svc.ListBookmarks(r.Context(), userID)
		if err != nil {
			hs.bot.logger.Error("Failed to list bookmarks", zap.Error(err), zap.Int64("user_id", userID))
			writeError(w, http.StatusInternalServerError, "Failed to fetch bookmarks")
			return
		}

		resp := make([]bookmarkResponse, 0, len(bookmarks))
		for _, bm := range bookmarks {
			resp = append(resp, bookmarkResponse{
				VideoID:   bm.VideoID,
				ShortID:   browse.ShortID(bm.VideoID),
				FileName:  bm.FileName,
				Category:  bm.Category,
				CreatedAt: bm.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodDelete:
		videoID := r.URL.Query().Get("video_id")
		if videoID == "" {
			writeError(w, http.StatusBadRequest, "Missing video_id")
			return
		}

		err := hs.bot.svc.RemoveBookmark(r.Context(), userID, videoID)
		if errors.Is(err, browse.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Bookmark not found")
			return
		}
		if err != nil {
			hs.bot.logger.Error("Failed to remove bookmark", zap.Error(err), zap.Int64("user_id", userID))
			writeError(w, http.StatusInternalServerError, "Failed to remove bookmark")
			return
		}

		hs.bot.logger.Info("Bookmark removed via Mini App",
			zap.Int64("user_id", userID),
			zap.String("video_id", videoID),
		)
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleStats returns the admin counters
func (hs *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hs.bot.IsAdmin(requestUserID(r)) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	stats, err := hs.bot.svc.Stats(r.Context())
	if err != nil {
		hs.bot.logger.Error("Failed to get stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
