package bot

import (
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

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyspace/internal/catalog"
	"studyspace/internal/library"
	"studyspace/internal/models"
	"studyspace/internal/storage"
	"studyspace/internal/storefront"
)

// initDataMaxAge is how long a Mini App initData signature stays valid
const initDataMaxAge = 24 * time.Hour

// HTTPServer serves the JSON API used by the Mini App
type HTTPServer struct {
	bot         *Bot
	webhookMode bool // If false (polling mode), skip authentication for easier local dev
	now         func() time.Time
}

// NewHTTPServer creates a new HTTP server for the Mini App
func NewHTTPServer(bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		webhookMode: webhookMode,
		now:         time.Now,
	}
}

// RegisterRoutes registers API routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", hs.authMiddleware(hs.handleListBooks))
	mux.HandleFunc("POST /api/books", hs.authMiddleware(hs.handleAddBook))
	mux.HandleFunc("GET /api/books/{id}", hs.authMiddleware(hs.handleGetBook))
	mux.HandleFunc("POST /api/books/{id}/favorite", hs.authMiddleware(hs.handleToggleFavorite))
	mux.HandleFunc("POST /api/books/{id}/open", hs.authMiddleware(hs.handleOpenBook))
	mux.HandleFunc("GET /api/storefront", hs.authMiddleware(hs.handleStorefront))
}

// verifyInitData checks the signature and age of Telegram Mini App initData
// and returns the ID of the user it was issued for
func verifyInitData(initData, botToken string, now time.Time) (int64, error) {
	if initData == "" {
		return 0, errors.New("missing initData")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	received := values.Get("hash")
	if received == "" {
		return 0, errors.New("missing hash in initData")
	}
	values.Del("hash")

	// data-check-string: sorted key=value pairs joined by newlines
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	secret := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	expected := hex.EncodeToString(hmacSHA256(secret, []byte(strings.Join(pairs, "\n"))))
	if !hmac.Equal([]byte(expected), []byte(received)) {
		return 0, errors.New("invalid hash")
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, errors.New("missing or invalid auth_date")
	}
	if now.Sub(time.Unix(authDate, 0)) > initDataMaxAge {
		return 0, errors.New("initData is too old")
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return 0, errors.New("missing or invalid user data")
	}
	return user.ID, nil
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// authMiddleware validates Telegram Mini App authentication
// In polling mode (webhookMode=false), authentication is skipped for easier local development
func (hs *HTTPServer) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !hs.webhookMode {
			next(w, r)
			return
		}

		initData, ok := strings.CutPrefix(r.Header.Get("Authorization"), "tma ")
		if !ok {
			hs.bot.logger.Warn("Missing or invalid authorization header",
				zap.String("path", r.URL.Path),
			)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := verifyInitData(initData, hs.bot.token, hs.now())
		if err != nil {
			hs.bot.logger.Warn("Failed to validate initData",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
			)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !hs.bot.allowedUsers[userID] {
			hs.bot.logger.Warn("Mini App user not allowed", zap.Int64("user_id", userID))
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}

		next(w, r)
	}
}

// handleListBooks returns the books of a category (?category=recents)
func (hs *HTTPServer) handleListBooks(w http.ResponseWriter, r *http.Request) {
	category, ok := catalog.ParseCategory(r.URL.Query().Get("category"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown category")
		return
	}

	books, err := hs.bot.library.View(r.Context(), category)
	if err != nil {
		hs.bot.logger.Error("Failed to list books", zap.Error(err), zap.String("category", string(category)))
		writeError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"title":    category.Title(),
		"books":    books,
	})
}

// handleGetBook returns a single book
func (hs *HTTPServer) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}

	book, found, err := hs.bot.library.Book(r.Context(), id)
	if err != nil {
		hs.bot.logger.Error("Failed to get book", zap.Error(err), zap.String("book_id", id.String()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch book")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// handleAddBook adds a book to the library
func (hs *HTTPServer) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req models.NewBook
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		hs.bot.logger.Warn("Failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := hs.bot.library.AddBook(r.Context(), req)
	if errors.Is(err, library.ErrTitleRequired) {
		writeError(w, http.StatusBadRequest, "Missing required field: title")
		return
	}
	if err != nil {
		hs.bot.logger.Error("Failed to add book", zap.Error(err), zap.String("title", req.Title))
		writeError(w, http.StatusInternalServerError, "Failed to add book")
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

// handleToggleFavorite flips the favorite flag of a book
func (hs *HTTPServer) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	book, err := hs.bot.library.ToggleFavorite(r.Context(), id)
	hs.writeBookResult(w, book, err, "Failed to update favorite")
}

// handleOpenBook records that a book was opened
func (hs *HTTPServer) handleOpenBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	book, err := hs.bot.library.OpenBook(r.Context(), id)
	hs.writeBookResult(w, book, err, "Failed to open book")
}

// handleStorefront returns the shop link, or 404 when it can't be opened
func (hs *HTTPServer) handleStorefront(w http.ResponseWriter, r *http.Request) {
	u, ok := storefront.Parse(hs.bot.storefrontURL)
	if !ok {
		writeError(w, http.StatusNotFound, "Storefront unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u.String()})
}

func (hs *HTTPServer) writeBookResult(w http.ResponseWriter, book models.Book, err error, failure string) {
	if errors.Is(err, storage.ErrBookNotFound) {
		writeError(w, http.StatusNotFound, "Book not found")
		return
	}
	if err != nil {
		hs.bot.logger.Error(failure, zap.Error(err))
		writeError(w, http.StatusInternalServerError, failure)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func bookIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid book id")
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
