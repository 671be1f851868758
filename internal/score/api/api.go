// Package api serves the leaderboard backend over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/tomz197/santa-rush/internal/score"
)

// Board is the in-memory leaderboard: the best RemoteLeaderboardSize
// entries, sorted by score, with sequential IDs.
type Board struct {
	mu      sync.RWMutex
	entries []score.Entry
	nextID  int
	now     func() time.Time
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{nextID: 1, now: time.Now}
}

// Add stores e and returns it with its ID and timestamp.
func (b *Board) Add(e score.Entry) score.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	e.ID = b.nextID
	b.nextID++
	e.Timestamp = time.Time{}
	e = e.Normalize(b.now())
	b.entries = score.Insert(b.entries, e, score.RemoteLeaderboardSize)
	return e
}

// All returns a copy of every entry.
func (b *Board) All() []score.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return score.Top(b.entries, len(b.entries))
}

// Top returns the first limit entries and the total count.
func (b *Board) Top(limit int) ([]score.Entry, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return score.Top(b.entries, limit), len(b.entries)
}

// Server routes the leaderboard API.
type Server struct {
	board  *Board
	logger *log.Logger
	router *mux.Router
}

type submitRequest struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Followers  int    `json:"followers"`
}

type leaderboardResponse struct {
	Scores []score.Entry `json:"scores"`
	Total  int           `json:"total"`
}

// NewServer creates the API with an empty board.
func NewServer(logger *log.Logger) *Server {
	s := &Server{
		board:  NewBoard(),
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

// Board returns the board backing the API.
func (s *Server) Board() *Board {
	return s.board
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(corsMiddleware)
	// CORS preflight for any path
	s.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/scores", s.handleScores).Methods(http.MethodGet)
	api.HandleFunc("/scores", s.handleSubmit).Methods(http.MethodPost)
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Santa Rush API is running",
	})
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	all := s.board.All()
	writeJSON(w, http.StatusOK, leaderboardResponse{Scores: all, Total: len(all)})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Score < 0 || req.Followers < 0 {
		http.Error(w, "Invalid score or followers count", http.StatusBadRequest)
		return
	}

	e := s.board.Add(score.Entry{
		PlayerName: req.PlayerName,
		Score:      req.Score,
		Followers:  req.Followers,
	})
	s.logger.Info("Score submitted", "id", e.ID, "player", e.PlayerName, "score", e.Score, "followers", e.Followers)

	writeJSON(w, http.StatusCreated, score.SubmitResult{
		Success: true,
		Message: "Score submitted successfully",
		Entry:   &e,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := score.DefaultLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	top, total := s.board.Top(limit)
	writeJSON(w, http.StatusOK, leaderboardResponse{Scores: top, Total: total})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
