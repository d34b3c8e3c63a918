// Package web exposes the review engine as a small JSON API.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/recallbox/recallbox/internal/domain"
	"github.com/recallbox/recallbox/internal/review"
	"github.com/recallbox/recallbox/internal/srs"
	"github.com/recallbox/recallbox/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	reviews  *review.Service
	router   *http.ServeMux
	validate *validator.Validate
	now      func() time.Time
}

// NewServer creates and configures a new server.
func NewServer(reviews *review.Service) *Server {
	s := &Server{
		reviews:  reviews,
		router:   http.NewServeMux(),
		validate: validator.New(),
		now:      time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("POST /api/cards", s.handleCreateCard)
	s.router.HandleFunc("GET /api/cards", s.handleListCards)
	s.router.HandleFunc("GET /api/cards/{id}", s.handleGetCard)
	s.router.HandleFunc("DELETE /api/cards/{id}", s.handleDeleteCard)
	s.router.HandleFunc("POST /api/cards/{id}/review", s.handleReview)
	s.router.HandleFunc("GET /api/cards/{id}/preview", s.handlePreview)
	s.router.HandleFunc("GET /api/cards/{id}/reviews", s.handleHistory)
	s.router.HandleFunc("GET /api/due", s.handleDue)
	s.router.HandleFunc("GET /api/stats", s.handleStats)
}

type createCardRequest struct {
	FolderID string `json:"folder_id" validate:"required"`
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if !s.decode(w, r, &req) {
		return
	}

	card, err := s.reviews.CreateCard(req.FolderID, req.Question, req.Answer)
	if err != nil {
		s.error(w, r, err)
		return
	}
	s.json(w, http.StatusCreated, s.cardResponse(card))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.reviews.Cards(r.URL.Query().Get("folder"))
	if err != nil {
		s.error(w, r, err)
		return
	}
	s.json(w, http.StatusOK, s.cardResponses(cards))
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.reviews.Card(r.PathValue("id"))
	if err != nil {
		s.error(w, r, err)
		return
	}
	s.json(w, http.StatusOK, s.cardResponse(card))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.reviews.DeleteCard(r.PathValue("id")); err != nil {
		s.error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// The quality range is deliberately not validated here; the engine owns
// that check and rejects out-of-range ratings before any state mutation.
type reviewRequest struct {
	Quality       int  `json:"quality"`
	TimeTakenSecs *int `json:"time_taken_seconds" validate:"omitempty,gte=0"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !s.decode(w, r, &req) {
		return
	}

	card, err := s.reviews.Review(r.PathValue("id"), srs.Quality(req.Quality), req.TimeTakenSecs)
	if err != nil {
		s.error(w, r, err)
		return
	}
	s.json(w, http.StatusOK, s.cardResponse(card))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reviews.Preview(r.PathValue("id"))
	if err != nil {
		s.error(w, r, err)
		return
	}
	s.json(w, http.StatusOK, entries)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	events, err := s.reviews.History(r.PathValue("id"))
	if err != nil {
		s.error(w, r, err)
		return
	}
	if events == nil {
		events = []domain.ReviewEvent{}
	}
	s.json(w, http.StatusOK, events)
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	cards, err := s.reviews.DueCards(r.URL.Query().Get("folder"))
	if err != nil {
		s.error(w, r, err)
		return
	}
	s.json(w, http.StatusOK, s.cardResponses(cards))
}

type statsResponse struct {
	srs.Stats
	Composition srs.Breakdown `json:"composition"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, breakdown, err := s.reviews.Stats(r.URL.Query().Get("folder"))
	if err != nil {
		s.error(w, r, err)
		return
	}
	s.json(w, http.StatusOK, statsResponse{Stats: stats, Composition: breakdown})
}

// cardResponse decorates a card with the read-side display labels.
type cardResponse struct {
	domain.Card
	NextReviewLabel string `json:"next_review_label"`
	Difficulty      string `json:"difficulty"`
}

func (s *Server) cardResponse(card domain.Card) cardResponse {
	return cardResponse{
		Card:            card,
		NextReviewLabel: srs.FormatNextReview(s.now(), card.NextReview),
		Difficulty:      srs.DifficultyLevel(card.EaseFactor),
	}
}

func (s *Server) cardResponses(cards []domain.Card) []cardResponse {
	out := make([]cardResponse, len(cards))
	for i, c := range cards {
		out[i] = s.cardResponse(c)
	}
	return out
}

// decode parses and validates a JSON request body, replying 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorStatus(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorStatus(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) errorStatus(w http.ResponseWriter, status int, msg string) {
	s.json(w, status, errorResponse{Error: msg})
}

// error maps engine and store failures onto HTTP statuses.
func (s *Server) error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.errorStatus(w, http.StatusNotFound, "card not found")
	case errors.Is(err, srs.ErrInvalidQuality):
		s.errorStatus(w, http.StatusBadRequest, "quality rating must be between 0 and 5")
	case errors.Is(err, storage.ErrConflict):
		s.errorStatus(w, http.StatusConflict, "card was reviewed concurrently, reload and retry")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.errorStatus(w, http.StatusInternalServerError, "internal server error")
	}
}
