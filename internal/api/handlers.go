package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
	"github.com/dailypuzzle/puzzle-engine/internal/puzzle"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// parseDateParam validates a {date} URL parameter in 2006-01-02 form
func parseDateParam(r *http.Request) (time.Time, string, bool) {
	raw := chi.URLParam(r, "date")
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, raw, true
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Puzzle handlers

func (s *Server) handleGetToday(w http.ResponseWriter, r *http.Request) {
	id := models.DateKey(time.Now().UTC())

	p, err := s.manager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, puzzle.ErrPuzzleNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "no puzzle published for today yet")
			return
		}
		slog.Error("failed to get today's puzzle", "error", err, "date", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get puzzle")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	_, id, ok := parseDateParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "date must be in YYYY-MM-DD format")
		return
	}

	p, err := s.manager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, puzzle.ErrPuzzleNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "puzzle not found")
			return
		}
		slog.Error("failed to get puzzle", "error", err, "date", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get puzzle")
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	_, id, ok := parseDateParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "validation_error", "date must be in YYYY-MM-DD format")
		return
	}

	var req models.AttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := s.manager.RecordAttempt(r.Context(), id, req.Solved)
	if err != nil {
		if errors.Is(err, puzzle.ErrPuzzleNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "puzzle not found")
			return
		}
		slog.Error("failed to record attempt", "error", err, "date", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to record attempt")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_attempts":    p.TotalAttempts,
		"successful_solves": p.SuccessfulSolves,
		"solve_rate":        p.SolveRate(),
	})
}

// Statistics handlers

func (s *Server) handleStumpStats(w http.ResponseWriter, r *http.Request) {
	tallies, err := s.manager.StumpTallies(r.Context())
	if err != nil {
		slog.Error("failed to list stump tallies", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get stump statistics")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"models": tallies,
		"total":  len(tallies),
	})
}

func (s *Server) handleDifficultyHistory(w http.ResponseWriter, r *http.Request) {
	category := models.Category(chi.URLParam(r, "category"))

	limit := 30 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	history, err := s.manager.DifficultyHistory(r.Context(), category, limit)
	if err != nil {
		if errors.Is(err, puzzle.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "validation_error", "unknown category")
			return
		}
		slog.Error("failed to list difficulty history", "error", err, "category", category)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get difficulty history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"history":  history,
		"total":    len(history),
	})
}

// Admin handlers

func (s *Server) handleTriggerGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "date must be in YYYY-MM-DD format")
			return
		}
		date = parsed
	}

	category := s.rotation.CategoryFor(date)
	if req.Category != "" {
		category = models.Category(req.Category)
	}

	outcome, err := s.manager.GenerateDaily(r.Context(), date, category)
	if err != nil {
		switch {
		case errors.Is(err, puzzle.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "validation_error", "unknown category")
		case errors.Is(err, puzzle.ErrPuzzleExists):
			respondError(w, http.StatusConflict, "already_exists", "a puzzle already exists for this date")
		case errors.Is(err, puzzle.ErrPuzzleRejected):
			// the outcome carries the validation issues
			respondJSON(w, http.StatusUnprocessableEntity, outcome)
		default:
			slog.Error("failed to generate puzzle", "error", err, "date", models.DateKey(date))
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to generate puzzle")
		}
		return
	}

	respondJSON(w, http.StatusCreated, outcome)
}

func (s *Server) handleTriggerEvaluate(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	date := time.Now().UTC().AddDate(0, 0, -1)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "date must be in YYYY-MM-DD format")
			return
		}
		date = parsed
	}

	history, err := s.manager.EvaluateDaily(r.Context(), date)
	if err != nil {
		if errors.Is(err, puzzle.ErrPuzzleNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "no puzzle to evaluate for this date")
			return
		}
		slog.Error("failed to evaluate puzzle", "error", err, "date", models.DateKey(date))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to evaluate puzzle")
		return
	}

	respondJSON(w, http.StatusOK, history)
}
