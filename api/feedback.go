package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sqlmind/sqlmind/internal/feedback"
	"github.com/sqlmind/sqlmind/internal/log"
)

// FeedbackStore is the feedback surface the API needs.
type FeedbackStore interface {
	AddFeedback(ctx context.Context, question, sql string, vote feedback.Vote) (feedback.Metrics, error)
	OverallStats(ctx context.Context) (feedback.Stats, error)
	FailedPatterns(ctx context.Context) ([]feedback.Pattern, error)
}

// FeedbackHandler handles feedback endpoints.
type FeedbackHandler struct {
	store  FeedbackStore
	logger log.Logger
}

// NewFeedbackHandler creates a feedback handler.
func NewFeedbackHandler(store FeedbackStore, logger log.Logger) *FeedbackHandler {
	return &FeedbackHandler{store: store, logger: logger}
}

// RegisterRoutes registers feedback routes on the given mux.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/feedback", h.handleSubmit)
	mux.HandleFunc("GET /api/feedback/stats", h.handleStats)
	mux.HandleFunc("GET /api/feedback/failures", h.handleFailures)
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
	Vote     string `json:"vote"`
}

// FeedbackResponse acknowledges a recorded vote with fresh metrics.
type FeedbackResponse struct {
	Metrics feedback.Metrics `json:"metrics"`
	Message string           `json:"message"`
}

func (h *FeedbackHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Question == "" || req.SQL == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question and sql are required")
		return
	}
	vote := feedback.Vote(req.Vote)
	if !vote.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_request", `vote must be "up" or "down"`)
		return
	}

	metrics, err := h.store.AddFeedback(r.Context(), req.Question, req.SQL, vote)
	if err != nil {
		h.logger.Error("feedback submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not record feedback")
		return
	}

	writeJSON(w, http.StatusOK, FeedbackResponse{
		Metrics: metrics,
		Message: metrics.StatusMessage(),
	})
}

func (h *FeedbackHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.OverallStats(r.Context())
	if err != nil {
		h.logger.Error("feedback stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not read stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *FeedbackHandler) handleFailures(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.store.FailedPatterns(r.Context())
	if err != nil {
		h.logger.Error("failed patterns lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not read failure patterns")
		return
	}
	if patterns == nil {
		patterns = []feedback.Pattern{}
	}
	writeJSON(w, http.StatusOK, patterns)
}
