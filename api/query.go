package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sqlmind/sqlmind/internal/executor"
	"github.com/sqlmind/sqlmind/internal/log"
	"github.com/sqlmind/sqlmind/internal/pipeline"
	"github.com/sqlmind/sqlmind/internal/sqlgen"
)

// QueryRunner runs one question through the pipeline.
type QueryRunner interface {
	Run(ctx context.Context, question string) (*pipeline.Outcome, error)
}

// QueryHandler handles the query endpoint.
type QueryHandler struct {
	runner QueryRunner
	logger log.Logger
}

// NewQueryHandler creates a query handler.
func NewQueryHandler(runner QueryRunner, logger log.Logger) *QueryHandler {
	return &QueryHandler{runner: runner, logger: logger}
}

// RegisterRoutes registers query routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.handleQuery)
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question string `json:"question"`
}

func (h *QueryHandler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}

	outcome, err := h.runner.Run(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("pipeline run failed", "question", req.Question, "error", err)
		status, code := classifyRunError(err)
		writeJSON(w, status, ErrorResponse{
			Error:   code,
			Message: err.Error(),
			SQL:     outcome.SQL,
		})
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// classifyRunError maps pipeline failures to HTTP status codes and
// stable error codes.
func classifyRunError(err error) (int, string) {
	if errors.Is(err, sqlgen.ErrGenerationFailed) {
		return http.StatusBadGateway, "generation_failed"
	}
	var qerr *executor.QueryError
	if errors.As(err, &qerr) {
		switch qerr.Kind {
		case executor.KindSyntax, executor.KindSchema:
			return http.StatusUnprocessableEntity, string(qerr.Kind)
		case executor.KindTimeout:
			return http.StatusGatewayTimeout, string(qerr.Kind)
		default:
			return http.StatusBadGateway, string(qerr.Kind)
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
