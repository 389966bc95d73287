package api

import (
	"context"
	"net/http"

	"github.com/sqlmind/sqlmind/internal/log"
)

// SchemaSource renders the database schema description.
type SchemaSource interface {
	Schema(ctx context.Context) (string, error)
}

// SchemaHandler handles the schema endpoint.
type SchemaHandler struct {
	source SchemaSource
	logger log.Logger
}

// NewSchemaHandler creates a schema handler.
func NewSchemaHandler(source SchemaSource, logger log.Logger) *SchemaHandler {
	return &SchemaHandler{source: source, logger: logger}
}

// RegisterRoutes registers schema routes on the given mux.
func (h *SchemaHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/schema", h.handleSchema)
}

// SchemaResponse is the body of GET /api/schema.
type SchemaResponse struct {
	Schema string `json:"schema"`
}

func (h *SchemaHandler) handleSchema(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.source.Schema(r.Context())
	if err != nil {
		h.logger.Error("schema introspection failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not read schema")
		return
	}
	writeJSON(w, http.StatusOK, SchemaResponse{Schema: rendered})
}
