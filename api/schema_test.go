package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmind/sqlmind/internal/testutil"
)

type fakeSchemaSource struct {
	text string
	err  error
}

func (f *fakeSchemaSource) Schema(context.Context) (string, error) {
	return f.text, f.err
}

func TestSchemaEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	source := &fakeSchemaSource{text: "Table: customers\nColumns: first_name (TEXT)"}
	NewSchemaHandler(source, testutil.DiscardLogger()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body SchemaResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Schema, "Table: customers")
}

func TestSchemaEndpointFailure(t *testing.T) {
	mux := http.NewServeMux()
	NewSchemaHandler(&fakeSchemaSource{err: errors.New("db down")}, testutil.DiscardLogger()).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
