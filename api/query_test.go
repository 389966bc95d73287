package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmind/sqlmind/internal/executor"
	"github.com/sqlmind/sqlmind/internal/pipeline"
	"github.com/sqlmind/sqlmind/internal/sqlgen"
	"github.com/sqlmind/sqlmind/internal/testutil"
)

type fakeRunner struct {
	outcome *pipeline.Outcome
	err     error
}

func (f *fakeRunner) Run(_ context.Context, question string) (*pipeline.Outcome, error) {
	if f.outcome == nil {
		f.outcome = &pipeline.Outcome{Question: question}
	}
	return f.outcome, f.err
}

func newQueryServer(runner *fakeRunner) *httptest.Server {
	mux := http.NewServeMux()
	NewQueryHandler(runner, testutil.DiscardLogger()).RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestQuerySuccess(t *testing.T) {
	runner := &fakeRunner{
		outcome: &pipeline.Outcome{
			Question: "Show me all customers from California",
			SQL:      "SELECT * FROM customers WHERE state = 'CA'",
			Cached:   false,
			Result: &executor.Result{
				Columns: []string{"first_name"},
				Rows:    []map[string]any{{"first_name": "Alice"}},
			},
		},
	}
	srv := newQueryServer(runner)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/query", `{"question":"Show me all customers from California"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out pipeline.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "SELECT * FROM customers WHERE state = 'CA'", out.SQL)
	assert.False(t, out.Cached)
	require.NotNil(t, out.Result)
	assert.Equal(t, []string{"first_name"}, out.Result.Columns)
}

func TestQueryValidation(t *testing.T) {
	srv := newQueryServer(&fakeRunner{})
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing question", `{}`},
		{"empty question", `{"question":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/query", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestQueryErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "generation failure",
			err:        sqlgen.ErrGenerationFailed,
			wantStatus: http.StatusBadGateway,
			wantCode:   "generation_failed",
		},
		{
			name:       "syntax error",
			err:        &executor.QueryError{Kind: executor.KindSyntax, Err: errors.New("bad sql")},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "syntax_error",
		},
		{
			name:       "schema error",
			err:        &executor.QueryError{Kind: executor.KindSchema, Err: errors.New("no such table")},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "schema_error",
		},
		{
			name:       "timeout",
			err:        &executor.QueryError{Kind: executor.KindTimeout, Err: errors.New("deadline")},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
		},
		{
			name:       "connection error",
			err:        &executor.QueryError{Kind: executor.KindConnection, Err: errors.New("refused")},
			wantStatus: http.StatusBadGateway,
			wantCode:   "connection_error",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{
				outcome: &pipeline.Outcome{SQL: "SELECT broken"},
				err:     tt.err,
			}
			srv := newQueryServer(runner)
			defer srv.Close()

			resp := postJSON(t, srv.URL+"/api/query", `{"question":"q"}`)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, "SELECT broken", body.SQL, "attempted SQL rides along for feedback")
		})
	}
}

func TestQueryMethodNotAllowed(t *testing.T) {
	srv := newQueryServer(&fakeRunner{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/query")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
