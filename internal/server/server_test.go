package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	batch "github.com/gqlbridge/gqlbridge/internal/batch"
	"github.com/stretchr/testify/require"
)

func newTestHandler(opts ...Option) *Handler {
	return New(batch.New(batch.NewSchemaEngine()), opts...)
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/introspect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeOutcome(t *testing.T, w *httptest.ResponseRecorder) batch.Outcome {
	t.Helper()
	var outcome batch.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	return outcome
}

func TestServeHTTP_OkBranch(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{
		"sdl": "type Query { hello: String }",
		"queries": ["{ __schema { queryType { name } } }"]
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	outcome := decodeOutcome(t, w)
	require.False(t, outcome.Failed())
	require.Len(t, outcome.Ok, 1)
	require.Equal(t, "Query",
		outcome.Ok[0]["__schema"].(map[string]any)["queryType"].(map[string]any)["name"])
}

func TestServeHTTP_EmptySDL(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{"sdl": "  ", "queries": ["{ __typename }"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	outcome := decodeOutcome(t, w)
	require.True(t, outcome.Failed())
	require.Equal(t, "SDL is empty.", outcome.Err[0].Message)
}

func TestServeHTTP_QueryErrorBranch(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{
		"sdl": "type Query { hello: String }",
		"queries": ["{ __typename }", "{ broken"]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	outcome := decodeOutcome(t, w)
	require.True(t, outcome.Failed())
	require.Empty(t, outcome.Ok)
}

func TestServeHTTP_MethodNotAllowed(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest("GET", "/introspect", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	outcome := decodeOutcome(t, w)
	require.True(t, outcome.Failed())
}

func TestServeHTTP_InvalidJSON(t *testing.T) {
	h := newTestHandler()
	w := postJSON(t, h, `{"sdl": `)
	require.Equal(t, http.StatusBadRequest, w.Code)

	outcome := decodeOutcome(t, w)
	require.Equal(t, "invalid JSON", outcome.Err[0].Message)
}

func TestServeHTTP_UnsupportedContentType(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest("POST", "/introspect", strings.NewReader("sdl=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServeHTTP_BodyTooLarge(t *testing.T) {
	h := newTestHandler(WithMaxBodyBytes(16))
	w := postJSON(t, h, `{"sdl": "type Query { hello: String }", "queries": []}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServeHTTP_CORS(t *testing.T) {
	h := newTestHandler(WithCORS("https://app.example.com"))

	req := httptest.NewRequest("OPTIONS", "/introspect", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "POST,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest("OPTIONS", "/introspect", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeHTTP_PrettyOutput(t *testing.T) {
	h := newTestHandler(WithPretty())
	w := postJSON(t, h, `{"sdl": "type Query { hello: String }", "queries": []}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "\n")
	require.JSONEq(t, `{"Ok":[]}`, w.Body.String())
}
