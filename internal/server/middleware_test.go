package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/websocket"
)

func jsonLogger(buf *bytes.Buffer) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelDebug,
		Format: "json",
		Output: buf,
	})
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"), mark("c"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c", "handler"}, order)

	assert.Panics(t, func() { Chain(nil) })
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	handler := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), Recovery(jsonLogger(&buf)))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Recovered from panic", lines[0]["msg"])
	assert.Equal(t, "/api/state", lines[0]["path"])
	assert.Contains(t, lines[0]["error"], "boom")
}

func TestRecoveryRepanicsAbortHandler(t *testing.T) {
	handler := Recovery(logging.NewNopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf)

	ok := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}), RequestLogger(logger))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	failing := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}), RequestLogger(logger))
	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/navigate", nil))

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "/health", lines[0]["path"])
	assert.EqualValues(t, 200, lines[0]["status"])
	assert.EqualValues(t, 5, lines[0]["bytes"])

	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "POST", lines[1]["method"])
	assert.EqualValues(t, 503, lines[1]["status"])
}

func TestStatusRecorderKeepsInterfaces(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}

	var w http.ResponseWriter = rec
	_, isHijacker := w.(http.Hijacker)
	_, isFlusher := w.(http.Flusher)
	assert.True(t, isHijacker)
	assert.True(t, isFlusher)

	// httptest.ResponseRecorder cannot hijack.
	_, _, err := rec.Hijack()
	assert.Error(t, err)

	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, rec.status)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "same-origin", rec.Header().Get("Referrer-Policy"))
}

func TestOriginGuard(t *testing.T) {
	guard := OriginGuard(websocket.AllowList{"http://localhost:8080"}, logging.NewNopLogger())
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		origin string
		want   int
	}{
		{"get from anywhere", http.MethodGet, "http://evil.example", http.StatusNoContent},
		{"post without origin", http.MethodPost, "", http.StatusNoContent},
		{"post from allowed origin", http.MethodPost, "http://localhost:8080", http.StatusNoContent},
		{"post from other origin", http.MethodPost, "http://evil.example", http.StatusForbidden},
		{"post from other port", http.MethodPost, "http://localhost:9999", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/navigate", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
