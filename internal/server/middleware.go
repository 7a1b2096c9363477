package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/conneroisu/collegedash/internal/errors"
	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/websocket"
)

// Middleware represents a single middleware function
type Middleware func(http.Handler) http.Handler

// Chain wraps handler so that the first middleware is the outermost: with
// [A, B, C] a request flows A -> B -> C -> handler.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	if handler == nil {
		panic("server.Chain: handler cannot be nil")
	}
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// statusRecorder captures the status code and size of a response. It passes
// Hijack and Flush through so WebSocket upgrades keep working.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	if r.status == 0 {
		r.status = http.StatusSwitchingProtocols
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestLogger logs one line per request. Server errors log at error level,
// everything else at debug.
func RequestLogger(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{
				"method", r.Method,
				"path", logging.SanitizeForLog(r.URL.Path),
				"status", status,
				"bytes", rec.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if status >= http.StatusInternalServerError {
				logger.Error(r.Context(), fmt.Errorf("%s", http.StatusText(status)), "Request failed", fields...)
				return
			}
			logger.Debug(r.Context(), "Request handled", fields...)
		})
	}
}

// Recovery turns a panicking handler into a 500 response. http.ErrAbortHandler
// is re-raised so net/http can abort the connection as intended.
func Recovery(logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := errors.NewInternalError("ERR_PANIC", "handler panicked", fmt.Errorf("%v", rec))
				logger.Error(r.Context(), err, "Recovered from panic",
					"method", r.Method,
					"path", logging.SanitizeForLog(r.URL.Path),
					"stack", string(debug.Stack()))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets conservative response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// OriginGuard rejects state-changing requests whose Origin header is not
// allowed. GET, HEAD and OPTIONS pass through; the WebSocket endpoint checks
// origins itself.
func OriginGuard(validator websocket.OriginValidator, logger logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			origin := r.Header.Get("Origin")
			if !validator.IsAllowedOrigin(origin) {
				logger.Warn(r.Context(), errors.ErrInvalidOrigin(origin), "Cross-origin request rejected",
					"method", r.Method, "path", logging.SanitizeForLog(r.URL.Path))
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
