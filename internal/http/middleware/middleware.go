// Package middleware holds the HTTP middleware chain shared by the API and the
// local catalog UI.
package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"cosmos-catalog/internal/http/respond"
	"cosmos-catalog/internal/logger"
)

type ctxKey int

const ctxKeyRequestID ctxKey = iota

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

// RequestID keeps an incoming X-Request-Id or assigns a new UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

// Recover turns a panic into a generic 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.L().Error("panic",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				respond.Error(w, http.StatusInternalServerError, respond.MsgInternal, "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

type logOptions struct {
	skips map[string]struct{}
}

// LogOption configures LogRequests.
type LogOption func(*logOptions)

// WithSkips suppresses logging for exact paths, e.g. health probes.
func WithSkips(paths ...string) LogOption {
	return func(o *logOptions) {
		for _, p := range paths {
			o.skips[p] = struct{}{}
		}
	}
}

// LogRequests writes one structured line per request.
func LogRequests(opts ...LogOption) func(http.Handler) http.Handler {
	o := &logOptions{skips: map[string]struct{}{}}
	for _, opt := range opts {
		opt(o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := o.skips[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			logger.L().Info("http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.status,
				"bytes", sr.bytes,
				"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
				"request_id", RequestIDFromContext(r.Context()),
			)
		})
	}
}

// OfflineGate answers 503 while offline() is true, except for the allowed paths.
func OfflineGate(offline func() bool, allow ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allow))
	for _, p := range allow {
		allowed[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allowed[r.URL.Path]; !ok && offline() {
				respond.Error(w, http.StatusServiceUnavailable, "Service temporarily offline", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMethods and CORSHeaders are advertised to the allowed origin.
var (
	CORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}
	CORSHeaders = []string{"Content-Type", "Authorization"}
)

// CORS allows a single origin. Preflight requests from it get 204; other
// origins receive no CORS headers, which the browser treats as a refusal.
func CORS(origin string) func(http.Handler) http.Handler {
	methods := strings.Join(CORSMethods, ", ")
	headers := strings.Join(CORSHeaders, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqOrigin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")
			if reqOrigin == "" || origin == "" || reqOrigin != origin {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Gzip compresses responses for clients that accept it.
func Gzip(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
