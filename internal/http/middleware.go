package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fairyhunter13/marketplace-simulator/internal/obs"
)

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}

// responseRecorder captures what the access log needs. route is filled in by
// withRoute once mux has matched the request.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	route  string
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// WithRequestID propagates a caller supplied X-Request-Id or assigns a uuid.
// Ids that are empty, too long or not printable ASCII are replaced.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if !validRequestID(reqID) {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, reqID)))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// WithLogging writes one access log line per request. Routes are logged by
// their template so producer and cart ids do not explode the key space.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := rec.route
		if route == "" {
			route = "unmatched"
		}
		kv := []any{
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"bytes", rec.bytes,
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", RequestIDFromContext(r.Context()),
		}
		if rec.status >= http.StatusInternalServerError {
			obs.Logger.Errorw("http_request", kv...)
			return
		}
		obs.Logger.Infow("http_request", kv...)
	})
}

// withRoute is a mux middleware that records the matched path template.
func withRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec, ok := w.(*responseRecorder); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					rec.route = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WithRecover turns a handler panic into a 500 so one bad request cannot take
// the server down.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				obs.Logger.Errorw("handler_panic",
					"panic", v,
					"request_id", RequestIDFromContext(r.Context()),
				)
				WriteJSONError(w, http.StatusInternalServerError, CodeInternal, "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
