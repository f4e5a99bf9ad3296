package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"armar/internal/config"
	"armar/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// chain applies middlewares so that the first one is the outermost.
func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type ctxKey struct{}

// RequestIDFromContext returns the id assigned by the request id middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func recoverMiddleware(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error().
						Interface("panic", rec).
						Str("path", r.URL.Path).
						Str("request_id", RequestIDFromContext(r.Context())).
						Bytes("stack", debug.Stack()).
						Msg("handler panicked")
					writeError(w, http.StatusInternalServerError, "Internal Server Error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware answers preflight requests and decorates responses for allowed origins.
// A "*" entry in methods or headers allows whatever the browser asks for. With credentials
// enabled a "*" origin echoes the caller's origin.
func corsMiddleware(cfg config.CORSConfig) Middleware {
	origins := normalizeList(cfg.AllowedOrigins)
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	opts := cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       normalizeList(cfg.AllowedMethods),
		AllowedHeaders:       normalizeList(cfg.AllowedHeaders),
		AllowCredentials:     cfg.AllowCredentials,
		MaxAge:               cfg.MaxAge,
		OptionsSuccessStatus: http.StatusNoContent,
	}
	if slices.Contains(opts.AllowedMethods, "*") {
		opts.AllowedMethods = anyMethod
	}
	if slices.Contains(origins, "*") && cfg.AllowCredentials {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(opts).Handler
}

var anyMethod = []string{
	http.MethodDelete, http.MethodGet, http.MethodHead, http.MethodOptions,
	http.MethodPatch, http.MethodPost, http.MethodPut,
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loggingMiddleware(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := newStatusRecorder(w)
			next.ServeHTTP(recorder, r)

			event := logger.Info()
			if recorder.status >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Int("bytes", recorder.bytes).
				Dur("duration", time.Since(start)).
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("remote_addr", r.RemoteAddr).
				Msg("http request")
		})
	}
}

// metricsMiddleware records the request under a fixed endpoint label.
func metricsMiddleware(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := newStatusRecorder(w)
		next.ServeHTTP(recorder, r)

		label := endpoint
		if endpoint == "/" && r.URL.Path != "/" {
			label = "unmatched"
		}
		metrics.ObserveHTTP(label, recorder.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
