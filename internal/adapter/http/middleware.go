package http

import (
	nethttp "net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// TokenAuth rejects requests without "Authorization: Bearer <token>"
func TokenAuth(validToken string) mux.MiddlewareFunc {
	return func(next nethttp.Handler) nethttp.Handler {
		return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, nethttp.StatusUnauthorized, errorBody("missing authorization header"))
				return
			}
			if strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")) != validToken {
				writeJSON(w, nethttp.StatusUnauthorized, errorBody("invalid token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	nethttp.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every request with its route template, never the raw
// path, so routing numbers in path variables stay out of the logs.
func RequestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next nethttp.Handler) nethttp.Handler {
		return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("route", routeTemplate(r)),
				zap.Int("status", rec.status),
				zap.String("request_id", requestID),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

func routeTemplate(r *nethttp.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
