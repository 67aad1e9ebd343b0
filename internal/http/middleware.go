package http

import (
	"net/http"
	"strconv"
	"time"

	applog "prospect/internal/log"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// middleware tags each request with an ID and a scoped logger, applies
// security headers and the write rate limit, and logs completion.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := requestIDFrom(r)

		logger := s.logger.With(applog.FieldRequestID, requestID, applog.FieldClientIP, clientIP)
		ctx := applog.WithLogger(r.Context(), logger)
		r = r.WithContext(ctx)

		w.Header().Set(requestIDHeader, requestID)
		setSecurityHeaders(w.Header())
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		if isSuspicious(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", strconv.Itoa(int(s.rateLimiter.window.Seconds())))
			writeError(rw, http.StatusTooManyRequests, "rate limit exceeded")
		} else {
			next.ServeHTTP(rw, r)
		}

		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// requestIDFrom honors a caller-supplied ID of sane length, otherwise
// generates one.
func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}

// responseWriter captures the status code for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
