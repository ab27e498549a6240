package logger

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ClientIPFunc resolves the client address recorded for a request.
type ClientIPFunc func(r *http.Request) string

// Requests attaches a request-scoped logger to every request context and logs each
// completed request. Server errors log at error level.
type Requests struct {
	logger   zerolog.Logger
	clientIP ClientIPFunc
}

// NewRequests creates request logging middleware. clientIP may be nil.
func NewRequests(logger zerolog.Logger, clientIP ClientIPFunc) *Requests {
	return &Requests{logger: logger, clientIP: clientIP}
}

// Handler wraps next.
func (l *Requests) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		lc := l.logger.With().
			Str("method", r.Method).
			Str("path", r.URL.Path)
		if id := chimw.GetReqID(r.Context()); id != "" {
			lc = lc.Str("request_id", id)
		}
		if l.clientIP != nil {
			lc = lc.Str("client_ip", l.clientIP(r))
		}
		logger := lc.Logger()

		ctx := logger.WithContext(r.Context())
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		event := zerolog.Ctx(ctx).Info()
		if status >= http.StatusInternalServerError {
			event = zerolog.Ctx(ctx).Error()
		}

		event.
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(started)).
			Msg("http request")
	})
}
