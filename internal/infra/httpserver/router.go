// internal/infra/httpserver/router.go
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"personal_assistant_bot/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const msgAuthFailed = "❌ No pude completar la autenticación. Vuelve a intentarlo desde /auth."

// AuthFlow is the OAuth consent flow served over HTTP.
type AuthFlow interface {
	BeginAuth() string
	CompleteAuth(ctx context.Context, state, code string) error
}

// NewRouter mounts the health check, the OAuth endpoints and, when webhook is
// not nil, the Telegram webhook.
func NewRouter(auth AuthFlow, webhook http.Handler, logger *logrus.Entry) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	r.Get("/auth", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, auth.BeginAuth(), http.StatusFound)
	})
	r.Get("/oauth2callback", callbackHandler(auth, logger))
	if webhook != nil {
		r.Method(http.MethodPost, "/webhook", webhook)
	}
	return r
}

func callbackHandler(auth AuthFlow, logger *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if e := q.Get("error"); e != "" {
			logger.WithField("oauth_error", e).Warn("Owner declined OAuth consent")
			writeText(w, http.StatusBadRequest, msgAuthFailed)
			return
		}

		err := auth.CompleteAuth(req.Context(), q.Get("state"), q.Get("code"))
		switch {
		case err == nil:
			writeText(w, http.StatusOK, app.MsgAuthSucceeded)
		case errors.Is(err, app.ErrInvalidState), errors.Is(err, app.ErrMissingCode):
			writeText(w, http.StatusBadRequest, msgAuthFailed)
		default:
			logger.WithError(err).Error("OAuth callback failed")
			writeText(w, http.StatusInternalServerError, msgAuthFailed)
		}
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func requestLogger(logger *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)

			// Query strings carry OAuth codes; only the path is logged.
			logger.WithFields(logrus.Fields{
				"correlation_id": middleware.GetReqID(req.Context()),
				"method":         req.Method,
				"path":           req.URL.Path,
				"status":         ww.Status(),
				"duration_ms":    time.Since(start).Milliseconds(),
			}).Info("HTTP request")
		})
	}
}
