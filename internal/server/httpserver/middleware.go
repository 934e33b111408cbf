package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/molyneaux/vehicle-photo-api/internal/common"
	"github.com/molyneaux/vehicle-photo-api/internal/logging"
	"github.com/molyneaux/vehicle-photo-api/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// UserFromContext returns the user set by the authentication middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate rejects requests without a valid bearer token before the
// handler runs and stores the resolved user in the request context.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeUnauthorized(w, "Not authenticated")
			return
		}

		user, err := s.users.CurrentUser(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				logging.FromContext(r.Context(), s.logger).Warn(r.Context(), "token rejected", "error", err)
				writeUnauthorized(w, "Could not validate credentials")
				return
			}
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog writes one line per request and makes a request-scoped logger
// available through logging.FromContext.
func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		l := s.logger.With("request_id", chimiddleware.GetReqID(r.Context()))
		ctx := logging.WithContext(r.Context(), l)

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		l.Info(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
