package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cardwatch/server/internal/cardwatch/token"
)

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s dur=%s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// requireAuth wraps a handler behind session-token verification:
// 401 when no token is presented, 403 when it fails verification.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(w, r) {
			return
		}
		next(w, r)
	}
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) bool {
	raw := sessionToken(r)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return false
	}

	if _, err := s.auth.Verify(raw); err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			writeError(w, http.StatusForbidden, "token expired")
		} else {
			writeError(w, http.StatusForbidden, "invalid token")
		}
		return false
	}

	return true
}

// sessionToken extracts the token from the Authorization header, falling
// back to the "token" query parameter for websocket clients that cannot
// set headers.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
