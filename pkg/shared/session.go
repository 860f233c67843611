// Package shared holds HTTP helpers used by both the JSON API and the web
// UI.
package shared

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/tmdb"
)

// SessionCookie is the name of the login cookie.
const SessionCookie = "cinegrid_session"

// SessionToken returns the session token of a request. An Authorization
// bearer header wins over the cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// SetSessionCookie stores the session token in an HTTP-only cookie.
func SetSessionCookie(w http.ResponseWriter, sess *auth.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the login cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthStatus maps an auth error to an HTTP status code.
func AuthStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// AuthMessage converts auth errors into the inline message shown on the
// login form. Unknown errors get a generic message.
func AuthMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrNoSession):
		return err.Error()
	}
	return "Something went wrong. Please try again."
}

// UpstreamMessage converts catalog fetch errors into a user-facing message.
func UpstreamMessage(err error) string {
	if errors.Is(err, tmdb.ErrMissingToken) {
		return "The catalog is not configured. Set a TMDB access token and reload."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The catalog service took too long to answer."
	}

	var se *tmdb.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized:
			return "The catalog service rejected our credentials."
		case http.StatusTooManyRequests:
			return "The catalog service is busy. Please try again in a moment."
		}
	}

	if strings.Contains(err.Error(), "timeout") {
		return "The catalog service took too long to answer."
	}
	return "Could not load titles right now."
}
