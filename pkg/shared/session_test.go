package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rubiojr/cinegrid/pkg/auth"
	"github.com/rubiojr/cinegrid/pkg/tmdb"
)

func TestSessionToken(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		cookie   string
		expected string
	}{
		{"none", "", "", ""},
		{"cookie", "", "abc", "abc"},
		{"bearer", "Bearer xyz", "", "xyz"},
		{"bearer wins", "bearer xyz", "abc", "xyz"},
		{"other scheme ignored", "Basic Zm9vOmJhcg==", "abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			if got := SessionToken(r); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, &auth.Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, true)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "tok" || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("unexpected cookie %+v", cookies)
	}

	w = httptest.NewRecorder()
	ClearSessionCookie(w, false)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestAuthStatus(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrSessionExpired, http.StatusUnauthorized},
		{auth.ErrEmailTaken, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", auth.ErrWeakPassword), http.StatusBadRequest},
		{auth.ErrInvalidEmail, http.StatusBadRequest},
		{auth.ErrPasswordTooLong, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := AuthStatus(tt.err); got != tt.expected {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.expected, got)
		}
	}
	if got := AuthMessage(auth.ErrPasswordTooLong); got != auth.ErrPasswordTooLong.Error() {
		t.Errorf("expected the inline too-long message, got %q", got)
	}
	if AuthMessage(errors.New("disk on fire")) == "disk on fire" {
		t.Error("internal errors must not leak to the form")
	}
}

func TestUpstreamMessage(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{tmdb.ErrMissingToken, "The catalog is not configured. Set a TMDB access token and reload."},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), "The catalog service took too long to answer."},
		{&tmdb.StatusError{Path: "/trending", StatusCode: 401}, "The catalog service rejected our credentials."},
		{&tmdb.StatusError{Path: "/trending", StatusCode: 429}, "The catalog service is busy. Please try again in a moment."},
		{errors.New("boom"), "Could not load titles right now."},
	}
	for _, tt := range tests {
		if got := UpstreamMessage(tt.err); got != tt.expected {
			t.Errorf("%v: expected %q, got %q", tt.err, tt.expected, got)
		}
	}
}
