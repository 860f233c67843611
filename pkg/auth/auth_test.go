package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rubiojr/cinegrid/pkg/realtime"
	"github.com/rubiojr/cinegrid/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *testClock, *realtime.Hub) {
	t.Helper()
	store, err := storage.OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	hub := realtime.NewHub(8)
	svc := NewService(store, hub,
		WithBcryptCost(bcrypt.MinCost),
		WithSessionTTL(time.Hour),
		WithClock(clock.now),
	)
	return svc, clock, hub
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, "  Trinity@Matrix.io ", "followthewhiterabbit", "Trinity")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if sess.Token == "" || sess.User.Email != "trinity@matrix.io" {
		t.Fatalf("unexpected session %+v", sess)
	}

	u, err := svc.User(ctx, sess.Token)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if u.ID != sess.User.ID {
		t.Fatalf("expected %s, got %s", sess.User.ID, u.ID)
	}

	again, err := svc.SignIn(ctx, "TRINITY@matrix.io", "followthewhiterabbit")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if again.Token == sess.Token {
		t.Fatal("expected a fresh session token")
	}
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "neo@matrix.io", "redpill", ""); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		expected error
	}{
		{"taken", "NEO@matrix.io", "anotherpass", ErrEmailTaken},
		{"short password", "morpheus@matrix.io", "12345", ErrWeakPassword},
		{"no at", "morpheus", "longenough", ErrInvalidEmail},
		{"display name form", "Morpheus <m@matrix.io>", "longenough", ErrInvalidEmail},
		{"no domain dot", "m@localhost", "longenough", ErrInvalidEmail},
		{"password over bcrypt limit", "morpheus@matrix.io", strings.Repeat("x", 80), ErrPasswordTooLong},
		{"multibyte password over limit", "morpheus@matrix.io", strings.Repeat("ñ", 40), ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.email, tt.password, "")
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected error
	}{
		{"empty", "", ErrWeakPassword},
		{"short", "12345", ErrWeakPassword},
		{"minimum", "123456", nil},
		{"at limit", strings.Repeat("x", MaxPasswordBytes), nil},
		{"over limit", strings.Repeat("x", MaxPasswordBytes+1), ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckPassword(tt.password); !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestSignInFailures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, "neo@matrix.io", "redpill", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SignIn(ctx, "neo@matrix.io", "bluepill"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "smith@matrix.io", "redpill"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	svc, clock, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, "neo@matrix.io", "redpill", "")
	if err != nil {
		t.Fatal(err)
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if _, err := svc.User(ctx, sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.User(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expired session should be removed, got %v", err)
	}
	if _, err := svc.User(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSignOut(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.SignUp(ctx, "neo@matrix.io", "redpill", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := svc.User(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after sign out, got %v", err)
	}
	if err := svc.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("second sign out should be a no-op, got %v", err)
	}
}

func TestAuthEvents(t *testing.T) {
	svc, _, hub := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := svc.Subscribe(ctx)
	hub.Publish(realtime.Event{Type: realtime.FavoriteAdded, UserID: "x"})

	sess, err := svc.SignUp(context.Background(), "neo@matrix.io", "redpill", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SignIn(context.Background(), "neo@matrix.io", "redpill"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SignOut(context.Background(), sess.Token); err != nil {
		t.Fatal(err)
	}

	want := []string{realtime.SignedUp, realtime.SignedIn, realtime.SignedOut}
	for _, w := range want {
		select {
		case e := <-sub.Events():
			if e.Type != w || e.UserID != sess.User.ID {
				t.Fatalf("expected %s for %s, got %+v", w, sess.User.ID, e)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", w)
		}
	}

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not released")
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name     string
		user     *User
		expected string
	}{
		{"nil user", nil, "U"},
		{"first and last", &User{FullName: "john ronald reuel tolkien", Email: "x@y.z"}, "JT"},
		{"single name", &User{FullName: "  neo ", Email: "x@y.z"}, "NE"},
		{"single letter name falls back to email", &User{FullName: "Q", Email: "trinity@matrix.io"}, "TR"},
		{"email only", &User{Email: "te@example.com"}, "TE"},
		{"one letter local part", &User{Email: "k@example.com"}, "K"},
		{"nothing", &User{}, "U"},
		{"unicode", &User{FullName: "Émile Zola"}, "ÉZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Initials(tt.user); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
