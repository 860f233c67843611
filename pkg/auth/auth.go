// Package auth manages local accounts and login sessions.
//
// Passwords are stored as bcrypt hashes. A successful sign-up or sign-in
// yields an opaque session token (a random UUID) that expires after the
// configured TTL. Account state changes are published on the realtime hub
// so open pages can react to them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rubiojr/cinegrid/pkg/log"
	"github.com/rubiojr/cinegrid/pkg/realtime"
	"github.com/rubiojr/cinegrid/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrSessionExpired     = errors.New("session expired, please sign in again")
	ErrNoSession          = errors.New("not signed in")
)

const (
	MinPasswordLength = 6
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes  = 72
	DefaultSessionTTL = 30 * 24 * time.Hour
)

// Store is the persistence the service needs. *storage.Store implements it.
type Store interface {
	CreateUser(ctx context.Context, u storage.User) error
	UserByEmail(ctx context.Context, email string) (*storage.User, error)
	UserByID(ctx context.Context, id string) (*storage.User, error)
	CreateSession(ctx context.Context, s storage.Session) error
	Session(ctx context.Context, token string) (*storage.Session, error)
	DeleteSession(ctx context.Context, token string) (bool, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated login.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	store  Store
	hub    *realtime.Hub
	ttl    time.Duration
	cost   int
	now    func() time.Time
	logger *log.Logger
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an auth service. A private hub is used when hub is nil.
func NewService(store Store, hub *realtime.Hub, opts ...Option) *Service {
	if hub == nil {
		hub = realtime.NewHub(0)
	}
	s := &Service{
		store:  store,
		hub:    hub,
		ttl:    DefaultSessionTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: log.ForService("auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// CheckPassword reports whether password can be used for a new account.
func CheckPassword(password string) error {
	if err := validate.Var(password, fmt.Sprintf("required,min=%d", MinPasswordLength)); err != nil {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// SignUp creates an account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Infof("created account %s", email)

	sess, err := s.newSession(ctx, &u)
	if err != nil {
		return nil, err
	}
	s.publish(realtime.SignedUp, u.ID)
	return sess, nil
}

// SignIn verifies the credentials and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.newSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.publish(realtime.SignedIn, u.ID)
	return sess, nil
}

func (s *Service) newSession(ctx context.Context, u *storage.User) (*Session, error) {
	now := s.now().UTC()
	rec := storage.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.CreateSession(ctx, rec); err != nil {
		return nil, err
	}
	return &Session{Token: rec.Token, User: publicUser(u), ExpiresAt: rec.ExpiresAt}, nil
}

// SignOut ends the session. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	rec, err := s.store.Session(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.store.DeleteSession(ctx, token); err != nil {
		return err
	}
	s.publish(realtime.SignedOut, rec.UserID)
	return nil
}

// User resolves a session token to its account.
func (s *Service) User(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	rec, err := s.store.Session(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !s.now().Before(rec.ExpiresAt) {
		if _, err := s.store.DeleteSession(ctx, token); err != nil {
			s.logger.Warnf("failed to delete expired session: %v", err)
		}
		return nil, ErrSessionExpired
	}

	u, err := s.store.UserByID(ctx, rec.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	pu := publicUser(u)
	return &pu, nil
}

// PruneSessions drops expired sessions.
func (s *Service) PruneSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

// Subscribe delivers sign-up, sign-in and sign-out events until ctx ends
// or the subscription is closed.
func (s *Service) Subscribe(ctx context.Context) *realtime.Subscription {
	return s.hub.Subscribe(ctx, func(e realtime.Event) bool {
		switch e.Type {
		case realtime.SignedUp, realtime.SignedIn, realtime.SignedOut:
			return true
		}
		return false
	})
}

func (s *Service) publish(eventType, userID string) {
	s.hub.Publish(realtime.Event{Type: eventType, UserID: userID, At: s.now().UTC()})
}

func publicUser(u *storage.User) User {
	return User{ID: u.ID, Email: u.Email, FullName: u.FullName, CreatedAt: u.CreatedAt}
}

// Initials returns two uppercase letters for an avatar badge: first and
// last name initials, else the first two letters of a single name, else the
// first two letters of the email's local part. "U" when nothing is usable.
func Initials(u *User) string {
	if u == nil {
		return "U"
	}

	names := strings.Fields(u.FullName)
	switch {
	case len(names) >= 2:
		first := []rune(names[0])
		last := []rune(names[len(names)-1])
		return strings.ToUpper(string(first[0]) + string(last[0]))
	case len(names) == 1 && len([]rune(names[0])) >= 2:
		return strings.ToUpper(string([]rune(names[0])[:2]))
	}

	local, _, _ := strings.Cut(u.Email, "@")
	r := []rune(local)
	switch {
	case len(r) >= 2:
		return strings.ToUpper(string(r[:2]))
	case len(r) == 1:
		return strings.ToUpper(string(r))
	}
	return "U"
}
