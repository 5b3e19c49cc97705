package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/core/domain"
	"github.com/rl1809/smart-pos/internal/port"
)

// GuardDecision tells the caller whether a page may render or where to go instead.
type GuardDecision struct {
	Allow      bool        `json:"allow"`
	RedirectTo domain.Page `json:"redirect,omitempty"`
}

// SessionManager owns the registered users and the terminal's single
// current-user record.
type SessionManager struct {
	store port.CollectionStore
	log   *logrus.Logger
	now   func() time.Time
	newID func() string
	mu    sync.Mutex
}

func NewSessionManager(store port.CollectionStore, logger *logrus.Logger) *SessionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &SessionManager{
		store: store,
		log:   logger,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *SessionManager) Users(ctx context.Context) ([]domain.User, error) {
	return loadCollection[domain.User](ctx, s.store, port.CollectionUsers)
}

// Register creates a user and logs it in. Emails are compared exactly, so
// "A@x.io" and "a@x.io" are different accounts.
func (s *SessionManager) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	if name == "" || email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.Users(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.Email == email {
			s.log.WithField("email", email).Warn("registration rejected: email taken")
			return domain.User{}, ErrDuplicateEmail
		}
	}

	user := domain.User{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		Password:  password,
		CreatedAt: s.now(),
	}
	if err := saveCollection(ctx, s.store, port.CollectionUsers, append(users, user)); err != nil {
		return domain.User{}, err
	}
	if err := s.setCurrent(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": email}).Info("user registered")
	return user, nil
}

func (s *SessionManager) Login(ctx context.Context, email, password string) (domain.User, error) {
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.Users(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.Email == email && u.Password == password {
			if err := s.setCurrent(ctx, u); err != nil {
				return domain.User{}, err
			}
			s.log.WithField("user_id", u.ID).Info("user logged in")
			return u, nil
		}
	}

	s.log.WithField("email", email).Warn("login rejected")
	return domain.User{}, ErrInvalidCredentials
}

func (s *SessionManager) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, port.CollectionCurrentUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUser returns ErrNoSession when nobody is logged in.
func (s *SessionManager) CurrentUser(ctx context.Context) (domain.User, error) {
	raw, ok, err := s.store.Get(ctx, port.CollectionCurrentUser)
	if err != nil {
		return domain.User{}, fmt.Errorf("load session: %w", err)
	}
	if !ok || raw == "" || raw == "null" {
		return domain.User{}, ErrNoSession
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return domain.User{}, fmt.Errorf("decode session: %w", err)
	}
	return user, nil
}

// GuardPage sends visitors without a session to the login page and keeps
// logged-in operators away from the login and registration pages.
func (s *SessionManager) GuardPage(ctx context.Context, page string) (GuardDecision, error) {
	p := domain.ParsePage(page)

	_, err := s.CurrentUser(ctx)
	loggedIn := err == nil
	if err != nil && !errors.Is(err, ErrNoSession) {
		return GuardDecision{}, err
	}

	switch {
	case !loggedIn && !p.Public():
		return GuardDecision{RedirectTo: domain.PageLogin}, nil
	case loggedIn && p.Public():
		return GuardDecision{RedirectTo: domain.PageHome}, nil
	default:
		return GuardDecision{Allow: true}, nil
	}
}

func (s *SessionManager) setCurrent(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, port.CollectionCurrentUser, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// operatorName is the display name printed on receipts.
func (s *SessionManager) operatorName(ctx context.Context) string {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(u.Name)
}
