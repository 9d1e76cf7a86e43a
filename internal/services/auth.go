package services

import (
	"context"
	"errors"
	"strings"

	"github.com/XBigRoad/banquet-master/auth"
	"github.com/XBigRoad/banquet-master/internal/models"
	"github.com/XBigRoad/banquet-master/internal/store"
)

var (
	ErrMissingCredentials   = errors.New("missing_credentials")
	ErrNotFound             = errors.New("user_not_found")
	ErrInvalidCredential    = errors.New("invalid_credential")
	ErrConfirmationRequired = errors.New("confirmation_required")
)

// StateStore is the part of the planner store the services need.
type StateStore interface {
	Snapshot() models.AppState
	Mutate(ctx context.Context, cmd store.Command) error
}

type AuthService struct {
	store StateStore
}

func NewAuthService(s StateStore) *AuthService {
	return &AuthService{store: s}
}

// Login checks the credentials against the document's user list and records
// the signed-in user. The username is trimmed, the password is not.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.CurrentUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.CurrentUser{}, ErrMissingCredentials
	}
	st := s.store.Snapshot()
	u, ok := st.UserByUsername(username)
	if !ok {
		return models.CurrentUser{}, ErrNotFound
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return models.CurrentUser{}, ErrInvalidCredential
	}
	cu := u.Projection()
	if err := s.store.Mutate(ctx, store.SetCurrentUser(cu)); err != nil {
		return models.CurrentUser{}, err
	}
	return cu, nil
}

// Logout clears the signed-in user once the caller has confirmed.
func (s *AuthService) Logout(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.store.Mutate(ctx, store.ClearCurrentUser())
}

// Current returns the signed-in user, if any.
func (s *AuthService) Current() (models.CurrentUser, bool) {
	st := s.store.Snapshot()
	if st.CurrentUser == nil {
		return models.CurrentUser{}, false
	}
	return *st.CurrentUser, true
}

// Verify reports whether uid is still a known user and the signed-in one.
// It backs the session cookie check.
func (s *AuthService) Verify(_ context.Context, uid string) bool {
	st := s.store.Snapshot()
	if _, ok := st.UserByID(uid); !ok {
		return false
	}
	return st.CurrentUser != nil && st.CurrentUser.ID == uid
}
