// Package auth composes the credential store, token codec, and session
// store into the login, logout, and registration operations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/was-labs/webauth/internal/logging"
	"github.com/was-labs/webauth/internal/metrics"
	"github.com/was-labs/webauth/internal/session"
	"github.com/was-labs/webauth/internal/token"
	"github.com/was-labs/webauth/internal/users"
)

// Identity is the per-request value carrying the caller's resolved identity.
// It is constructed by the authentication middleware and passed explicitly;
// there is no ambient security context.
type Identity struct {
	UserID      string
	UserName    string
	Authorities []string
}

// RegisterRequest carries the fields of a registration call. Validation of
// lengths and email shape happens at the HTTP boundary.
type RegisterRequest struct {
	UserName string
	Password string
	Email    string
}

// LoginResult is returned on successful login. The handler sets the token
// cookie; the token is also echoed in the response body.
type LoginResult struct {
	UserID   string `json:"id"`
	UserName string `json:"userName"`
	Token    string `json:"token"`
}

// Service implements the authentication flows.
type Service struct {
	users    users.Repository
	codec    *token.Codec
	sessions session.Store
	tokenTTL time.Duration
	log      logging.Logger
	metrics  *metrics.Set
}

// NewService wires the orchestrator. tokenTTL is both the token lifetime
// and the session TTL, so the two expire together.
func NewService(
	repo users.Repository,
	codec *token.Codec,
	sessions session.Store,
	tokenTTL time.Duration,
	log logging.Logger,
	set *metrics.Set,
) *Service {
	return &Service{
		users:    repo,
		codec:    codec,
		sessions: sessions,
		tokenTTL: tokenTTL,
		log:      log,
		metrics:  set,
	}
}

// TokenTTL returns the configured token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	_, err := s.users.GetByUserName(ctx, req.UserName)
	if err == nil {
		return ErrUserAlreadyExists
	}
	if !errors.Is(err, users.ErrNotFound) {
		return fmt.Errorf("register lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Create(ctx, &users.User{
		ID:           uuid.NewString(),
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	s.metrics.Inc(metrics.RegisterSuccess)
	s.log.Info(ctx, "user registered", "userName", req.UserName)
	return nil
}

// Login verifies the credentials, issues a token, and writes the session
// record under the user's single session slot, replacing any prior login.
func (s *Service) Login(ctx context.Context, userName, password string) (*LoginResult, error) {
	user, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			s.metrics.Inc(metrics.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.Inc(metrics.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	tok, err := s.codec.Create(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	rec := &session.Record{
		UserID:      user.ID,
		UserName:    user.UserName,
		Email:       user.Email,
		Authorities: []string{"user"},
		CreatedAt:   time.Now().Unix(),
	}
	if err := s.sessions.Put(ctx, rec, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.metrics.Inc(metrics.LoginSuccess)
	s.metrics.Inc(metrics.SessionCreated)
	s.log.Info(ctx, "user logged in", "userId", user.ID, "userName", user.UserName)

	return &LoginResult{UserID: user.ID, UserName: user.UserName, Token: tok}, nil
}

// Logout deletes the caller's session record. Reaching logout without an
// identity is a caller error.
func (s *Service) Logout(ctx context.Context, ident *Identity) error {
	if ident == nil {
		return ErrUnauthenticated
	}

	if err := s.sessions.Delete(ctx, ident.UserID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	s.log.Info(ctx, "user logged out", "userId", ident.UserID)
	return nil
}
