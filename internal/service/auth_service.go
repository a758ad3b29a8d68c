package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/config"
	"github.com/spec-kit/researcher-directory/internal/domain"
	"github.com/spec-kit/researcher-directory/internal/events"
	"github.com/spec-kit/researcher-directory/internal/repository"
)

// ErrInvalidCredentials covers both unknown-email and wrong-password so the
// response does not leak which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService coordinates login, logout, and password flows.
type AuthService struct {
	researchers repository.ResearcherRepository
	resets      repository.PasswordResetRepository
	tokenMgr    *auth.TokenManager
	dispatcher  events.Dispatcher
	bcryptCost  int
	resetTTL    time.Duration
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	ResearcherRepo    repository.ResearcherRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		researchers: deps.ResearcherRepo,
		resets:      deps.PasswordResetRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL()),
		dispatcher:  deps.Dispatcher,
		bcryptCost:  cfg.Auth.BcryptCost,
		resetTTL:    time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// Login authenticates a researcher and issues the session credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Researcher, string, time.Time, error) {
	researcher, err := s.researchers.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.publish(ctx, events.EventLoginFailed, events.LoginPayload{Email: email, Reason: "unknown email"})
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if researcher.Status != domain.ResearcherStatusActive {
		s.publish(ctx, events.EventLoginFailed, events.LoginPayload{Email: email, Reason: "suspended"})
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(researcher.PasswordHash, password); err != nil {
		s.publish(ctx, events.EventLoginFailed, events.LoginPayload{Email: email, Reason: "bad password"})
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, exp, err := s.tokenMgr.Issue(auth.NewClaims(researcher))
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventLoginSucceeded, events.LoginPayload{
		Email:        email,
		ResearcherID: researcher.ID,
		Role:         researcher.Role,
	})
	return researcher, token, exp, nil
}

// Logout records the event; the credential itself is destroyed client-side by
// clearing the cookie. There is no server-side session state to revoke.
func (s *AuthService) Logout(ctx context.Context, researcherID string) {
	s.publish(ctx, events.EventLogout, events.LoginPayload{ResearcherID: researcherID})
}

// CurrentResearcher re-reads the persisted record for an admitted request.
// This is where a stale token's role or suspension is finally noticed.
func (s *AuthService) CurrentResearcher(ctx context.Context, id string) (*domain.Researcher, error) {
	return s.researchers.GetByID(ctx, id)
}

// RequestPasswordReset persists a single-use reset token for the email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	researcher, err := s.researchers.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	token := &repository.PasswordResetToken{
		ResearcherID: researcher.ID,
		Token:        uuid.NewString(),
		ExpiresAt:    time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return errors.New("token expired or used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	researcher, err := s.researchers.GetByID(ctx, token.ResearcherID)
	if err != nil {
		return err
	}
	researcher.PasswordHash = hash
	if err := s.researchers.Update(ctx, researcher); err != nil {
		return err
	}

	return s.resets.MarkUsed(ctx, token.ID)
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, researcherID, currentPassword, newPassword string) error {
	researcher, err := s.researchers.GetByID(ctx, researcherID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(researcher.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	researcher.PasswordHash = hash
	return s.researchers.Update(ctx, researcher)
}

// TokenManager exposes the underlying token manager for gate wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
