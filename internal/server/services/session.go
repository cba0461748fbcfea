// Package services contains server-side business logic. SessionService
// implements registration, login, token refresh and the password
// change/recovery flows on top of the credential store and token codec.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/dmitrijs2005/gophersocial/internal/logging"
	"github.com/dmitrijs2005/gophersocial/internal/server/auth"
	"github.com/dmitrijs2005/gophersocial/internal/server/config"
	"github.com/dmitrijs2005/gophersocial/internal/server/mail"
	"github.com/dmitrijs2005/gophersocial/internal/server/models"
	"github.com/dmitrijs2005/gophersocial/internal/server/repositories/resettickets"
	"github.com/dmitrijs2005/gophersocial/internal/server/repositories/users"
)

// Operation names used for logging and metrics.
const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpRefresh        = "refresh"
	OpUpdatePassword = "update_password"
	OpForgotPassword = "forgot_password"
	OpResetPassword  = "reset_password"
)

const resetMailSubject = "Reset your password"

// Recorder observes the outcome of every operation. status is a Status
// value, or "error" for infrastructure faults.
type Recorder interface {
	Observe(operation, status string)
}

type nopRecorder struct{}

func (nopRecorder) Observe(string, string) {}

type SessionService struct {
	users      users.Repository
	tickets    resettickets.Store
	codec      *auth.Codec
	hasher     auth.PasswordHasher
	notifier   mail.Notifier
	policy     auth.PasswordPolicy
	refreshTTL time.Duration
	resetURL   string
	logger     logging.Logger
	recorder   Recorder
	now        func() time.Time
}

type Option func(*SessionService)

// WithClock replaces the time source. Pass the same clock to the codec.
func WithClock(now func() time.Time) Option {
	return func(s *SessionService) { s.now = now }
}

func WithPasswordPolicy(p auth.PasswordPolicy) Option {
	return func(s *SessionService) { s.policy = p }
}

func WithRecorder(r Recorder) Option {
	return func(s *SessionService) { s.recorder = r }
}

func NewSessionService(
	repo users.Repository,
	tickets resettickets.Store,
	codec *auth.Codec,
	hasher auth.PasswordHasher,
	notifier mail.Notifier,
	cfg *config.Config,
	logger logging.Logger,
	opts ...Option,
) *SessionService {
	s := &SessionService{
		users:      repo,
		tickets:    tickets,
		codec:      codec,
		hasher:     hasher,
		notifier:   notifier,
		policy:     auth.DefaultPasswordPolicy,
		refreshTTL: cfg.JWT.RefreshTokenValidity(),
		resetURL:   cfg.Reset.PasswordURL,
		logger:     logging.ForModule(logger, "sessions"),
		recorder:   nopRecorder{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func observe[T any](s *SessionService, op string, res Result[T], err error) (Result[T], error) {
	if err != nil {
		s.recorder.Observe(op, "error")
		return Result[T]{}, err
	}
	s.recorder.Observe(op, string(res.Status))
	return res, nil
}

// Register creates an identity. No tokens are issued.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (Result[RegisterPayload], error) {
	res, err := s.register(ctx, in)
	return observe(s, OpRegister, res, err)
}

func (s *SessionService) register(ctx context.Context, in RegisterInput) (Result[RegisterPayload], error) {
	if reasons := s.policy.Check(in.Password); len(reasons) > 0 {
		return fail[RegisterPayload](StatusCreationError, "User creation failed.", reasons...), nil
	}

	var reasons []string

	if _, err := s.users.GetByUserName(ctx, in.UserName); err == nil {
		reasons = append(reasons, userNameTaken(in.UserName))
	} else if !errors.Is(err, common.ErrorNotFound) {
		return Result[RegisterPayload]{}, fmt.Errorf("error searching user: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		reasons = append(reasons, emailTaken(in.Email))
	} else if !errors.Is(err, common.ErrorNotFound) {
		return Result[RegisterPayload]{}, fmt.Errorf("error searching user: %w", err)
	}

	if len(reasons) > 0 {
		return fail[RegisterPayload](StatusCreationError, "User creation failed.", reasons...), nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Result[RegisterPayload]{}, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Name:         in.Name,
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	switch {
	case errors.Is(err, common.ErrUserNameTaken):
		return fail[RegisterPayload](StatusCreationError, "User creation failed.", userNameTaken(in.UserName)), nil
	case errors.Is(err, common.ErrEmailTaken):
		return fail[RegisterPayload](StatusCreationError, "User creation failed.", emailTaken(in.Email)), nil
	case errors.Is(err, common.ErrAlreadyExists):
		return fail[RegisterPayload](StatusCreationError, "User creation failed.", "User already exists."), nil
	case err != nil:
		return Result[RegisterPayload]{}, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return succeed(StatusCreated, "User created.", RegisterPayload{ID: user.ID}), nil
}

func userNameTaken(u string) string { return fmt.Sprintf("Username '%s' is already taken.", u) }
func emailTaken(e string) string    { return fmt.Sprintf("Email '%s' is already taken.", e) }

// Login checks credentials and starts a session, replacing any refresh
// token issued before.
func (s *SessionService) Login(ctx context.Context, userName, password string) (Result[TokenPair], error) {
	res, err := s.login(ctx, userName, password)
	return observe(s, OpLogin, res, err)
}

func (s *SessionService) login(ctx context.Context, userName, password string) (Result[TokenPair], error) {
	user, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fail[TokenPair](StatusNotFound, "User not found."), nil
		}
		return Result[TokenPair]{}, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return Result[TokenPair]{}, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return fail[TokenPair](StatusInvalidCredentials, "Invalid credentials."), nil
	}

	pair, expiry, err := s.generateTokenPair(auth.NewClaims(user.UserName, user.ID))
	if err != nil {
		return Result[TokenPair]{}, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken, expiry); err != nil {
		return Result[TokenPair]{}, fmt.Errorf("error storing refresh token: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return succeed(StatusOK, "Logged in.", pair), nil
}

// Refresh exchanges a (possibly expired) access token and the current
// refresh token for a new pair. The presented refresh token is consumed.
func (s *SessionService) Refresh(ctx context.Context, accessToken, refreshToken string) (Result[TokenPair], error) {
	res, err := s.refresh(ctx, accessToken, refreshToken)
	return observe(s, OpRefresh, res, err)
}

func (s *SessionService) refresh(ctx context.Context, accessToken, refreshToken string) (Result[TokenPair], error) {
	invalid := fail[TokenPair](StatusInvalidToken, "Invalid access token or refresh token.")

	claims, err := s.codec.GetPrincipalForExpiredToken(accessToken)
	if err != nil {
		s.logger.Debug(ctx, "refresh rejected", "reason", err.Error())
		return invalid, nil
	}

	name := claims.Name()
	if name == "" {
		return invalid, nil
	}

	user, err := s.users.GetByUserName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return invalid, nil
		}
		return Result[TokenPair]{}, fmt.Errorf("error searching user: %w", err)
	}

	now := s.now()
	if !user.RefreshTokenMatches(refreshToken, now) {
		return invalid, nil
	}

	pair, expiry, err := s.generateTokenPair(claims)
	if err != nil {
		return Result[TokenPair]{}, err
	}

	err = s.users.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken, expiry, now)
	switch {
	case errors.Is(err, common.ErrStaleRefreshToken), errors.Is(err, common.ErrorNotFound):
		// lost a race against a concurrent refresh with the same pair
		return invalid, nil
	case err != nil:
		return Result[TokenPair]{}, fmt.Errorf("error rotating refresh token: %w", err)
	}

	return succeed(StatusOK, "Token refreshed.", pair), nil
}

// UpdatePassword changes the password of the authenticated identity userID.
func (s *SessionService) UpdatePassword(ctx context.Context, userID string, in UpdatePasswordInput) (Result[Empty], error) {
	res, err := s.updatePassword(ctx, userID, in)
	return observe(s, OpUpdatePassword, res, err)
}

func (s *SessionService) updatePassword(ctx context.Context, userID string, in UpdatePasswordInput) (Result[Empty], error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fail[Empty](StatusNotFound, "User not found."), nil
		}
		return Result[Empty]{}, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := s.hasher.Verify(in.OldPassword, user.PasswordHash)
	if err != nil {
		return Result[Empty]{}, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return fail[Empty](StatusInvalidCredentials, "Invalid credentials."), nil
	}

	if in.OldPassword == in.NewPassword {
		return fail[Empty](StatusSamePassword, "New password must be different from the current one."), nil
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return fail[Empty](StatusMismatch, "New password and confirmation do not match."), nil
	}
	if reasons := s.policy.Check(in.NewPassword); len(reasons) > 0 {
		return fail[Empty](StatusValidationError, "Password does not meet requirements.", reasons...), nil
	}

	if err := s.storePassword(ctx, user.ID, in.NewPassword); err != nil {
		return Result[Empty]{}, err
	}

	if err := s.tickets.Revoke(ctx, user.ID); err != nil {
		s.logger.Warn(ctx, "failed to revoke reset ticket", "user_id", user.ID, "error", err)
	}

	s.logger.Info(ctx, "password updated", "user_id", user.ID)
	return succeed(StatusOK, "Password updated.", Empty{}), nil
}

// ForgotPassword mails a reset link to the owner of email. Delivery
// failures are logged and do not fail the operation.
func (s *SessionService) ForgotPassword(ctx context.Context, email string) (Result[Empty], error) {
	res, err := s.forgotPassword(ctx, email)
	return observe(s, OpForgotPassword, res, err)
}

func (s *SessionService) forgotPassword(ctx context.Context, email string) (Result[Empty], error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fail[Empty](StatusNotFound, "User not found."), nil
		}
		return Result[Empty]{}, fmt.Errorf("error searching user: %w", err)
	}

	ticket, err := s.tickets.Generate(ctx, user.ID)
	if err != nil {
		return Result[Empty]{}, fmt.Errorf("error generating reset ticket: %w", err)
	}

	link, err := s.resetLink(email, ticket)
	if err != nil {
		return Result[Empty]{}, err
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: resetMailSubject,
		Body:    fmt.Sprintf("Hello %s,\n\nFollow this link to choose a new password:\n%s\n", displayName(user), link),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error(ctx, "failed to send reset mail", "user_id", user.ID, "error", err)
	}

	return succeed(StatusOK, "Password reset link sent.", Empty{}), nil
}

func (s *SessionService) resetLink(email, ticket string) (string, error) {
	u, err := url.Parse(s.resetURL)
	if err != nil {
		return "", fmt.Errorf("error parsing reset url: %w", err)
	}

	q := u.Query()
	q.Set("email", email)
	q.Set("token", base64.RawURLEncoding.EncodeToString([]byte(ticket)))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.UserName
}

// ResetPassword sets a new password using a ticket from ForgotPassword.
func (s *SessionService) ResetPassword(ctx context.Context, in ResetPasswordInput) (Result[Empty], error) {
	res, err := s.resetPassword(ctx, in)
	return observe(s, OpResetPassword, res, err)
}

func (s *SessionService) resetPassword(ctx context.Context, in ResetPasswordInput) (Result[Empty], error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fail[Empty](StatusNotFound, "User not found."), nil
		}
		return Result[Empty]{}, fmt.Errorf("error searching user: %w", err)
	}

	same, err := s.hasher.Verify(in.NewPassword, user.PasswordHash)
	if err != nil {
		return Result[Empty]{}, fmt.Errorf("error verifying password: %w", err)
	}
	if same {
		return fail[Empty](StatusSamePassword, "New password must be different from the current one."), nil
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return fail[Empty](StatusMismatch, "New password and confirmation do not match."), nil
	}

	ticket, err := base64.RawURLEncoding.DecodeString(in.Token)
	if err != nil {
		return fail[Empty](StatusInvalidTicket, "Invalid password reset token."), nil
	}

	if reasons := s.policy.Check(in.NewPassword); len(reasons) > 0 {
		return fail[Empty](StatusValidationError, "Password does not meet requirements.", reasons...), nil
	}

	if err := s.tickets.Consume(ctx, user.ID, string(ticket)); err != nil {
		if errors.Is(err, common.ErrInvalidTicket) {
			return fail[Empty](StatusInvalidTicket, "Invalid password reset token."), nil
		}
		return Result[Empty]{}, fmt.Errorf("error consuming reset ticket: %w", err)
	}

	if err := s.storePassword(ctx, user.ID, in.NewPassword); err != nil {
		return Result[Empty]{}, err
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return succeed(StatusOK, "Password reset.", Empty{}), nil
}

// --- helpers below ---

func (s *SessionService) generateTokenPair(claims auth.Claims) (TokenPair, time.Time, error) {
	access, err := s.codec.GenerateAccessToken(claims)
	if err != nil {
		return TokenPair{}, time.Time{}, fmt.Errorf("error generating access token: %w", err)
	}

	refresh, err := s.codec.GenerateRefreshToken()
	if err != nil {
		return TokenPair{}, time.Time{}, fmt.Errorf("error generating refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, s.now().Add(s.refreshTTL), nil
}

func (s *SessionService) storePassword(ctx context.Context, userID, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.users.ChangePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("error storing password: %w", err)
	}
	return nil
}
