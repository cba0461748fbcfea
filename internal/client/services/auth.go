// Package services contains application services for the gophersocial
// client. AuthService drives the server's authentication API and keeps the
// current session (user name and token pair) in the local database.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophersocial/internal/client/client"
	"github.com/dmitrijs2005/gophersocial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophersocial/internal/common"
)

const (
	keyUserName     = "username"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login and Refresh persist the returned token pair.
//   - UpdatePassword uses the stored access token, refreshing it once if the
//     server reports it expired, and ends the local session on success
//     because the server revokes the refresh token.
//   - Logout forgets the local session only.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, req client.RegisterRequest) (string, error)
	Login(ctx context.Context, userName string, password []byte) error
	Refresh(ctx context.Context) error
	UpdatePassword(ctx context.Context, oldPassword, newPassword, confirmNewPassword []byte) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req client.ResetPasswordRequest) error
	CurrentUser(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
}

type authService struct {
	client client.Client
	repo   metadata.Repository
}

// NewAuthService constructs an AuthService bound to the given API client and
// session repository.
func NewAuthService(c client.Client, repo metadata.Repository) AuthService {
	return &authService{client: c, repo: repo}
}

func (a *authService) Register(ctx context.Context, req client.RegisterRequest) (string, error) {
	id, err := a.client.Register(ctx, req)
	if err != nil {
		return "", fmt.Errorf("register error: %w", err)
	}
	return id, nil
}

func (a *authService) Login(ctx context.Context, userName string, password []byte) error {
	pair, err := a.client.Login(ctx, userName, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return a.saveSession(ctx, userName, pair)
}

func (a *authService) Refresh(ctx context.Context) error {
	_, err := a.refresh(ctx)
	return err
}

func (a *authService) refresh(ctx context.Context) (client.TokenPair, error) {
	userName, pair, err := a.loadSession(ctx)
	if err != nil {
		return client.TokenPair{}, err
	}

	next, err := a.client.Refresh(ctx, pair)
	if err != nil {
		return client.TokenPair{}, fmt.Errorf("refresh error: %w", err)
	}

	if err := a.saveSession(ctx, userName, next); err != nil {
		return client.TokenPair{}, err
	}
	return next, nil
}

func (a *authService) UpdatePassword(ctx context.Context, oldPassword, newPassword, confirmNewPassword []byte) error {
	_, pair, err := a.loadSession(ctx)
	if err != nil {
		return err
	}

	req := client.UpdatePasswordRequest{
		OldPassword:        string(oldPassword),
		NewPassword:        string(newPassword),
		ConfirmNewPassword: string(confirmNewPassword),
	}

	err = a.client.UpdatePassword(ctx, pair.AccessToken, req)
	if errors.Is(err, client.ErrUnauthorized) {
		if pair, err = a.refresh(ctx); err != nil {
			return err
		}
		err = a.client.UpdatePassword(ctx, pair.AccessToken, req)
	}
	if err != nil {
		return fmt.Errorf("update password error: %w", err)
	}

	return a.Logout(ctx)
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	if err := a.client.ForgotPassword(ctx, email); err != nil {
		return fmt.Errorf("forgot password error: %w", err)
	}
	return nil
}

func (a *authService) ResetPassword(ctx context.Context, req client.ResetPasswordRequest) error {
	if err := a.client.ResetPassword(ctx, req); err != nil {
		return fmt.Errorf("reset password error: %w", err)
	}
	return nil
}

func (a *authService) CurrentUser(ctx context.Context) (string, error) {
	userName, _, err := a.loadSession(ctx)
	return userName, err
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.repo.Delete(ctx, keyUserName, keyAccessToken, keyRefreshToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (a *authService) saveSession(ctx context.Context, userName string, pair client.TokenPair) error {
	err := a.repo.SetMany(ctx, map[string][]byte{
		keyUserName:     []byte(userName),
		keyAccessToken:  []byte(pair.AccessToken),
		keyRefreshToken: []byte(pair.RefreshToken),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// loadSession returns client.ErrNoSession when nothing is stored.
func (a *authService) loadSession(ctx context.Context) (string, client.TokenPair, error) {
	values := make(map[string]string, 3)
	for _, key := range []string{keyUserName, keyAccessToken, keyRefreshToken} {
		v, err := a.repo.Get(ctx, key)
		if errors.Is(err, common.ErrorNotFound) {
			return "", client.TokenPair{}, client.ErrNoSession
		}
		if err != nil {
			return "", client.TokenPair{}, fmt.Errorf("load session: %w", err)
		}
		values[key] = string(v)
	}

	return values[keyUserName], client.TokenPair{
		AccessToken:  values[keyAccessToken],
		RefreshToken: values[keyRefreshToken],
	}, nil
}
