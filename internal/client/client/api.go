package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/common"
	"github.com/dmitrijs2005/gophersocial/internal/netx"
)

// Client is the transport-agnostic contract of the authentication API.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (string, error)
	Login(ctx context.Context, userName, password string) (TokenPair, error)
	Refresh(ctx context.Context, pair TokenPair) (TokenPair, error)
	UpdatePassword(ctx context.Context, accessToken string, req UpdatePasswordRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Ping(ctx context.Context) error
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	UserName        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type UpdatePasswordRequest struct {
	OldPassword        string `json:"oldPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

type ResetPasswordRequest struct {
	Email              string `json:"email"`
	Token              string `json:"token"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

type envelope struct {
	Succeeded bool            `json:"succeeded"`
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Errors    []string        `json:"errors"`
	Data      json.RawMessage `json:"data"`
}

// HTTPClient talks to the server's /authentication endpoints.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// call posts in to path. A non-nil data receives the payload of a
// successful response.
func (c *HTTPClient) call(ctx context.Context, path string, header http.Header, in, data any) error {
	var env envelope
	code, err := netx.PostJSON(ctx, c.http, c.baseURL+path, header, in, &env)
	if err != nil {
		if code == 0 {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return &APIError{Code: code, Status: http.StatusText(code), Message: err.Error()}
	}

	if code == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if !env.Succeeded {
		return &APIError{Code: code, Status: env.Status, Message: env.Message, Errors: env.Errors}
	}

	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("decode %s payload: %w", path, err)
		}
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, "/authentication/register", nil, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *HTTPClient) Login(ctx context.Context, userName, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.call(ctx, "/authentication/login", nil, map[string]string{"username": userName, "password": password}, &pair)
	return pair, err
}

func (c *HTTPClient) Refresh(ctx context.Context, pair TokenPair) (TokenPair, error) {
	var next TokenPair
	err := c.call(ctx, "/authentication/login/refresh", nil, pair, &next)
	return next, err
}

func (c *HTTPClient) UpdatePassword(ctx context.Context, accessToken string, req UpdatePasswordRequest) error {
	header := http.Header{}
	header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+accessToken)
	return c.call(ctx, "/authentication/update-password", header, req, nil)
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.call(ctx, "/authentication/forget-password", nil, map[string]string{"email": email}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.call(ctx, "/authentication/reset-password", nil, req, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}
	return nil
}
