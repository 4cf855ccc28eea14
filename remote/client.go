// Package remote implements the authcore Service interface against the
// Bengkelink platform's HTTP auth API. Verification waiting is a long-poll
// loop; every other method is a single JSON round-trip.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bengkelink/authcore"
)

const (
	pathLogin            = "/v1/auth/login"
	pathRegister         = "/v1/auth/register"
	pathVerificationWait = "/v1/auth/verification-wait"
	pathVerifyEmail      = "/v1/auth/verify-email"
	pathForgotPassword   = "/v1/auth/forgot-password"
	pathResetPassword    = "/v1/auth/reset-password"
)

// defaultPollPause spaces long-poll rounds so an immediately-returning
// server does not turn the wait into a busy loop.
const defaultPollPause = 2 * time.Second

// Client talks to the platform auth API. Safe for concurrent use.
type Client struct {
	base      string
	http      *http.Client
	pollPause time.Duration
}

var _ authcore.Service = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The controller
// bounds individual calls through context deadlines, so the replacement
// should normally carry no Timeout of its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithPollPause sets the pause between verification long-poll rounds.
func WithPollPause(d time.Duration) Option {
	return func(c *Client) { c.pollPause = d }
}

// NewClient validates baseURL and returns a client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	c := &Client{
		base:      strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		pollPause: defaultPollPause,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginPayload struct {
	Role              authcore.Role `json:"role"`
	Email             string        `json:"email,omitempty"`
	Username          string        `json:"username,omitempty"`
	PartnershipNumber string        `json:"partnershipNumber,omitempty"`
	Password          string        `json:"password"`
}

type signupPayload struct {
	Role          authcore.Role               `json:"role"`
	Name          string                      `json:"name"`
	Username      string                      `json:"username,omitempty"`
	Email         string                      `json:"email"`
	Phone         string                      `json:"phone"`
	Password      string                      `json:"password"`
	TermsAccepted bool                        `json:"termsAccepted"`
	ProfilePhoto  string                      `json:"profilePhoto,omitempty"`
	Technician    *authcore.TechnicianProfile `json:"technician,omitempty"`
	Workshop      *authcore.WorkshopProfile   `json:"workshop,omitempty"`
}

type signupReply struct {
	Identity *authcore.Identity `json:"identity"`
	Pending  bool               `json:"pending"`
}

// Authenticate performs POST /v1/auth/login.
func (c *Client) Authenticate(ctx context.Context, creds authcore.Credentials) (*authcore.Identity, error) {
	payload := loginPayload{
		Role:              creds.Role,
		Email:             creds.Email,
		Username:          creds.Username,
		PartnershipNumber: creds.PartnershipNumber,
		Password:          creds.Password,
	}
	var id authcore.Identity
	if err := c.postJSON(ctx, pathLogin, payload, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Register performs POST /v1/auth/register.
func (c *Client) Register(ctx context.Context, req authcore.SignupRequest) (*authcore.Registration, error) {
	payload := signupPayload{
		Role:          req.Role,
		Name:          req.Name,
		Username:      req.Username,
		Email:         req.Email,
		Phone:         req.Phone,
		Password:      req.Password,
		TermsAccepted: req.TermsAccepted,
		ProfilePhoto:  req.ProfilePhoto,
		Technician:    req.Technician,
		Workshop:      req.Workshop,
	}
	var reply signupReply
	if err := c.postJSON(ctx, pathRegister, payload, &reply); err != nil {
		return nil, err
	}
	return &authcore.Registration{Identity: reply.Identity, Pending: reply.Pending}, nil
}

// AwaitVerification long-polls GET /v1/auth/verification-wait until the
// server reports the account verified or ctx is done. A 200 resolves the
// wait; a 204 means not yet, poll again.
func (c *Client) AwaitVerification(ctx context.Context, userID string) (*authcore.Identity, error) {
	target := c.base + pathVerificationWait + "?user=" + url.QueryEscape(userID)
	for {
		id, done, err := c.pollOnce(ctx, target)
		if err != nil {
			return nil, err
		}
		if done {
			return id, nil
		}
		select {
		case <-time.After(c.pollPause):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) pollOnce(ctx context.Context, target string) (*authcore.Identity, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, wrapTransportError(err)
	}
	defer drain(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		var id authcore.Identity
		if derr := json.NewDecoder(resp.Body).Decode(&id); derr != nil {
			return nil, false, errors.Join(authcore.ErrServiceUnavailable, derr)
		}
		return &id, true, nil
	case http.StatusNoContent:
		return nil, false, nil
	default:
		return nil, false, statusError(resp.StatusCode)
	}
}

// ConfirmEmail performs POST /v1/auth/verify-email.
func (c *Client) ConfirmEmail(ctx context.Context, token string) error {
	return c.postJSON(ctx, pathVerifyEmail, map[string]string{"token": token}, nil)
}

// RequestPasswordReset performs POST /v1/auth/forgot-password.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.postJSON(ctx, pathForgotPassword, map[string]string{"email": email}, nil)
}

// CompletePasswordReset performs POST /v1/auth/reset-password. The
// platform reports a bad token with the same 422 it uses for verification
// tokens, so the sentinel is rewritten for this flow.
func (c *Client) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	payload := map[string]string{"token": token, "newPassword": newPassword}
	err := c.postJSON(ctx, pathResetPassword, payload, nil)
	if errors.Is(err, authcore.ErrVerificationInvalid) {
		return authcore.ErrResetInvalid
	}
	return err
}

// postJSON sends body as JSON and decodes a 2xx response into out when out
// is non-nil.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer drain(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if derr := json.NewDecoder(resp.Body).Decode(out); derr != nil {
		return errors.Join(authcore.ErrServiceUnavailable, derr)
	}
	return nil
}

// statusError maps the platform's status code contract onto the authcore
// error taxonomy.
func statusError(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return authcore.ErrInvalidCredentials
	case code == http.StatusConflict:
		return authcore.ErrAccountExists
	case code == http.StatusRequestTimeout:
		return authcore.ErrTimeout
	case code == http.StatusUnprocessableEntity || code == http.StatusGone:
		return authcore.ErrVerificationInvalid
	case code >= 500:
		return fmt.Errorf("%w: status %d", authcore.ErrServiceUnavailable, code)
	default:
		return fmt.Errorf("%w: unexpected status %d", authcore.ErrServiceUnavailable, code)
	}
}

// wrapTransportError keeps context errors recognizable and folds everything
// else into service unavailability.
func wrapTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Join(authcore.ErrServiceUnavailable, err)
}

// drain reads the body to completion so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}
