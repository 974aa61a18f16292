package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a response with success=false or a non-2xx status
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client talks to the auth API. Token-bearing calls take the token
// explicitly so the client itself holds no session state.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthUser is the user block of register and login responses
type AuthUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthReply is the payload of register and login
type AuthReply struct {
	Message string
	Token   string
	User    AuthUser
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) (string, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return "", err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", &APIError{Status: resp.StatusCode, Message: "unexpected response"}
	}
	if resp.StatusCode >= 300 || !env.Success {
		return "", &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return env.Message, nil
}

func (c *Client) auth(ctx context.Context, path string, in any) (*AuthReply, error) {
	var out struct {
		Token string   `json:"token"`
		User  AuthUser `json:"user"`
	}
	msg, err := c.do(ctx, http.MethodPost, path, "", in, &out)
	if err != nil {
		return nil, err
	}
	return &AuthReply{Message: msg, Token: out.Token, User: out.User}, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthReply, error) {
	return c.auth(ctx, "/api/auth/register", map[string]string{"name": name, "email": email, "password": password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthReply, error) {
	return c.auth(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) Logout(ctx context.Context, token string) (string, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// IsAuth succeeds when token is accepted by the server
func (c *Client) IsAuth(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodGet, "/api/auth/is-auth", token, nil, nil)
	return err
}

func (c *Client) UserData(ctx context.Context, token string) (*UserData, error) {
	var out struct {
		UserData UserData `json:"userData"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/user/data", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.UserData, nil
}

func (c *Client) SendVerifyOTP(ctx context.Context, token string) (string, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/send-verify-otp", token, nil, nil)
}

func (c *Client) VerifyAccount(ctx context.Context, token, otp string) (string, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/verify-account", token, map[string]string{"otp": otp}, nil)
}

func (c *Client) SendResetOTP(ctx context.Context, email string) (string, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/send-reset-otp", "", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) (string, error) {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"email": email, "otp": otp, "newPassword": newPassword}, nil)
}

func (c *Client) Chat(ctx context.Context, token, message string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/chat", token, map[string]string{"message": message}, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}
