package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// LoginPath is the backend's login endpoint
const LoginPath = "/api/auth/login"

// maxBodySize caps how much of a response body is read
const maxBodySize = 4 << 20

// Envelope is the backend's JSON response wrapper
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

// Client talks to the REST backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Login posts credentials and returns the bearer token from the envelope
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LoginPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	env, err := c.do(c.httpClient, req, "login")
	if err != nil {
		return "", err
	}

	var data loginData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return "", fmt.Errorf("failed to decode login data: %w", err)
		}
	}
	if data.Token == "" {
		return "", ErrMissingToken
	}

	return data.Token, nil
}

// Fetch performs an authenticated GET and returns the envelope's data
func (c *Client) Fetch(ctx context.Context, bearer, path string) (json.RawMessage, error) {
	if bearer == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "missing bearer token"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimLeft(path, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	env, err := c.do(c.authenticated(ctx, bearer), req, "fetch "+path)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// authenticated returns an HTTP client that adds the bearer token to every request
func (c *Client) authenticated(ctx context.Context, bearer string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: bearer,
		TokenType:   "Bearer",
	})

	client := oauth2.NewClient(ctx, src)
	client.Timeout = c.httpClient.Timeout
	return client
}

func (c *Client) do(client *http.Client, req *http.Request, op string) (*Envelope, error) {
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed", zap.String("op", op), zap.Error(err))
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("Backend request",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, decodeErr)
	}
	if !env.Success {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}
