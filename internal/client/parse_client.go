package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/Noviath61/finsight/internal/config"
	"github.com/Noviath61/finsight/internal/model"
	"go.uber.org/zap"
)

// ParseClient handles communication with the Parse REST API hosted by Back4app
type ParseClient struct {
	baseURL    string
	appID      string
	restKey    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewParseClient creates a new Parse REST client
func NewParseClient(cfg config.ParseConfig, logger *zap.Logger) *ParseClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &ParseClient{
		baseURL: cfg.URL,
		appID:   cfg.AppID,
		restKey: cfg.RESTAPIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// do sends a request and decodes a 2xx body into out. Parse error bodies are
// returned as *model.ParseError; transport failures wrap ErrProviderUnavailable.
func (c *ParseClient) do(ctx context.Context, method, path, sessionToken string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Parse-Application-Id", c.appID)
	req.Header.Set("X-Parse-REST-API-Key", c.restKey)
	req.Header.Set("X-Parse-Revocable-Session", "1")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		req.Header.Set("X-Parse-Session-Token", sessionToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Parse request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("parse %s: %w: %v", path, apperr.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var perr model.ParseError
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err := json.Unmarshal(bodyBytes, &perr); err != nil || perr.Code == 0 {
			c.logger.Error("Parse returned unexpected status",
				zap.Int("statusCode", resp.StatusCode),
				zap.String("response", string(bodyBytes)))
			return fmt.Errorf("parse returned status code %d: %w", resp.StatusCode, apperr.ErrProviderUnavailable)
		}
		return &perr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode parse response: %w: %v", apperr.ErrProviderUnavailable, err)
	}
	return nil
}

type parseCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp creates a user and returns it with a fresh session token
func (c *ParseClient) SignUp(ctx context.Context, username, password string) (*model.ParseUser, error) {
	var user model.ParseUser
	if err := c.do(ctx, http.MethodPost, "/users", "", parseCredentials{username, password}, &user); err != nil {
		return nil, err
	}
	user.Username = username
	return &user, nil
}

// LogIn authenticates a user and returns it with a session token
func (c *ParseClient) LogIn(ctx context.Context, username, password string) (*model.ParseUser, error) {
	var user model.ParseUser
	if err := c.do(ctx, http.MethodPost, "/login", "", parseCredentials{username, password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the user owning sessionToken
func (c *ParseClient) Me(ctx context.Context, sessionToken string) (*model.ParseUser, error) {
	var user model.ParseUser
	if err := c.do(ctx, http.MethodGet, "/users/me", sessionToken, nil, &user); err != nil {
		return nil, err
	}
	user.SessionToken = sessionToken
	return &user, nil
}

// LogOut revokes sessionToken
func (c *ParseClient) LogOut(ctx context.Context, sessionToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", sessionToken, struct{}{}, nil)
}

// ParseErrorCode extracts the Parse error code from err, or 0
func ParseErrorCode(err error) int {
	var perr *model.ParseError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return 0
}
