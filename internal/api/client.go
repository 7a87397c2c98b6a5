// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     api
// Description: HTTP client for the Shadow Mode backend. Owns the cookie
//              session, the websocket token broker, and the snapshot
//              endpoints the polling panels consume.
// License:     MIT
// ============================================================================

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

const defaultRequestTimeout = 10 * time.Second

// Client talks to the Shadow Mode backend over HTTP. All requests carry
// the HttpOnly session cookie issued by Login; the client never sees or
// stores raw credentials beyond that call.
type Client struct {
	baseURL string
	wsPath  string
	http    *http.Client
	logger  *logging.Logger
}

// New creates a client for the given backend base URL
func New(baseURL, wsPath string, timeout time.Duration, logger *logging.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if logger == nil {
		logger = logging.New("api")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		wsPath:  wsPath,
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// NewWithClient creates a client with a caller-supplied http.Client.
// Used by tests to point at an httptest server.
func NewWithClient(baseURL string, httpClient *http.Client, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	if logger == nil {
		logger = logging.New("api")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		wsPath:  "/ws/logs",
		http:    httpClient,
		logger:  logger,
	}
}

// Login establishes the session cookie. The cookie itself is HttpOnly
// and managed entirely by the jar.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/auth/login", body, nil)
}

// WSToken fetches a fresh single-use websocket token. Tokens are
// short-lived and must not be cached across connection attempts.
func (c *Client) WSToken(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/ws-token", nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &AuthError{StatusCode: http.StatusOK, Message: "backend returned empty token"}
	}
	return resp.Token, nil
}

// WSURL builds the websocket endpoint URL with the token embedded
func (c *Client) WSURL(token string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = c.wsPath
	q := url.Values{}
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Status returns the backend's current operating state
func (c *Client) Status(ctx context.Context) (*StatusSnapshot, error) {
	var snapshot StatusSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/api/status", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Profiles lists the advertising profiles the backend manages
func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/profiles", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SelectProfile switches the backend to another profile/country
func (c *Client) SelectProfile(ctx context.Context, id string) error {
	path := fmt.Sprintf("/api/profiles/%s/select", url.PathEscape(id))
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// AlphaReport returns the backend's financial snapshot
func (c *Client) AlphaReport(ctx context.Context) (*AlphaReport, error) {
	var report AlphaReport
	if err := c.doJSON(ctx, http.MethodGet, "/api/alpha-report", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// RecentBids returns the most recent bid decisions
func (c *Client) RecentBids(ctx context.Context) ([]BidDecision, error) {
	var bids []BidDecision
	if err := c.doJSON(ctx, http.MethodGet, "/api/bids/recent", nil, &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// Campaigns returns the campaigns browser listing
func (c *Client) Campaigns(ctx context.Context) ([]Campaign, error) {
	var campaigns []Campaign
	if err := c.doJSON(ctx, http.MethodGet, "/api/campaigns", nil, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// SetShadowMode enables or disables shadow mode on the backend
func (c *Client) SetShadowMode(ctx context.Context, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.doJSON(ctx, http.MethodPost, "/api/shadow-mode", body, nil)
}

// doJSON performs one JSON request/response cycle. Auth failures become
// AuthError, everything else non-2xx becomes RequestError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn("auth rejected", logging.Fields{"path": path, "status": resp.StatusCode})
		return &AuthError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := &RequestError{StatusCode: resp.StatusCode}
		decodeErrorPayload(resp.Body, reqErr)
		return reqErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// readErrorMessage extracts a best-effort message from an error body
func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// decodeErrorPayload fills a RequestError from the backend error shape
func decodeErrorPayload(body io.Reader, reqErr *RequestError) {
	var payload struct {
		Code    string `json:"code"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return
	}
	reqErr.Code = payload.Code
	if payload.Message != "" {
		reqErr.Message = payload.Message
	} else {
		reqErr.Message = payload.Error
	}
}
