package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	authURL    = "https://accounts.spotify.com/authorize"
	tokenURL   = "https://accounts.spotify.com/api/token"
	apiBaseURL = "https://api.spotify.com/v1"
)

// Client is a thin typed wrapper around the Spotify Web API. It attaches
// bearer credentials and translates failures into tagged GatewayErrors.
// No retries, no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient() *Client {
	return &Client{
		baseURL: apiBaseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// SetBaseURL overrides the API base URL.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout overrides the per-call timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// doRequest performs one authenticated call. Every failure comes back as
// a *GatewayError.
func (c *Client) doRequest(ctx context.Context, method, endpoint, accessToken string, body, result interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return &GatewayError{Kind: RequestFailed, Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
	}

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	}
	if err != nil {
		return &GatewayError{Kind: RequestFailed, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &GatewayError{Kind: RequestFailed, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return &GatewayError{Kind: AuthExpired, Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{Kind: RequestFailed, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &GatewayError{Kind: MalformedResponse, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}

	return nil
}

// Me resolves the user ID that owns the access token.
func (c *Client) Me(ctx context.Context, accessToken string) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/me", accessToken, nil, &user); err != nil {
		return "", err
	}
	if user.ID == "" {
		return "", &GatewayError{Kind: MalformedResponse, Err: fmt.Errorf("empty user id in profile response")}
	}
	return user.ID, nil
}
