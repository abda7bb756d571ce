package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"walletpay-backend/internal/walletpay"
)

// Client is the backend transport consumed by the payment-session layer:
// an async request/response call addressed by route. Structured error
// bodies come back as coded *walletpay.Error values.
type Client struct {
	publicKey  string
	httpClient *http.Client
	apiBaseURL string
	userAgent  string
}

// NewClient constructs a gateway client for the given API base URL and
// merchant public key.
func NewClient(apiBaseURL, publicKey string) (*Client, error) {
	base := strings.TrimSpace(apiBaseURL)
	if base == "" {
		return nil, errors.New("gateway API base URL is required")
	}
	key := strings.TrimSpace(publicKey)
	if key == "" {
		return nil, errors.New("gateway public key is required")
	}

	return &Client{
		publicKey:  key,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: strings.TrimRight(base, "/"),
		userAgent:  "walletpay-backend/gateway-client",
	}, nil
}

var _ walletpay.Backend = (*Client)(nil)

// Get performs a GET against the routed endpoint with query parameters.
func (c *Client) Get(ctx context.Context, route string, data map[string]string) (json.RawMessage, error) {
	if c == nil {
		return nil, errors.New("gateway client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := url.Values{}
	query.Set("key", c.publicKey)
	for key, value := range data {
		if value != "" {
			query.Set(key, value)
		}
	}

	endpoint := fmt.Sprintf("%s%s?%s", c.apiBaseURL, route, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	return c.do(req)
}

// Post performs a JSON POST against the routed endpoint.
func (c *Client) Post(ctx context.Context, route string, data interface{}) (json.RawMessage, error) {
	if c == nil {
		return nil, errors.New("gateway client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s%s?key=%s", c.apiBaseURL, route, url.QueryEscape(c.publicKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("gateway response decode failed: %w", err)
	}

	if coded := decodeError(payload); coded != nil {
		return nil, coded
	}
	if resp.StatusCode >= 400 {
		return nil, walletpay.APIError("", fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}
	return payload, nil
}

// decodeError maps a structured {error:{code,message}} body onto the error
// taxonomy, carrying the backend code verbatim.
func decodeError(payload json.RawMessage) *walletpay.Error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil
	}
	if body.Error.Code == "" && body.Error.Message == "" {
		return nil
	}
	return walletpay.APIError(body.Error.Code, body.Error.Message)
}
