package delhivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://track.delhivery.com"
	pinCodesPath                = "/c/api/pin-codes/json/"
	responseBodyReadLimit int64 = 1024
)

var errTokenRequired = errors.New("delhivery api token is required")

// Client queries the Delhivery pin-code serviceability API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Delhivery host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout sets the timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds the client for the given API token.
func NewClient(token string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, errTokenRequired
	}

	client := &Client{
		token:      trimmed,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// PinCodeResponse is the subset of the pin-code payload the storefront reads.
type PinCodeResponse struct {
	DeliveryCodes []DeliveryCode `json:"delivery_codes"`
}

// DeliveryCode wraps one postal code entry.
type DeliveryCode struct {
	PostalCode PostalCode `json:"postal_code"`
}

// PostalCode carries the per-pincode service flags. SortCode is "Embargo"
// while the lane is suspended; PrePaid is "Y" or "N".
type PostalCode struct {
	Pin      json.Number `json:"pin"`
	District string      `json:"district"`
	City     string      `json:"city"`
	State    string      `json:"state_code"`
	SortCode string      `json:"sort_code"`
	PrePaid  string      `json:"pre_paid"`
	COD      string      `json:"cod"`
	Pickup   string      `json:"pickup"`
}

// CheckPincode fetches serviceability for a single pincode. Every failure is
// reported as ORACLE_UNAVAILABLE; interpreting the payload is up to the caller.
func (c *Client) CheckPincode(ctx context.Context, pincode string) (*PinCodeResponse, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeOracleUnavailable, "delhivery client not configured")
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + pinCodesPath + "?" + url.Values{"filter_codes": {pincode}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOracleUnavailable, err, "build pincode request")
	}
	httpReq.Header.Set("Authorization", "Token "+c.token)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOracleUnavailable, err, "execute pincode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeOracleUnavailable, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "pincode request failed")
	}

	var out PinCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOracleUnavailable, err, "decode pincode response")
	}
	return &out, nil
}
