// Package gateway is the HTTP client for the CacheForge control plane:
// account provisioning, billing, upstream configuration, and API keys.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
)

const requestTimeout = 15 * time.Second

// APIError is a non-2xx response from the gateway. The status code is kept so
// callers can distinguish auth failures (401) from exhausted credits (402).
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Detail)
}

// Client talks to one gateway deployment.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a client for the given base URL. The key may be empty for
// unauthenticated calls such as provisioning.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    NormalizeBaseURL(baseURL),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// BaseURL returns the normalized base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request payload")
		}
		body = bytes.NewBuffer(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	logger.G(ctx).WithField("method", method).WithField("url", url).Debug("calling gateway")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "failed to parse response from %s", url)
		}
	}
	return nil
}

// errorDetail pulls the human message out of an error body. The gateway uses
// an "error" field but some deployments return "message" instead.
func errorDetail(body []byte) string {
	if detail := gjson.GetBytes(body, "error").String(); detail != "" {
		return detail
	}
	if detail := gjson.GetBytes(body, "message").String(); detail != "" {
		return detail
	}
	s := string(bytes.TrimSpace(body))
	if len(s) > 500 {
		s = s[:500]
	}
	return s
}

// UpstreamConfig is the provider the gateway proxies to.
type UpstreamConfig struct {
	Kind    string `json:"kind,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
	APIKey  string `json:"apiKey,omitempty"`
}

// ProvisionRequest registers (or re-authenticates) an account.
type ProvisionRequest struct {
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	Upstream   UpstreamConfig `json:"upstream"`
	InviteCode string         `json:"inviteCode,omitempty"`
}

// ProvisionResponse is either a minted key or a verification-required notice.
type ProvisionResponse struct {
	RequiresVerification bool   `json:"requiresVerification"`
	Message              string `json:"message,omitempty"`
	VerificationURL      string `json:"verificationUrl,omitempty"`
	APIKey               string `json:"apiKey,omitempty"`
	TenantID             string `json:"tenantId,omitempty"`
}

// Provision registers the account and mints a gateway key. Field names in the
// response have drifted across deployments (apiKey/api_key/key), so decoding
// probes the aliases instead of binding to one.
func (c *Client) Provision(ctx context.Context, req ProvisionRequest) (*ProvisionResponse, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/provision", req, &raw); err != nil {
		return nil, err
	}

	result := gjson.ParseBytes(raw)
	return &ProvisionResponse{
		RequiresVerification: result.Get("requiresVerification").Bool(),
		Message:              result.Get("message").String(),
		VerificationURL:      result.Get("verificationUrl").String(),
		APIKey:               firstString(result, "apiKey", "api_key", "key"),
		TenantID:             firstString(result, "tenantId", "tenant_id", "id"),
	}, nil
}

func firstString(result gjson.Result, paths ...string) string {
	for _, path := range paths {
		if v := result.Get(path).String(); v != "" {
			return v
		}
	}
	return ""
}

// Tenant is the account summary from /v1/account/info.
type Tenant struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Status             string `json:"status"`
	UpstreamConfigured bool   `json:"upstreamConfigured"`
	ActiveKeys         int    `json:"activeKeys"`
}

// AccountInfo fetches the tenant summary.
func (c *Client) AccountInfo(ctx context.Context) (*Tenant, error) {
	var envelope struct {
		Tenant Tenant `json:"tenant"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/account/info", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Tenant, nil
}

// Billing is the account billing state. The balance is tracked in micro-USD.
type Billing struct {
	CreditBalanceMicroUSD   int64 `json:"creditBalanceMicrousd"`
	AutoTopupEnabled        bool  `json:"autoTopupEnabled"`
	AutoTopupThresholdCents int   `json:"autoTopupThresholdCents"`
	AutoTopupAmountCents    int   `json:"autoTopupAmountCents"`
	DefaultPaymentMethodSet bool  `json:"defaultPaymentMethodSet"`
}

// BalanceUSD converts the micro-USD balance to dollars.
func (b Billing) BalanceUSD() float64 {
	return float64(b.CreditBalanceMicroUSD) / 1_000_000.0
}

// GetBilling fetches the billing state.
func (c *Client) GetBilling(ctx context.Context) (*Billing, error) {
	var envelope struct {
		Billing Billing `json:"billing"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/account/billing", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Billing, nil
}

// Topup creates a one-time payment link.
func (c *Client) Topup(ctx context.Context, amountUSD int, method string) (string, error) {
	payload := map[string]any{
		"amountUsd": amountUSD,
		"method":    method,
	}
	var resp struct {
		PaymentURL string `json:"paymentUrl"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/account/billing/topup", payload, &resp); err != nil {
		return "", err
	}
	return resp.PaymentURL, nil
}

// AutoTopupSettings configures automatic balance refills.
type AutoTopupSettings struct {
	Enabled        bool `json:"enabled"`
	ThresholdCents int  `json:"thresholdCents,omitempty"`
	AmountCents    int  `json:"amountCents,omitempty"`
}

// SetAutoTopup enables or disables automatic top-up.
func (c *Client) SetAutoTopup(ctx context.Context, settings AutoTopupSettings) error {
	return c.do(ctx, http.MethodPatch, "/v1/account/billing/auto-topup", settings, nil)
}

// UpstreamStatus reports whether an upstream provider is configured.
type UpstreamStatus struct {
	Configured bool            `json:"configured"`
	Upstream   *UpstreamConfig `json:"upstream"`
}

// GetUpstream fetches the current upstream configuration. The upstream API
// key is never returned, only kind and base URL.
func (c *Client) GetUpstream(ctx context.Context) (*UpstreamStatus, error) {
	var status UpstreamStatus
	if err := c.do(ctx, http.MethodGet, "/v1/account/upstream", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetUpstream replaces the upstream configuration. Empty fields are omitted
// so partial updates keep the existing values.
func (c *Client) SetUpstream(ctx context.Context, config UpstreamConfig) error {
	return c.do(ctx, http.MethodPost, "/v1/account/upstream", config, nil)
}

// Key is one gateway API key as listed by the API (prefix only, never the
// full secret).
type Key struct {
	ID        string `json:"id"`
	Prefix    string `json:"prefix"`
	Label     string `json:"label"`
	CreatedAt string `json:"createdAt"`
}

// ListKeys lists the account's API keys.
func (c *Client) ListKeys(ctx context.Context) ([]Key, error) {
	var envelope struct {
		Keys []Key `json:"keys"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/account/keys", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Keys, nil
}

// CreatedKey is the one-time response to key creation; the full key is only
// ever returned here.
type CreatedKey struct {
	APIKey string `json:"apiKey"`
	Prefix string `json:"prefix"`
}

// CreateKey mints a new API key.
func (c *Client) CreateKey(ctx context.Context, label string) (*CreatedKey, error) {
	payload := map[string]any{}
	if label != "" {
		payload["label"] = label
	}
	var created CreatedKey
	if err := c.do(ctx, http.MethodPost, "/v1/account/keys", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListModelIDs fetches the model ids visible through the gateway's
// OpenAI-compatible /v1/models endpoint. Best effort: API errors return an
// empty list so callers can fall back to curated defaults.
func (c *Client) ListModelIDs(ctx context.Context) []string {
	var envelope struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/models", nil, &envelope); err != nil {
		logger.G(ctx).WithError(err).Debug("model discovery failed, using curated defaults")
		return nil
	}
	ids := make([]string, 0, len(envelope.Data))
	for _, m := range envelope.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
