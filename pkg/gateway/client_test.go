package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/account/info", r.URL.Path)
		assert.Equal(t, "Bearer cfk_test", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"tenant": map[string]any{
				"id":                 "t_123",
				"name":               "acme",
				"status":             "active",
				"upstreamConfigured": true,
				"activeKeys":         2,
			},
		})
	}))
	defer server.Close()

	tenant, err := NewClient(server.URL, "cfk_test").AccountInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Name)
	assert.Equal(t, "active", tenant.Status)
	assert.True(t, tenant.UpstreamConfigured)
	assert.Equal(t, 2, tenant.ActiveKeys)
}

func TestGetBilling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/account/billing", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"billing": map[string]any{
				"creditBalanceMicrousd":   12_340_000,
				"autoTopupEnabled":        true,
				"autoTopupThresholdCents": 200,
				"autoTopupAmountCents":    1000,
				"defaultPaymentMethodSet": true,
			},
		})
	}))
	defer server.Close()

	billing, err := NewClient(server.URL, "cfk_test").GetBilling(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 12.34, billing.BalanceUSD(), 0.0001)
	assert.True(t, billing.AutoTopupEnabled)
	assert.Equal(t, 200, billing.AutoTopupThresholdCents)
}

func TestTopup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/account/billing/topup", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(10), body["amountUsd"])
		assert.Equal(t, "stripe", body["method"])

		json.NewEncoder(w).Encode(map[string]string{"paymentUrl": "https://pay.example/abc"})
	}))
	defer server.Close()

	url, err := NewClient(server.URL, "cfk_test").Topup(context.Background(), 10, "stripe")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", url)
}

func TestSetAutoTopup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/account/billing/auto-topup", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["enabled"])
		assert.Equal(t, float64(200), body["thresholdCents"])

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewClient(server.URL, "cfk_test").SetAutoTopup(context.Background(), AutoTopupSettings{
		Enabled:        true,
		ThresholdCents: 200,
		AmountCents:    1000,
	})
	require.NoError(t, err)
}

func TestSetUpstream_OmitsEmptyFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "openrouter", body["kind"])
		assert.NotContains(t, body, "baseUrl")
		assert.NotContains(t, body, "apiKey")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := NewClient(server.URL, "cfk_test").SetUpstream(context.Background(), UpstreamConfig{Kind: "openrouter"})
	require.NoError(t, err)
}

func TestGetUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"configured": true,
			"upstream":   map[string]string{"kind": "anthropic", "baseUrl": "https://api.anthropic.com"},
		})
	}))
	defer server.Close()

	status, err := NewClient(server.URL, "cfk_test").GetUpstream(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Configured)
	require.NotNil(t, status.Upstream)
	assert.Equal(t, "anthropic", status.Upstream.Kind)
}

func TestListKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{
				{"prefix": "cfk_abc", "label": "ci", "createdAt": "2025-05-01T10:00:00Z"},
				{"prefix": "cfk_def", "createdAt": "2025-06-12T10:00:00Z"},
			},
		})
	}))
	defer server.Close()

	keys, err := NewClient(server.URL, "cfk_test").ListKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "cfk_abc", keys[0].Prefix)
	assert.Equal(t, "ci", keys[0].Label)
}

func TestCreateKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "deploy", body["label"])

		json.NewEncoder(w).Encode(map[string]string{"apiKey": "cfk_full_secret", "prefix": "cfk_full"})
	}))
	defer server.Close()

	created, err := NewClient(server.URL, "cfk_test").CreateKey(context.Background(), "deploy")
	require.NoError(t, err)
	assert.Equal(t, "cfk_full_secret", created.APIKey)
}

func TestProvision(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/provision", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "provisioning is unauthenticated")

		var req ProvisionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "me@example.com", req.Email)
		assert.Equal(t, "custom", req.Upstream.Kind)

		json.NewEncoder(w).Encode(map[string]string{"apiKey": "cfk_new", "tenantId": "t_9"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, "").Provision(context.Background(), ProvisionRequest{
		Email:    "me@example.com",
		Password: "secret",
		Upstream: UpstreamConfig{Kind: "custom", BaseURL: "https://api.openai.com", APIKey: "sk-x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cfk_new", resp.APIKey)
	assert.Equal(t, "t_9", resp.TenantID)
	assert.False(t, resp.RequiresVerification)
}

func TestProvision_AliasFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"api_key": "cfk_alias", "tenant_id": "t_1"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, "").Provision(context.Background(), ProvisionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "cfk_alias", resp.APIKey)
	assert.Equal(t, "t_1", resp.TenantID)
}

func TestProvision_RequiresVerification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"requiresVerification": true,
			"message":              "Check your email.",
			"verificationUrl":      "https://app.example/verify/xyz",
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, "").Provision(context.Background(), ProvisionRequest{})
	require.NoError(t, err)
	assert.True(t, resp.RequiresVerification)
	assert.Equal(t, "https://app.example/verify/xyz", resp.VerificationURL)
	assert.Empty(t, resp.APIKey)
}

func TestAPIError_StatusAndDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "cfk_bad").AccountInfo(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid api key", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "401")
}

func TestErrorDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error": "nope"}`, "nope"},
		{"message field", `{"message": "denied"}`, "denied"},
		{"error wins over message", `{"error": "a", "message": "b"}`, "a"},
		{"plain text", "internal server error", "internal server error"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorDetail([]byte(tt.body)))
		})
	}
}

func TestListModelIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"id": "gpt-5.2"}, {"id": "anthropic/claude-opus-4.6"}},
		})
	}))
	defer server.Close()

	ids := NewClient(server.URL, "cfk_test").ListModelIDs(context.Background())
	assert.Equal(t, []string{"gpt-5.2", "anthropic/claude-opus-4.6"}, ids)
}

func TestListModelIDs_ErrorReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	assert.Nil(t, NewClient(server.URL, "cfk_test").ListModelIDs(context.Background()))
}
