package gateway

import (
	"crypto/rand"
	"math/big"
	"os"
	"strings"
)

// DefaultBaseURL is the hosted CacheForge deployment.
const DefaultBaseURL = "https://app.anvil-ai.io"

// Canonical upstream kinds accepted by the API. "openai" is a legacy alias
// that maps to custom with the OpenAI base URL.
const (
	KindOpenRouter = "openrouter"
	KindAnthropic  = "anthropic"
	KindCustom     = "custom"
	KindOpenAI     = "openai"
)

var upstreamDefaultBaseURLs = map[string]string{
	KindOpenRouter: "https://openrouter.ai/api/v1",
	KindAnthropic:  "https://api.anthropic.com",
	KindCustom:     "https://api.fireworks.ai/inference/v1",
}

const legacyOpenAIBaseURL = "https://api.openai.com"

// NormalizeBaseURL strips trailing slashes and a trailing /v1 so both forms
// of the gateway URL are accepted.
func NormalizeBaseURL(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, "/v1")
	return strings.TrimRight(url, "/")
}

// ResolveBaseURL picks the base URL from the flag, the CACHEFORGE_BASE_URL
// environment variable, or the hosted default.
func ResolveBaseURL(explicit string) string {
	if explicit != "" {
		return NormalizeBaseURL(explicit)
	}
	if env := os.Getenv("CACHEFORGE_BASE_URL"); env != "" {
		return NormalizeBaseURL(env)
	}
	return DefaultBaseURL
}

// DetectUpstream finds an upstream provider key in the environment. Detection
// order favors aggregators over direct providers.
func DetectUpstream() (kind, key string, ok bool) {
	candidates := []struct {
		envVar string
		kind   string
	}{
		{"OPENROUTER_API_KEY", KindOpenRouter},
		{"ANTHROPIC_API_KEY", KindAnthropic},
		{"FIREWORKS_API_KEY", KindCustom},
		{"OPENAI_API_KEY", KindOpenAI},
	}
	for _, c := range candidates {
		if key := os.Getenv(c.envVar); key != "" {
			return c.kind, key, true
		}
	}
	return "", "", false
}

// InferKindFromKey guesses the provider from the key prefix. The bare "sk-"
// check must come after the more specific prefixes.
func InferKindFromKey(key string) string {
	switch {
	case strings.HasPrefix(key, "sk-or-"):
		return KindOpenRouter
	case strings.HasPrefix(key, "sk-ant-"):
		return KindAnthropic
	case strings.HasPrefix(key, "sk-"):
		return KindOpenAI
	default:
		return KindCustom
	}
}

// ValidKind reports whether the kind is accepted (including the legacy
// openai alias).
func ValidKind(kind string) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindOpenRouter, KindAnthropic, KindCustom, KindOpenAI:
		return true
	}
	return false
}

// CanonicalKind maps the legacy openai alias to custom for API payloads.
func CanonicalKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == KindOpenAI {
		return KindCustom
	}
	return kind
}

// DefaultUpstreamBaseURL resolves the base URL for a kind, honoring an
// explicit override first.
func DefaultUpstreamBaseURL(kind, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == KindOpenAI {
		return legacyOpenAIBaseURL
	}
	if url, ok := upstreamDefaultBaseURLs[kind]; ok {
		return url
	}
	return upstreamDefaultBaseURLs[KindCustom]
}

// LooksLikeGatewayKey reports whether the key carries a CacheForge prefix.
func LooksLikeGatewayKey(key string) bool {
	key = strings.TrimSpace(key)
	return strings.HasPrefix(key, "cf_") || strings.HasPrefix(key, "cfk_")
}

// ResolveGatewayKey picks the key from the flag, CACHEFORGE_API_KEY, or a
// CacheForge-prefixed key parked in OPENAI_API_KEY (the provision next-steps
// tell users to export it there).
func ResolveGatewayKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if key := os.Getenv("CACHEFORGE_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("OPENAI_API_KEY"); LooksLikeGatewayKey(key) {
		return key
	}
	return ""
}

// MaskKey shortens a secret for display.
func MaskKey(key string) string {
	if len(key) <= 12 {
		return key
	}
	return key[:8] + "..." + key[len(key)-4:]
}

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeneratePassword returns a random account password of the given length.
func GeneratePassword(length int) (string, error) {
	chars := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range chars {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		chars[i] = passwordAlphabet[n.Int64()]
	}
	return string(chars), nil
}
