// Package fetch retrieves raw content for candidate URLs while respecting a
// global request cadence and surviving anti-bot defenses.
package fetch

import (
	"fmt"
	"net/url"
)

// ProxyConfig describes one outbound proxy provider. Credentials live either
// embedded in BaseURL or in the discrete Username/Password fields, never
// both; the manager rejects configurations that would embed the same
// credentials twice in a constructed URL.
type ProxyConfig struct {
	ProviderID string
	BaseURL    string
	Username   string
	Password   string
	Scheme     string
}

// ProxyManager owns proxy selection. Exactly one provider is active at a
// time; switching providers is a configuration action, not a runtime
// negotiation.
type ProxyManager struct {
	providerID string
	proxyURL   *url.URL
}

// NewProxyManager validates the configuration and constructs the proxy URL
// once, at config time. Credential duplication fails fast here, never at
// request time.
func NewProxyManager(cfg ProxyConfig) (*ProxyManager, error) {
	if cfg.BaseURL == "" {
		if cfg.Username != "" || cfg.Password != "" {
			return nil, fmt.Errorf("proxy credentials set without a base url")
		}
		return &ProxyManager{providerID: cfg.ProviderID}, nil
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy base url: %w", err)
	}
	hasEmbedded := u.User != nil
	hasDiscrete := cfg.Username != "" || cfg.Password != ""
	if hasEmbedded && hasDiscrete {
		return nil, fmt.Errorf("proxy %s: credentials appear both in the url and as discrete fields", cfg.ProviderID)
	}
	if hasDiscrete {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	if cfg.Scheme != "" {
		u.Scheme = cfg.Scheme
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}

	return &ProxyManager{
		providerID: cfg.ProviderID,
		proxyURL:   u,
	}, nil
}

// ActiveProvider returns the configured provider identifier.
func (m *ProxyManager) ActiveProvider() string {
	return m.providerID
}

// ProxyURLs returns the proxy URLs for the active provider. Empty when no
// proxy is configured.
func (m *ProxyManager) ProxyURLs() []string {
	if m.proxyURL == nil {
		return nil
	}
	return []string{m.proxyURL.String()}
}
