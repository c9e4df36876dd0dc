package auth

import (
	"fmt"

	"github.com/veralux-ai/veralux/internal/config"
)

// Client is the runtime representation of an API client.
type Client struct {
	ID string
}

// Auth holds mappings from API keys to clients. An empty Auth (no clients
// configured) authenticates nobody; the server decides whether that means
// open access.
type Auth struct {
	apiKeyToClient map[string]Client
}

// NewFromConfig builds an Auth instance from the loaded config.
func NewFromConfig(cfg *config.Config) (*Auth, error) {
	m := make(map[string]Client)

	for _, c := range cfg.Clients {
		if c.ID == "" {
			return nil, fmt.Errorf("client with empty id in config")
		}
		client := Client{ID: c.ID}
		for _, key := range c.APIKeys {
			if key == "" {
				continue
			}
			if _, exists := m[key]; exists {
				return nil, fmt.Errorf("api key %q is assigned to multiple clients", key)
			}
			m[key] = client
		}
	}

	return &Auth{apiKeyToClient: m}, nil
}

// Enabled reports whether any API key is configured.
func (a *Auth) Enabled() bool {
	return a != nil && len(a.apiKeyToClient) > 0
}

// Lookup returns the client for a given API key, if any.
func (a *Auth) Lookup(apiKey string) (Client, bool) {
	if a == nil {
		return Client{}, false
	}
	c, ok := a.apiKeyToClient[apiKey]
	return c, ok
}
