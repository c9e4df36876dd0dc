package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrConfiguration marks invalid static configuration. It is fatal at
// startup and never recovered silently; every validation failure wraps it so
// callers can errors.Is against one sentinel.
var ErrConfiguration = errors.New("invalid configuration")

// knownMethods is the closed set of fusion method names a weight map may
// reference. Adding a producer means adding its name here.
var knownMethods = map[string]bool{
	"logo":       true,
	"color":      true,
	"texture":    true,
	"stitching":  true,
	"symmetry":   true,
	"hardware":   true,
	"provenance": true,
	"veranet":    true,
}

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfiguration)
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr must be set", ErrConfiguration)
	}

	if err := validateBrands(cfg.Catalog.Brands); err != nil {
		return err
	}
	if err := validateDecision("identify", cfg.Identify); err != nil {
		return err
	}
	if err := validateDecision("authenticate", cfg.Authenticate); err != nil {
		return err
	}

	seenKeys := make(map[string]string)
	for _, c := range cfg.Clients {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("%w: client with empty id", ErrConfiguration)
		}
		for _, key := range c.APIKeys {
			if key == "" {
				continue
			}
			if owner, dup := seenKeys[key]; dup {
				return fmt.Errorf("%w: api key assigned to both client %q and client %q", ErrConfiguration, owner, c.ID)
			}
			seenKeys[key] = c.ID
		}
	}

	if cfg.Veranet.Enabled && strings.TrimSpace(cfg.Veranet.BundleDir) == "" {
		return fmt.Errorf("%w: veranet enabled but bundle_dir is empty", ErrConfiguration)
	}

	if err := validateMarket(cfg.Market); err != nil {
		return err
	}
	if err := validateAudit(cfg.Audit); err != nil {
		return err
	}
	if err := validateTelemetry(cfg.Telemetry); err != nil {
		return err
	}

	return nil
}

func validateBrands(brands []string) error {
	seen := make(map[string]bool, len(brands))
	for _, b := range brands {
		b = strings.TrimSpace(b)
		if b == "" {
			return fmt.Errorf("%w: catalog.brands contains an empty entry", ErrConfiguration)
		}
		if b == "unknown" {
			return fmt.Errorf("%w: catalog.brands uses reserved name %q", ErrConfiguration, b)
		}
		if seen[b] {
			return fmt.Errorf("%w: catalog.brands lists %q twice", ErrConfiguration, b)
		}
		seen[b] = true
	}
	return nil
}

func validateDecision(name string, d DecisionConfig) error {
	if d.Threshold < 0 || d.Threshold > 1 {
		return fmt.Errorf("%w: %s.threshold %v outside [0,1]", ErrConfiguration, name, d.Threshold)
	}
	if len(d.Weights) == 0 {
		return fmt.Errorf("%w: %s.weights is empty", ErrConfiguration, name)
	}
	for method, w := range d.Weights {
		if !knownMethods[method] {
			return fmt.Errorf("%w: %s.weights references unknown method %q", ErrConfiguration, name, method)
		}
		if w < 0 {
			return fmt.Errorf("%w: %s.weights[%s] is negative (%v)", ErrConfiguration, name, method, w)
		}
	}
	return nil
}

func validateMarket(m MarketConfig) error {
	if !m.Enabled {
		return nil
	}
	if len(m.Sources) == 0 {
		return fmt.Errorf("%w: market enabled but no sources configured", ErrConfiguration)
	}
	for i, s := range m.Sources {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: market source %d missing name", ErrConfiguration, i)
		}
		if !strings.Contains(s.SearchURL, "%s") {
			return fmt.Errorf("%w: market source %q search_url must contain %%s", ErrConfiguration, s.Name)
		}
		probe := fmt.Sprintf(s.SearchURL, "probe")
		u, err := url.Parse(probe)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: market source %q has invalid search_url", ErrConfiguration, s.Name)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: market source %q search_url must be http or https", ErrConfiguration, s.Name)
		}
		if strings.TrimSpace(s.PriceClass) == "" {
			return fmt.Errorf("%w: market source %q missing price_class", ErrConfiguration, s.Name)
		}
	}
	return nil
}

func validateAudit(a AuditConfig) error {
	switch strings.ToLower(strings.TrimSpace(a.Level)) {
	case "", "metadata", "full":
	default:
		return fmt.Errorf("%w: audit.level must be metadata or full, got %q", ErrConfiguration, a.Level)
	}
	for i, s := range a.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "file_jsonl":
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("%w: audit sink %d (file_jsonl) missing path", ErrConfiguration, i)
			}
		case "webhook":
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("%w: audit sink %d (webhook) missing url", ErrConfiguration, i)
			}
			u, err := url.Parse(s.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("%w: audit sink %d (webhook) has invalid url", ErrConfiguration, i)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("%w: audit sink %d (webhook) url must be http or https", ErrConfiguration, i)
			}
		default:
			return fmt.Errorf("%w: audit sink %d has unknown type %q", ErrConfiguration, i, s.Type)
		}
	}
	return nil
}

func validateTelemetry(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return fmt.Errorf("%w: telemetry enabled but endpoint is empty", ErrConfiguration)
	}
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("%w: telemetry.protocol must be grpc or http, got %q", ErrConfiguration, t.Protocol)
	}
	return nil
}
