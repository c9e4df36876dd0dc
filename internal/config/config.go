package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds veralux configuration. It is loaded once at process start and
// read-only afterwards; weight or threshold changes are a redeploy action.
type Config struct {
	Server       ServerConfig    `yaml:"server"`
	Catalog      CatalogConfig   `yaml:"catalog"`
	Identify     DecisionConfig  `yaml:"identify"`
	Authenticate DecisionConfig  `yaml:"authenticate"`
	Vision       VisionConfig    `yaml:"vision"`
	Veranet      VeranetConfig   `yaml:"veranet"`
	Market       MarketConfig    `yaml:"market"`
	Clients      []ClientConfig  `yaml:"clients"`
	Audit        AuditConfig     `yaml:"audit"`
	Telemetry    TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`             // HTTP listen address, e.g. ":8080"
	MaxUploadBytes int64  `yaml:"max_upload_bytes"` // per-request multipart limit
	RequestTTLMin  int    `yaml:"request_ttl_min"`  // recent-decision store TTL, minutes
}

type CatalogConfig struct {
	// Brands narrows the built-in brand registry. Empty means all supported
	// brands, in the documented tie-break order.
	Brands []string `yaml:"brands"`
}

// DecisionConfig is one decision context: the fusion weights per method and
// the strict-greater-than acceptance threshold.
type DecisionConfig struct {
	Threshold float64            `yaml:"threshold"`
	Weights   map[string]float64 `yaml:"weights"`
}

type VisionConfig struct {
	ReferenceDir      string `yaml:"reference_dir"`       // per-brand reference images
	ProducerTimeoutMs int    `yaml:"producer_timeout_ms"` // per-producer bound; slower producers score 0
}

type VeranetConfig struct {
	Enabled      bool   `yaml:"enabled"`
	BundleDir    string `yaml:"bundle_dir"`
	ImageSize    int    `yaml:"image_size"` // model input side length, e.g. 224
	IntraThreads int    `yaml:"intra_threads"`
	InterThreads int    `yaml:"inter_threads"`
}

type MarketConfig struct {
	Enabled        bool                 `yaml:"enabled"`
	QueryTimeoutMs int                  `yaml:"query_timeout_ms"`
	Sources        []MarketSourceConfig `yaml:"sources"`
}

type MarketSourceConfig struct {
	Name         string `yaml:"name"`
	SearchURL    string `yaml:"search_url"` // %s is replaced with the escaped query
	ListingClass string `yaml:"listing_class"`
	TitleClass   string `yaml:"title_class"`
	PriceClass   string `yaml:"price_class"`
}

type ClientConfig struct {
	ID      string   `yaml:"id"`
	APIKeys []string `yaml:"api_keys"`
}

type AuditConfig struct {
	Level     string       `yaml:"level"` // metadata | full
	QueueSize int          `yaml:"queue_size"`
	Workers   int          `yaml:"workers"`
	Sinks     []SinkConfig `yaml:"sinks"`
}

type SinkConfig struct {
	Type    string            `yaml:"type"` // file_jsonl | webhook
	Path    string            `yaml:"path"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
}

// Load reads configuration from a YAML file. A missing file returns the
// default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Identify: DecisionConfig{
			Threshold: 0.6,
			Weights: map[string]float64{
				"logo":    0.35,
				"color":   0.2,
				"texture": 0.2,
				"veranet": 0.25,
			},
		},
		Authenticate: DecisionConfig{
			Threshold: 0.85,
			Weights: map[string]float64{
				"logo":       0.25,
				"stitching":  0.25,
				"symmetry":   0.15,
				"hardware":   0.15,
				"provenance": 0.2,
			},
		},
		Audit: AuditConfig{
			Level: "metadata",
		},
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = 10 << 20
	}
	if cfg.Server.RequestTTLMin <= 0 {
		cfg.Server.RequestTTLMin = 30
	}
	if cfg.Vision.ProducerTimeoutMs <= 0 {
		cfg.Vision.ProducerTimeoutMs = 1500
	}
	if cfg.Veranet.ImageSize <= 0 {
		cfg.Veranet.ImageSize = 224
	}
	if cfg.Market.QueryTimeoutMs <= 0 {
		cfg.Market.QueryTimeoutMs = 4000
	}
	if cfg.Audit.Level == "" {
		cfg.Audit.Level = "metadata"
	}
	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = 1000
	}
	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = 1
	}
}
