// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Run       RunConfig       `mapstructure:"run"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Proxy     ProxyConfig     `mapstructure:"proxy"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Classify  ClassifyConfig  `mapstructure:"classify"`
	Gazetteer GazetteerConfig `mapstructure:"gazetteer"`
	DB        DBConfig        `mapstructure:"db"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Ops       OpsConfig       `mapstructure:"ops"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// RunConfig governs batch accounting and worker parallelism. Run capacity is
// extract_limit * extract_batches.
type RunConfig struct {
	ExtractLimit   int           `mapstructure:"extract_limit"`
	ExtractBatches int           `mapstructure:"extract_batches"`
	BatchSleep     time.Duration `mapstructure:"batch_sleep"`
	Concurrency    int           `mapstructure:"concurrency"`
	QueueDepth     int           `mapstructure:"queue_depth"`
}

// Capacity returns the maximum number of candidates processed per run.
func (r RunConfig) Capacity() int {
	return r.ExtractLimit * r.ExtractBatches
}

// FetchConfig controls request pacing, retries, and anti-bot backoff.
type FetchConfig struct {
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	InterRequestMin time.Duration `mapstructure:"inter_request_min"`
	InterRequestMax time.Duration `mapstructure:"inter_request_max"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay   time.Duration `mapstructure:"retry_max_delay"`
	BackoffMin      time.Duration `mapstructure:"backoff_min"`
	BackoffMax      time.Duration `mapstructure:"backoff_max"`
	BlockRetryLimit int           `mapstructure:"block_retry_limit"`
	BlockSignatures []string      `mapstructure:"block_signatures"`
}

// ProxyConfig selects the single active outbound proxy provider. Credentials
// appear either embedded in BaseURL or as the discrete Username/Password
// fields, never both.
type ProxyConfig struct {
	ProviderID string `mapstructure:"provider_id"`
	BaseURL    string `mapstructure:"base_url"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Scheme     string `mapstructure:"scheme"`
}

// ExtractConfig controls the tiered extraction engine.
type ExtractConfig struct {
	StrategyTimeout time.Duration `mapstructure:"strategy_timeout"`
	RenderEnabled   bool          `mapstructure:"render_enabled"`
	RenderTimeout   time.Duration `mapstructure:"render_timeout"`
	RenderParallel  int           `mapstructure:"render_parallel"`
}

// ClassifyConfig points at optional pattern-set overrides. Empty paths keep
// the built-in defaults.
type ClassifyConfig struct {
	URLPatternsPath    string `mapstructure:"url_patterns_path"`
	WireSignaturesPath string `mapstructure:"wire_signatures_path"`
}

// GazetteerConfig locates the entity snapshot and tunes fuzzy fallback.
type GazetteerConfig struct {
	SnapshotPath    string        `mapstructure:"snapshot_path"`
	FuzzyThreshold  float64       `mapstructure:"fuzzy_threshold"`
	MaxFuzzyEntries int           `mapstructure:"max_fuzzy_entries"`
	ResolveTimeout  time.Duration `mapstructure:"resolve_timeout"`
}

// DBConfig controls the Postgres article sink.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ArchiveConfig sets the raw HTML archive destination.
type ArchiveConfig struct {
	GCSBucket   string `mapstructure:"gcs_bucket"`
	Prefix      string `mapstructure:"prefix"`
	ContentType string `mapstructure:"content_type"`
}

// PubSubConfig holds metadata for completion notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// OpsConfig controls the operational HTTP endpoint.
type OpsConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.extract_limit", 50)
	v.SetDefault("run.extract_batches", 1)
	v.SetDefault("run.batch_sleep", "30s")
	v.SetDefault("run.concurrency", 4)
	v.SetDefault("run.queue_depth", 256)
	v.SetDefault("fetch.user_agent", "newspipe-bot/0.1")
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.inter_request_min", "5s")
	v.SetDefault("fetch.inter_request_max", "15s")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.retry_base_delay", "250ms")
	v.SetDefault("fetch.retry_max_delay", "5s")
	v.SetDefault("fetch.backoff_min", "30m")
	v.SetDefault("fetch.backoff_max", "2h")
	v.SetDefault("fetch.block_retry_limit", 3)
	v.SetDefault("extract.strategy_timeout", "10s")
	v.SetDefault("extract.render_enabled", false)
	v.SetDefault("extract.render_timeout", "25s")
	v.SetDefault("extract.render_parallel", 1)
	v.SetDefault("gazetteer.fuzzy_threshold", 0.85)
	v.SetDefault("gazetteer.max_fuzzy_entries", 50000)
	v.SetDefault("gazetteer.resolve_timeout", "2s")
	v.SetDefault("db.table", "articles")
	v.SetDefault("archive.prefix", "pages")
	v.SetDefault("archive.content_type", "text/html; charset=utf-8")
	v.SetDefault("ops.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits. Proxy credential
// duplication is rejected here, at config time, not at request time.
func (c Config) Validate() error {
	if c.Run.ExtractLimit <= 0 {
		return fmt.Errorf("run.extract_limit must be > 0")
	}
	if c.Run.ExtractBatches <= 0 {
		return fmt.Errorf("run.extract_batches must be > 0")
	}
	if c.Run.Concurrency <= 0 {
		return fmt.Errorf("run.concurrency must be > 0")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.InterRequestMin < 0 || c.Fetch.InterRequestMax < c.Fetch.InterRequestMin {
		return fmt.Errorf("fetch.inter_request_min/max must satisfy 0 <= min <= max")
	}
	if c.Fetch.BackoffMin <= 0 || c.Fetch.BackoffMax < c.Fetch.BackoffMin {
		return fmt.Errorf("fetch.backoff_min/max must satisfy 0 < min <= max")
	}
	if err := c.Proxy.Validate(); err != nil {
		return err
	}
	if c.Gazetteer.FuzzyThreshold < 0 || c.Gazetteer.FuzzyThreshold > 1 {
		return fmt.Errorf("gazetteer.fuzzy_threshold must be in [0,1]")
	}
	if c.Ops.Port <= 0 {
		return fmt.Errorf("ops.port must be > 0")
	}
	return nil
}

// Validate rejects any configuration that would embed the same credentials
// twice in a constructed proxy URL.
func (p ProxyConfig) Validate() error {
	if p.BaseURL == "" {
		if p.Username != "" || p.Password != "" {
			return fmt.Errorf("proxy.username/password set without proxy.base_url")
		}
		return nil
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("parse proxy.base_url: %w", err)
	}
	if u.User != nil && (p.Username != "" || p.Password != "") {
		return fmt.Errorf("proxy credentials must be set in base_url or discrete fields, not both")
	}
	return nil
}
