package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures the fast and rendered fetch paths.
type FetchConfig struct {
	TimeoutSecs       int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RenderTimeoutSecs int    `yaml:"render_timeout_secs" mapstructure:"render_timeout_secs"`
	SettleMillis      int    `yaml:"settle_millis" mapstructure:"settle_millis"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// SearchConfig configures the candidate resolvers.
type SearchConfig struct {
	MaxResults         int `yaml:"max_results" mapstructure:"max_results"`
	DirectoryScrolls   int `yaml:"directory_scrolls" mapstructure:"directory_scrolls"`
	ScrollSettleMillis int `yaml:"scroll_settle_millis" mapstructure:"scroll_settle_millis"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	MaxContactPages      int `yaml:"max_contact_pages" mapstructure:"max_contact_pages"`
	CandidateDelayMillis int `yaml:"candidate_delay_millis" mapstructure:"candidate_delay_millis"`
	MaxConcurrent        int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ExtractConfig holds the tuned heuristic lists. Overriding the defaults
// changes which email wins on ambiguous pages, so the tier ordering in
// the extractor itself is fixed.
type ExtractConfig struct {
	DenyDomains      []string `yaml:"deny_domains" mapstructure:"deny_domains"`
	BusinessPrefixes []string `yaml:"business_prefixes" mapstructure:"business_prefixes"`
	SocialDomains    []string `yaml:"social_domains" mapstructure:"social_domains"`
	ContactKeywords  []string `yaml:"contact_keywords" mapstructure:"contact_keywords"`
}

// NormalizeConfig configures post-processing.
type NormalizeConfig struct {
	DefaultCountryCode string `yaml:"default_country_code" mapstructure:"default_country_code"`
}

// StoreConfig configures the run store and fetch cache. An empty path
// disables persistence.
type StoreConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.render_timeout_secs", 30)
	v.SetDefault("fetch.settle_millis", 2000)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("fetch.max_body_bytes", 2*1024*1024)
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.directory_scrolls", 3)
	v.SetDefault("search.scroll_settle_millis", 1000)
	v.SetDefault("pipeline.max_contact_pages", 2)
	v.SetDefault("pipeline.candidate_delay_millis", 2000)
	v.SetDefault("pipeline.max_concurrent", 1)
	v.SetDefault("extract.deny_domains", []string{
		"example.com", "test.com", "domain.com", "email.com",
		"yourdomain.com", "company.com", "wixpress.com", "sentry.io",
		"godaddy.com", "2x.png", "3x.png", "w3.org", "schema.org",
	})
	v.SetDefault("extract.business_prefixes", []string{
		"info", "contact", "hello", "support", "mail", "inquiry", "sales", "admin",
	})
	v.SetDefault("extract.social_domains", []string{
		"google.", "facebook.", "instagram.", "twitter.", "youtube.",
		"linkedin.", "wikipedia.", "maps.",
	})
	v.SetDefault("extract.contact_keywords", []string{
		"contact", "about", "reach", "get-in-touch", "connect", "support",
	})
	v.SetDefault("normalize.default_country_code", "91")
	v.SetDefault("store.path", "")
	v.SetDefault("store.cache_ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
