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
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Templates TemplatesConfig `yaml:"templates" mapstructure:"templates"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LLMConfig holds model API settings.
type LLMConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	Model        string `yaml:"model" mapstructure:"model"`
	FastModel    string `yaml:"fast_model" mapstructure:"fast_model"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
	CacheSize    int    `yaml:"cache_size" mapstructure:"cache_size"`
}

// ScrapeConfig bounds the store-list crawl.
type ScrapeConfig struct {
	MinStores       int     `yaml:"min_stores" mapstructure:"min_stores"`
	MaxPages        int     `yaml:"max_pages" mapstructure:"max_pages"`
	MaxBrowserPages int     `yaml:"max_browser_pages" mapstructure:"max_browser_pages"`
	CrawlDelaySecs  float64 `yaml:"crawl_delay_secs" mapstructure:"crawl_delay_secs"`
	PrefDelaySecs   float64 `yaml:"pref_delay_secs" mapstructure:"pref_delay_secs"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxHTMLLength   int     `yaml:"max_html_length" mapstructure:"max_html_length"`
}

// BatchConfig configures batch investigation runs.
type BatchConfig struct {
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
	DelaySecs   float64 `yaml:"delay_secs" mapstructure:"delay_secs"`
}

// ExportConfig configures report output.
type ExportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	MaxEntries int    `yaml:"max_entries" mapstructure:"max_entries"`
}

// TemplatesConfig configures the investigation template registry.
type TemplatesConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
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
	v.SetEnvPrefix("PLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("llm.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.fast_model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.cache_ttl_secs", 3600)
	v.SetDefault("llm.cache_size", 500)
	v.SetDefault("scrape.min_stores", 3)
	v.SetDefault("scrape.max_pages", 10)
	v.SetDefault("scrape.max_browser_pages", 15)
	v.SetDefault("scrape.crawl_delay_secs", 0.5)
	v.SetDefault("scrape.pref_delay_secs", 0.3)
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.max_html_length", 50000)
	v.SetDefault("batch.concurrency", 0) // 0 = auto-tune from entity count
	v.SetDefault("batch.delay_secs", 1.0)
	v.SetDefault("export.dir", "output")
	v.SetDefault("history.path", "check_history")
	v.SetDefault("history.max_entries", 100)
	v.SetDefault("templates.dir", "templates")
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
