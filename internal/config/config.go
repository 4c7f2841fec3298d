// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/notice-scraper/internal/board"
)

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Board   BoardConfig   `mapstructure:"board"`
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Notice  NoticeConfig  `mapstructure:"notice"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Output  OutputConfig  `mapstructure:"output"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BoardConfig locates the bulletin board.
type BoardConfig struct {
	Origin string `mapstructure:"origin"`
	// ListURLTemplate contains "{page}" where the page number goes.
	ListURLTemplate string `mapstructure:"list_url_template"`
	ListPath        string `mapstructure:"list_path"`
	BoardPath       string `mapstructure:"board_path"`
}

// ScrapeConfig governs the listing walk and pacing.
type ScrapeConfig struct {
	MaxPages    int           `mapstructure:"max_pages"`
	NoticeDelay time.Duration `mapstructure:"notice_delay"`
}

// NoticeConfig holds the values used when a detail page omits a field.
type NoticeConfig struct {
	DefaultAuthor string `mapstructure:"default_author"`
	DefaultDate   string `mapstructure:"default_date"`
}

// HTTPConfig configures outbound requests.
type HTTPConfig struct {
	UserAgent       string        `mapstructure:"user_agent"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// OutputConfig sets where assets and the JSON document land.
type OutputConfig struct {
	AssetDir string `mapstructure:"asset_dir"`
	JSONPath string `mapstructure:"json_path"`
}

// StorageConfig enables the optional object storage mirror.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	GCSPrefix string `mapstructure:"gcs_prefix"`
}

// MetricsConfig controls the run counters export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// DefaultUserAgent mimics a desktop browser; the board rejects bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const defaultOrigin = "https://www.xn--989au4gtq4b.com"

// Load builds a Config from defaults, an optional file and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NOTICES")
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
	v.SetDefault("board.origin", defaultOrigin)
	v.SetDefault("board.list_url_template", defaultOrigin+"/board/index.html?board_id=hjm_notice&action=list&page={page}")
	v.SetDefault("board.list_path", "/board/index.html")
	v.SetDefault("board.board_path", "/board/")
	v.SetDefault("scrape.max_pages", board.DefaultMaxPages)
	v.SetDefault("scrape.notice_delay", board.DefaultNoticeDelay)
	v.SetDefault("notice.default_author", board.DefaultAuthor)
	v.SetDefault("notice.default_date", board.DefaultDate)
	v.SetDefault("http.user_agent", DefaultUserAgent)
	v.SetDefault("http.timeout", 10*time.Second)
	v.SetDefault("http.download_timeout", 2*time.Minute)
	v.SetDefault("output.asset_dir", "migration_assets")
	v.SetDefault("output.json_path", "scripts/notices_data.json")
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.gcs_prefix", "")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Board.Origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("board.origin must be an absolute URL, got %q", c.Board.Origin)
	}
	if !strings.Contains(c.Board.ListURLTemplate, "{page}") {
		return fmt.Errorf("board.list_url_template must contain {page}")
	}
	if c.Scrape.MaxPages <= 0 || c.Scrape.MaxPages > board.DefaultMaxPages {
		return fmt.Errorf("scrape.max_pages must be between 1 and %d", board.DefaultMaxPages)
	}
	if c.Scrape.NoticeDelay < 0 {
		return fmt.Errorf("scrape.notice_delay must be >= 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.DownloadTimeout < 0 {
		return fmt.Errorf("http.download_timeout must be >= 0")
	}
	if strings.TrimSpace(c.Output.AssetDir) == "" {
		return fmt.Errorf("output.asset_dir is required")
	}
	if strings.TrimSpace(c.Output.JSONPath) == "" {
		return fmt.Errorf("output.json_path is required")
	}
	if c.Notice.DefaultDate != "" {
		if _, err := time.Parse(time.DateOnly, c.Notice.DefaultDate); err != nil {
			return fmt.Errorf("notice.default_date must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}
