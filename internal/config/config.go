// Package config はサーバーの設定を読み込みます
// 優先順位は 既定値 < YAMLファイル < .env < 環境変数 です
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config はサーバー全体の設定です
type Config struct {
	Port string `yaml:"port"`
	// AllowedOrigins は一覧フィード（WebSocket）への接続を許可するブラウザの Origin です
	// 同一ホストからの接続は常に許可します。"*" で全て許可します
	AllowedOrigins []string `yaml:"allowed_origins"`

	Content   ContentConfig   `yaml:"content"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Session   SessionConfig   `yaml:"session"`
	Search    SearchConfig    `yaml:"search"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ContentConfig はコンテンツAPI（書籍・オファーの保存先）の設定です
type ContentConfig struct {
	BaseURL      string        `yaml:"base_url"`
	BooksTypeID  string        `yaml:"books_type_id"`
	OrdersTypeID string        `yaml:"orders_type_id"`
	Timeout      time.Duration `yaml:"timeout"`
}

// CatalogConfig は ISBN 検索に使う公開書誌カタログの設定です。BaseURL が空の場合は無効です
type CatalogConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// RedisConfig はセッション保存先の設定です。URL が空の場合はメモリに保存します
type RedisConfig struct {
	URL string `yaml:"url"`
}

// NATSConfig は交渉イベントの配信先の設定です。URL が空の場合はプロセス内でのみ配信します
type NATSConfig struct {
	URL string `yaml:"url"`
}

// TelemetryConfig はトレースの出力先です
// Exporter は none / stdout / otlp のいずれかです
type TelemetryConfig struct {
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Default は既定値の設定を返します
func Default() Config {
	return Config{
		Port: "8080",
		Content: ContentConfig{
			Timeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{TTL: 24 * time.Hour},
		Search:  SearchConfig{Debounce: 300 * time.Millisecond},
		Telemetry: TelemetryConfig{
			Exporter:    "none",
			ServiceName: "book_market",
		},
	}
}

// LoadFromEnvironment は CONFIG_FILE と .env、プロセスの環境変数から設定を読み込みます
func LoadFromEnvironment() (Config, error) {
	// .env がなくてもエラーにはしない
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(os.Getenv("CONFIG_FILE"), os.LookupEnv)
}

// Load は path のYAMLファイル（空なら読み込まない）と lookup の環境変数から設定を組み立てます
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("PORT", &cfg.Port)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	str("CONTENT_BASE_URL", &cfg.Content.BaseURL)
	str("BOOKS_CONTENT_TYPE_ID", &cfg.Content.BooksTypeID)
	str("ORDERS_CONTENT_TYPE_ID", &cfg.Content.OrdersTypeID)
	str("CATALOG_BASE_URL", &cfg.Catalog.BaseURL)
	str("REDIS_URL", &cfg.Redis.URL)
	str("NATS_URL", &cfg.NATS.URL)
	str("OTEL_EXPORTER", &cfg.Telemetry.Exporter)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.Endpoint)
	str("OTEL_SERVICE_NAME", &cfg.Telemetry.ServiceName)

	if err := dur("SESSION_TTL", &cfg.Session.TTL); err != nil {
		return err
	}
	return dur("SEARCH_DEBOUNCE", &cfg.Search.Debounce)
}

// splitList はカンマ区切りの値を空要素を除いて分割します
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate は必須項目と値の範囲を確認します
func (c Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.Content.BaseURL == "" {
		errs = append(errs, errors.New("content base url is required (CONTENT_BASE_URL)"))
	} else if u, err := url.Parse(c.Content.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("content base url %q is not an absolute url", c.Content.BaseURL))
	}
	if c.Content.BooksTypeID == "" {
		errs = append(errs, errors.New("books content type id is required (BOOKS_CONTENT_TYPE_ID)"))
	}
	if c.Content.OrdersTypeID == "" {
		errs = append(errs, errors.New("orders content type id is required (ORDERS_CONTENT_TYPE_ID)"))
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("allowed origin %q is not an absolute url", origin))
		}
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Search.Debounce <= 0 {
		errs = append(errs, errors.New("search debounce must be positive"))
	}
	switch c.Telemetry.Exporter {
	case "none", "stdout":
	case "otlp":
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, errors.New("otlp exporter requires OTEL_EXPORTER_OTLP_ENDPOINT"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown telemetry exporter %q", c.Telemetry.Exporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr はリッスンするアドレスを返します
func (c Config) Addr() string {
	return ":" + c.Port
}
