package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Valkey    ValkeyConfig    `yaml:"valkey"`
	Line      LineConfig      `yaml:"line"`
	Backup    BackupConfig    `yaml:"backup"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig drives admin token issuing and validation.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// EmbeddingConfig contains provider settings and the retry budget.
// MaxRetries and RetryDelay are operationally tuned values carried over
// from production; keep them configurable rather than re-deriving them.
type EmbeddingConfig struct {
	TestMode       bool          `yaml:"testMode"`
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	Dimensions     int           `yaml:"dimensions"`
	MaxRetries     int           `yaml:"maxRetries"`
	RetryDelay     time.Duration `yaml:"retryDelay"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// TopicConfig declares one classifier topic. Exclusions are checked before
// keywords: a single exclusion hit vetoes the topic.
type TopicConfig struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Exclusions []string `yaml:"exclusions"`
}

// ChatConfig controls matching and response behavior.
type ChatConfig struct {
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	FallbackAnswer      string        `yaml:"fallbackAnswer"`
	TopRecommendations  int           `yaml:"topRecommendations"`
	RequestTimeout      time.Duration `yaml:"requestTimeout"`
	Topics              []TopicConfig `yaml:"topics"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for the trending cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LineConfig configures the staff notification client.
type LineConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

// BackupConfig configures S3-compatible archival of imported CSV files.
type BackupConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_TEST_MODE"); v != "" {
		cfg.Embedding.TestMode = parseBool(v)
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.MaxRetries = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_RETRY_DELAY"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Embedding.RetryDelay = parsed
		}
	}
	if v := os.Getenv("CHAT_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Chat.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("CHAT_FALLBACK_ANSWER"); v != "" {
		cfg.Chat.FallbackAnswer = v
	}
	if v := os.Getenv("CHAT_RECOMMENDATIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.TopRecommendations = parsed
		}
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("LINE_ENABLED"); v != "" {
		cfg.Line.Enabled = parseBool(v)
	}
	if v := os.Getenv("LINE_TOKEN"); v != "" {
		cfg.Line.Token = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("BACKUP_ENABLED"); v != "" {
		cfg.Backup.Enabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			// Must exceed chat.requestTimeout or the server cuts the
			// connection while the embedding retry budget is still running.
			WriteTimeout: 120 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/chat",
				},
			},
		},
		Auth: AuthConfig{
			Secret:          "dev-secret-change-me",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
		Embedding: EmbeddingConfig{
			Model:          "voyage-3",
			Dimensions:     1024,
			MaxRetries:     3,
			RetryDelay:     20 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Chat: ChatConfig{
			SimilarityThreshold: 0.6,
			FallbackAnswer:      "I'm sorry, I need to check that with our staff. Could you wait a moment, please?",
			TopRecommendations:  10,
			RequestTimeout:      90 * time.Second,
			Topics:              defaultTopics(),
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Line: LineConfig{
			Endpoint: "https://notify-api.line.me/api/notify",
		},
	}
}

// defaultTopics mirrors the operational keyword lists. Deployments override
// them in YAML; the exclusion list exists to keep allergy questions out of
// the restaurant topic.
func defaultTopics() []TopicConfig {
	return []TopicConfig{
		{
			Name: "restaurant",
			Keywords: []string{
				"restaurant", "dining", "lunch", "dinner", "cafe", "gourmet",
				"food", "meal", "eat", "delicious",
				"レストラン", "グルメ", "ランチ", "ディナー", "食事", "料理", "居酒屋",
			},
			Exclusions: []string{
				"allergy", "allergies", "allergic", "アレルギー",
			},
		},
		{
			Name: "tourism",
			Keywords: []string{
				"sightseeing", "tourist", "tourism", "attraction", "landmark",
				"visit", "travel", "explore",
				"観光", "名所", "旅行", "スポット",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth.refreshTokenTtl must be positive")
	}
	if !c.Embedding.TestMode && strings.TrimSpace(c.Embedding.Model) == "" {
		return errors.New("embedding.model cannot be empty")
	}
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding.dimensions must be positive")
	}
	if c.Embedding.MaxRetries < 0 {
		return errors.New("embedding.maxRetries cannot be negative")
	}
	if c.Embedding.RetryDelay < 0 {
		return errors.New("embedding.retryDelay cannot be negative")
	}
	if c.Chat.SimilarityThreshold < 0 || c.Chat.SimilarityThreshold > 1 {
		return errors.New("chat.similarityThreshold must be within [0,1]")
	}
	if strings.TrimSpace(c.Chat.FallbackAnswer) == "" {
		return errors.New("chat.fallbackAnswer cannot be empty")
	}
	if c.Chat.TopRecommendations < 0 {
		return errors.New("chat.topRecommendations cannot be negative")
	}
	if c.HTTP.WriteTimeout > 0 && c.Chat.RequestTimeout >= c.HTTP.WriteTimeout {
		return errors.New("chat.requestTimeout must be below http.writeTimeout")
	}
	for _, topic := range c.Chat.Topics {
		if strings.TrimSpace(topic.Name) == "" {
			return errors.New("chat.topics entries need a name")
		}
		if len(topic.Keywords) == 0 {
			return fmt.Errorf("chat.topics[%s] needs at least one keyword", topic.Name)
		}
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Line.Enabled && strings.TrimSpace(c.Line.Endpoint) == "" {
		return errors.New("line.endpoint cannot be empty when line notify is enabled")
	}
	if c.Backup.Enabled {
		if strings.TrimSpace(c.Backup.Endpoint) == "" {
			return errors.New("backup.endpoint cannot be empty when backup is enabled")
		}
		if strings.TrimSpace(c.Backup.Bucket) == "" {
			return errors.New("backup.bucket cannot be empty when backup is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
