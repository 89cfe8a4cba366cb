package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	AI          AIConfig        `mapstructure:"ai"`
	Queue       QueueConfig     `mapstructure:"queue"`
	Corpus      CorpusConfig    `mapstructure:"corpus"`
	Dataset     DatasetConfig   `mapstructure:"dataset"`
	Cache       CacheConfig     `mapstructure:"cache"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// AIConfig 生成服務設定
type AIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	Timeout         time.Duration `mapstructure:"timeout"`
	SuggestionCount int           `mapstructure:"suggestion_count"`
}

// placeholderKeys 常見的範例金鑰
var placeholderKeys = []string{"your-", "your_", "changeme", "replace", "xxx", "sk-..."}

// Configured 是否有可用的 API 金鑰
func (c AIConfig) Configured() bool {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	for _, p := range placeholderKeys {
		if strings.HasPrefix(lower, p) || lower == strings.TrimSuffix(p, "-") {
			return false
		}
	}
	return true
}

// QueueConfig 生成請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// CorpusConfig 參考文件設定
type CorpusConfig struct {
	DocumentPath string   `mapstructure:"document_path"`
	Extractor    string   `mapstructure:"extractor"`
	Command      string   `mapstructure:"command"`
	CommandArgs  []string `mapstructure:"command_args"`
	CacheEnabled bool     `mapstructure:"cache_enabled"`
}

// DatasetConfig 菜色資料集設定
type DatasetConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// MetricsConfig 指標設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只使用環境變數與預設值
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 空白分隔的命令參數
	if len(config.Corpus.CommandArgs) == 1 {
		config.Corpus.CommandArgs = strings.Fields(config.Corpus.CommandArgs[0])
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("ai.api_key", "AI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("ai.base_url", "AI_BASE_URL")
	_ = v.BindEnv("ai.model", "AI_MODEL")
	_ = v.BindEnv("ai.max_tokens", "MODEL_MAX_TOKENS")
	_ = v.BindEnv("ai.timeout", "AI_TIMEOUT")
	_ = v.BindEnv("corpus.document_path", "CORPUS_PATH")
	_ = v.BindEnv("corpus.extractor", "CORPUS_EXTRACTOR")
	_ = v.BindEnv("corpus.command", "CORPUS_COMMAND")
	_ = v.BindEnv("dataset.path", "DATASET_PATH")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("metrics.enabled", "METRICS_ENABLED")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-suggester")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "40s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// 生成服務設定
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.connect_timeout", "10s")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.suggestion_count", 5)

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 100)

	// 參考文件
	v.SetDefault("corpus.document_path", "data/filipino_dishes.pdf")
	v.SetDefault("corpus.extractor", "auto")
	v.SetDefault("corpus.command", "pdftotext")
	v.SetDefault("corpus.command_args", []string{"-layout", "{path}", "-"})
	v.SetDefault("corpus.cache_enabled", true)

	v.SetDefault("dataset.path", "data/filipino_dishes.csv")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	// 連線逾時不得超過總逾時
	if config.AI.Timeout <= 0 || config.AI.ConnectTimeout <= 0 {
		return fmt.Errorf("invalid ai timeouts")
	}
	if config.AI.ConnectTimeout > config.AI.Timeout {
		return fmt.Errorf("ai connect timeout exceeds total timeout")
	}
	if config.AI.SuggestionCount <= 0 {
		return fmt.Errorf("invalid ai suggestion count")
	}

	switch config.Corpus.Extractor {
	case "auto", "text", "pdf", "command":
	default:
		return fmt.Errorf("unknown corpus extractor %q", config.Corpus.Extractor)
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory":
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	if config.Metrics.Enabled && !strings.HasPrefix(config.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with /")
	}

	return nil
}
