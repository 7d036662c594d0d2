package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sahoo-ansu/I-MED/internal/recommend"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Completion CompletionConfig `mapstructure:"completion"`
	Recommend  RecommendConfig  `mapstructure:"recommend"`
	History    HistoryConfig    `mapstructure:"history"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
	// Seed loads the bundled catalog into Postgres at startup.
	Seed bool `mapstructure:"seed"`
}

type CompletionConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	Temperature    float64       `mapstructure:"temperature"`
	TopP           float64       `mapstructure:"top_p"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	PromptTemplate string        `mapstructure:"prompt_template"`
	Referer        string        `mapstructure:"referer"`
	Title          string        `mapstructure:"title"`
	// Timeout bounds one completion call. Zero leaves the HTTP client default.
	Timeout time.Duration `mapstructure:"timeout"`
}

type RecommendConfig struct {
	// Strategy is knowledge_base or generative. See recommend.ParseStrategy
	// for the accepted aliases.
	Strategy string `mapstructure:"strategy"`
	// KnowledgeSource is bundled or store.
	KnowledgeSource string `mapstructure:"knowledge_source"`
}

type HistoryConfig struct {
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type NotifyConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	TelegramToken string `mapstructure:"telegram_token"`
	ChatID        int64  `mapstructure:"chat_id"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}
	if u.Host == "" {
		return DatabaseConfig{}, fmt.Errorf("missing host in %q", u.Redacted())
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port %q: %w", u.Port(), err)
		}
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

// LoadConfig reads .env, then the optional YAML file at path, then the
// environment. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "imed")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)
	v.SetDefault("database.seed", true)
	v.SetDefault("completion.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("completion.model", "mistralai/mistral-7b-instruct:free")
	v.SetDefault("completion.temperature", 0.7)
	v.SetDefault("completion.top_p", 0.95)
	v.SetDefault("completion.max_tokens", 500)
	v.SetDefault("completion.referer", "http://localhost:3000")
	v.SetDefault("completion.title", "IMED")
	v.SetDefault("completion.timeout", 0)
	v.SetDefault("recommend.strategy", "knowledge_base")
	v.SetDefault("recommend.knowledge_source", "bundled")
	v.SetDefault("history.write_timeout", 5*time.Second)
	v.SetDefault("notify.enabled", false)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if port := v.GetString("PORT"); port != "" {
		config.Server.Port = port
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		dbConfig.Seed = config.Database.Seed
		config.Database = dbConfig
	}

	if apiKey := v.GetString("OPENROUTER_API_KEY"); apiKey != "" {
		config.Completion.APIKey = apiKey
	} else if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.Completion.APIKey = apiKey
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Notify.TelegramToken = token
	}
	if chatID := v.GetString("ALERT_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_CHAT_ID %q: %w", chatID, err)
		}
		config.Notify.ChatID = id
	}

	if strategy := v.GetString("RECOMMEND_STRATEGY"); strategy != "" {
		config.Recommend.Strategy = strategy
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the server cannot start with. Strategy aliases
// are rewritten to their canonical name.
func (c *Config) Validate() error {
	strategy, ok := recommend.ParseStrategy(c.Recommend.Strategy)
	if !ok {
		return fmt.Errorf("unknown recommend.strategy %q", c.Recommend.Strategy)
	}
	c.Recommend.Strategy = string(strategy)

	switch c.Recommend.KnowledgeSource {
	case "bundled", "store":
	default:
		return fmt.Errorf("unknown recommend.knowledge_source %q", c.Recommend.KnowledgeSource)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server.mode %q", c.Server.Mode)
	}

	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Completion.MaxTokens <= 0 {
		return fmt.Errorf("completion.max_tokens must be positive, got %d", c.Completion.MaxTokens)
	}
	if c.Notify.Enabled && (c.Notify.TelegramToken == "" || c.Notify.ChatID == 0) {
		return errors.New("notify.enabled requires TELEGRAM_TOKEN and ALERT_CHAT_ID")
	}
	return nil
}
