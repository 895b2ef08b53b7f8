package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	VCS       VCSConfig       `mapstructure:"vcs"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Poller    PollerConfig    `mapstructure:"poller"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// DatabaseConfig selects the job store backing. Driver "memory" keeps
// records in-process; "sqlite" and "postgres" persist them through GORM.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	default:
		return c.Path
	}
}

type WorkspaceConfig struct {
	Root string `mapstructure:"root"`
}

type VCSConfig struct {
	GitBinary    string        `mapstructure:"git_binary"`
	CloneTimeout time.Duration `mapstructure:"clone_timeout"`
	CloneDepth   int           `mapstructure:"clone_depth"`
}

type GeneratorConfig struct {
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ArtifactsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// PollerConfig holds client-side polling defaults used by cmd/submit. The
// failsafe is a wall-clock budget independent of the attempt budget.
type PollerConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Failsafe       time.Duration `mapstructure:"failsafe"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.path", "./data/repodoc.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("workspace.root", "")
	v.SetDefault("vcs.git_binary", "git")
	v.SetDefault("vcs.clone_timeout", "60s")
	v.SetDefault("vcs.clone_depth", 1)
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.base_url", "https://api.openai.com/v1")
	v.SetDefault("generator.max_tokens", 4096)
	v.SetDefault("generator.timeout", "120s")
	v.SetDefault("artifacts.enabled", false)
	v.SetDefault("artifacts.endpoint", "localhost:9000")
	v.SetDefault("artifacts.use_ssl", false)
	v.SetDefault("artifacts.bucket", "repodoc")
	v.SetDefault("poller.interval", "2s")
	v.SetDefault("poller.max_attempts", 150)
	v.SetDefault("poller.request_timeout", "5s")
	v.SetDefault("poller.failsafe", "10m")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("generator.api_key", "OPENAI_API_KEY")
	v.BindEnv("generator.base_url", "OPENAI_BASE_URL")
	v.BindEnv("generator.model", "GENERATOR_MODEL")
	v.BindEnv("artifacts.endpoint", "ARTIFACTS_ENDPOINT")
	v.BindEnv("artifacts.access_key", "ARTIFACTS_ACCESS_KEY")
	v.BindEnv("artifacts.secret_key", "ARTIFACTS_SECRET_KEY")
	v.BindEnv("artifacts.use_ssl", "ARTIFACTS_USE_SSL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
