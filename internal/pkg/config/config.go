package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, driver selection, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	JWT    JWTConfig
	Assist AssistConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

// StoreConfig selects the document store driver. The memory driver keeps
// documents and live queries in-process; the postgres driver persists
// documents as JSONB and uses LISTEN/NOTIFY for the change feed.
type StoreConfig struct {
	Driver     string        `envconfig:"STORE_DRIVER" default:"memory"`
	OpTimeout  time.Duration `envconfig:"STORE_OP_TIMEOUT" default:"5s"`
	RetryDelay time.Duration `envconfig:"STORE_RETRY_DELAY" default:"200ms"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"homeserve"`
	Password string `envconfig:"DB_PASSWORD" default:"homeserve"`
	DBName   string `envconfig:"DB_NAME" default:"homeserve"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// JWTConfig holds verification settings for tokens issued by the external
// identity provider. This service never issues tokens itself.
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type AssistConfig struct {
	BaseURL string        `envconfig:"ASSIST_BASE_URL" default:"http://localhost:5000"`
	Timeout time.Duration `envconfig:"ASSIST_TIMEOUT" default:"15s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		Store: StoreConfig{
			Driver:     "memory",
			OpTimeout:  5 * time.Second,
			RetryDelay: time.Millisecond,
		},
		Log: LogConfig{
			Level: "error", // Error level only for tests
		},
		JWT: JWTConfig{
			Secret: "test-secret",
		},
	}
}
