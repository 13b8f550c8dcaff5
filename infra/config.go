package infra

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env  string `envconfig:"ENV" default:"dev"`
	Port string `envconfig:"PORT" default:"8080"`

	// DB_NAME が設定されていれば PostgreSQL、なければ SQLite
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DBName      string `envconfig:"DB_NAME"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"file::memory:?cache=shared"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	SecretKey   string        `envconfig:"SECRET_KEY" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	TokenIssuer string        `envconfig:"TOKEN_ISSUER" default:"sweetshop"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"sweetshop.events"`

	LowStockThreshold int `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`

	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}
	if c.SecretKey == "" {
		return c, fmt.Errorf("load config: SECRET_KEY must not be empty")
	}
	if c.LowStockThreshold < 0 {
		return c, fmt.Errorf("load config: LOW_STOCK_THRESHOLD must not be negative")
	}
	return c, nil
}
