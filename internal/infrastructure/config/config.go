package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Auth     AuthConfig
	Store    StoreConfig
	Mongo    MongoConfig
	MySQL    MySQLConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Activity ActivityConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	JWTAlgorithm string        `env:"JWT_ALGORITHM, default=HS256"`
	TokenTTL     time.Duration `env:"TOKEN_TTL, default=1h"`
	BcryptCost   int           `env:"BCRYPT_COST, default=12"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sqlite"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=mechshop"`
}

type MySQLConfig struct {
	DSN string `env:"MYSQL_DSN, default=root:root@tcp(localhost:3306)/mechshop"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=mechshop.db"`
}

// RedisConfig is optional: with neither REDIS_URL nor REDIS_ADDR set the
// ranking cache is disabled.
type RedisConfig struct {
	URL             string        `env:"REDIS_URL"`
	Addr            string        `env:"REDIS_ADDR"`
	Password        string        `env:"REDIS_PASSWORD"`
	DB              int           `env:"REDIS_DB, default=0"`
	RankingCacheTTL time.Duration `env:"RANKING_CACHE_TTL, default=5m"`
}

func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Addr != ""
}

// ActivityConfig controls ticket activity delivery. Without AMQP_URL events
// are written to the log.
type ActivityConfig struct {
	AMQPURL  string `env:"AMQP_URL"`
	Exchange string `env:"ACTIVITY_EXCHANGE, default=mechshop.tickets"`
	Workers  int    `env:"ACTIVITY_WORKERS,  default=4"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env values.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch strings.ToUpper(c.Auth.JWTAlgorithm) {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Auth.JWTAlgorithm)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
