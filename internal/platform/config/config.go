package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	LogLevel        string        `toml:"log_level"`
	DevMode         bool          `toml:"dev_mode"`
}

// Registry holds the policy switches of the rights registry.
type Registry struct {
	// Administrator is the single identity allowed to create content and run
	// forced and batch transfers.
	Administrator string `toml:"administrator"`
	// ContractRecipients enables the contract-recipient transfer rule.
	ContractRecipients bool `toml:"contract_recipients"`
	// ContractIdentities lists identities treated as contract-controlled.
	ContractIdentities []string `toml:"contract_identities"`
	TxTimeout          time.Duration `toml:"tx_timeout"`
}

// Database configures the PostgreSQL backend. An empty URL selects the
// in-memory store.
type Database struct {
	URL             string        `toml:"url"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

// RedisConfig configures the shared content cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `toml:"url"`
	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Kafka configures the outbox relay. Empty brokers disable the relay.
type Kafka struct {
	Brokers      []string      `toml:"brokers"`
	Topic        string        `toml:"topic"`
	Partitions   int32         `toml:"partitions"`
	Replication  int16         `toml:"replication"`
	PollInterval time.Duration `toml:"poll_interval"`
	BatchSize    int           `toml:"batch_size"`
}

// Auth configures bearer token validation.
type Auth struct {
	JWTSigningKey string        `toml:"jwt_signing_key"`
	Issuer        string        `toml:"issuer"`
	TokenTTL      time.Duration `toml:"token_ttl"`
}

// Cache sizes the in-process content cache.
type Cache struct {
	Size int           `toml:"size"`
	TTL  time.Duration `toml:"ttl"`
}

// Config is the full service configuration.
type Config struct {
	Server   Server      `toml:"server"`
	Registry Registry    `toml:"registry"`
	Database Database    `toml:"database"`
	Redis    RedisConfig `toml:"redis"`
	Kafka    Kafka       `toml:"kafka"`
	Auth     Auth        `toml:"auth"`
	Cache    Cache       `toml:"cache"`
}

const devSigningKey = "dev-secret-key-change-in-production"

// Default returns a configuration suitable for local development.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			LogLevel:        "info",
		},
		Registry: Registry{
			TxTimeout: 5 * time.Second,
		},
		Database: Database{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Topic:        "keepsake.registry.events",
			Partitions:   3,
			Replication:  1,
			PollInterval: time.Second,
			BatchSize:    100,
		},
		Auth: Auth{
			Issuer:   "keepsake",
			TokenTTL: time.Hour,
		},
		Cache: Cache{
			Size: 1024,
			TTL:  5 * time.Minute,
		},
	}
}

// Load builds the configuration in three layers: defaults, an optional TOML
// file, then KEEPSAKE_* environment overrides. A .env file in the working
// directory is loaded first when present; it never overrides variables that
// are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	setString(lookup, "KEEPSAKE_ADDR", &c.Server.Addr)
	setString(lookup, "KEEPSAKE_LOG_LEVEL", &c.Server.LogLevel)
	setString(lookup, "KEEPSAKE_ADMINISTRATOR", &c.Registry.Administrator)
	setString(lookup, "KEEPSAKE_DATABASE_URL", &c.Database.URL)
	setString(lookup, "KEEPSAKE_REDIS_URL", &c.Redis.URL)
	setString(lookup, "KEEPSAKE_KAFKA_TOPIC", &c.Kafka.Topic)
	setString(lookup, "KEEPSAKE_JWT_SIGNING_KEY", &c.Auth.JWTSigningKey)

	if v, ok := lookup("KEEPSAKE_KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("KEEPSAKE_CONTRACT_IDENTITIES"); ok {
		c.Registry.ContractIdentities = splitList(v)
	}
	for key, dst := range map[string]*bool{
		"KEEPSAKE_DEV_MODE":            &c.Server.DevMode,
		"KEEPSAKE_CONTRACT_RECIPIENTS": &c.Registry.ContractRecipients,
	} {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Registry.Administrator) == "" {
		return errors.New("registry.administrator is required")
	}
	if c.Auth.JWTSigningKey == "" {
		if !c.Server.DevMode {
			return errors.New("auth.jwt_signing_key is required outside dev mode")
		}
		c.Auth.JWTSigningKey = devSigningKey
	}
	if c.Cache.Size <= 0 {
		return errors.New("cache.size must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Database.URL == "" {
		return errors.New("kafka relay requires database.url")
	}
	return nil
}

func setString(lookup lookupFunc, key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
