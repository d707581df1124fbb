package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Redis         RedisConfig        `mapstructure:"redis"`
	JWT           JWTConfig          `mapstructure:"jwt"`
	Pricing       PricingConfig      `mapstructure:"pricing"`
	Deposit       DepositConfig      `mapstructure:"deposit"`
	Collaborators CollaboratorConfig `mapstructure:"collaborators"`
	Events        EventsConfig       `mapstructure:"events"`
	RateLimit     RateLimitConfig    `mapstructure:"rate_limit"`
	Log           LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

// PricingConfig controls fee and rate handling.
type PricingConfig struct {
	PlatformFeeRate  string        `mapstructure:"platform_fee_rate"` // decimal string, e.g. "0.015"
	NetworkFee       string        `mapstructure:"network_fee"`       // flat fiat fee per trade
	RateCacheTTL     time.Duration `mapstructure:"rate_cache_ttl"`
	RateMaxStaleness time.Duration `mapstructure:"rate_max_staleness"`
}

// DepositConfig controls deposit claim acceptance and crediting.
type DepositConfig struct {
	MinAmount             string `mapstructure:"min_amount"` // stablecoin units
	ConfirmationThreshold int64  `mapstructure:"confirmation_threshold"`
}

// CollaboratorConfig holds base URLs and the shared call timeout for the
// external rate oracle, chain indexer and bank gateway.
type CollaboratorConfig struct {
	RateOracleURL  string        `mapstructure:"rate_oracle_url"`
	ChainOracleURL string        `mapstructure:"chain_oracle_url"`
	BankGatewayURL string        `mapstructure:"bank_gateway_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// EventsConfig holds outbound event delivery settings. An empty sink URL
// disables delivery.
type EventsConfig struct {
	SinkURL    string `mapstructure:"sink_url"`
	SigningKey string `mapstructure:"signing_key"`
}

type RateLimitConfig struct {
	Requests int64         `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: SCE_ (StableCoin Exchange).
// Nested keys use underscore: SCE_DATABASE_HOST, SCE_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "stablecoin_exchange")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "stablecoin-exchange")
	v.SetDefault("pricing.platform_fee_rate", "0.015")
	v.SetDefault("pricing.network_fee", "25.00")
	v.SetDefault("pricing.rate_cache_ttl", "30s")
	v.SetDefault("pricing.rate_max_staleness", "5m")
	v.SetDefault("deposit.min_amount", "10")
	v.SetDefault("deposit.confirmation_threshold", 20)
	v.SetDefault("collaborators.rate_oracle_url", "http://localhost:9101")
	v.SetDefault("collaborators.chain_oracle_url", "http://localhost:9102")
	v.SetDefault("collaborators.bank_gateway_url", "http://localhost:9103")
	v.SetDefault("collaborators.timeout", "5s")
	v.SetDefault("events.sink_url", "")
	v.SetDefault("events.signing_key", "")
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: SCE_DATABASE_HOST -> database.host
	v.SetEnvPrefix("SCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
