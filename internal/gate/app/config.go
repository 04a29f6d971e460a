package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
	"github.com/aussiebroadwan/invitegate/pkg/jwtx"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 3001)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	StatsInterval       time.Duration // Gauge refresh interval (default: 1m)

	StoreDriver      string // sqlite or postgres (default: sqlite)
	DatabaseFile     string // SQLite database file (default: ./invitegate.db)
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// RedisURL selects redis for cache, rate limits and locks. Empty keeps
	// everything in process, which is only correct for a single instance.
	RedisURL string

	RPCURL          string        // JSON-RPC endpoint (default: https://rpc.ankr.com/eth)
	StakingContract string        // Required: staking contract address
	RPCTimeout      time.Duration // Per call timeout (default: 5s)
	RPCRate         float64       // Max calls per second (default: 10)

	RateLimitPoints int           // Attempts per identity per window (default: 5)
	RateLimitWindow time.Duration // Window length (default: 60s)
	LockTimeout     time.Duration // Max wait for a reservation lock (default: 10s)

	CreatorJWTSecret string // Optional: when set, creating invite codes needs a bearer token
	CreatorJWTIssuer string // Issuer for creator tokens (default: invitegate)

	CORSOrigins []string // Allowed origins (default: *)
}

// LoadConfig reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 3001),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		StatsInterval:       getEnvDurationOrDefault("STATS_INTERVAL", time.Minute),

		StoreDriver:      strings.ToLower(getEnvOrDefault("GATE_STORE_DRIVER", DriverSQLite)),
		DatabaseFile:     getEnvOrDefault("GATE_DATABASE_FILE", "invitegate.db"),
		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvIntOrDefault("POSTGRES_PORT", 5432),
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "postgres"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "invitegate"),
		PostgresSSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		RedisURL: os.Getenv("GATE_REDIS_URL"),

		RPCURL:          getEnvOrDefault("GATE_RPC_URL", "https://rpc.ankr.com/eth"),
		StakingContract: os.Getenv("GATE_STAKING_CONTRACT"),
		RPCTimeout:      getEnvDurationOrDefault("GATE_RPC_TIMEOUT", 5*time.Second),
		RPCRate:         getEnvFloatOrDefault("GATE_RPC_RPS", 10),

		RateLimitPoints: getEnvIntOrDefault("GATE_RATELIMIT_POINTS", 5),
		RateLimitWindow: getEnvDurationOrDefault("GATE_RATELIMIT_WINDOW", time.Minute),
		LockTimeout:     getEnvDurationOrDefault("GATE_LOCK_TTL", 10*time.Second),

		CreatorJWTSecret: os.Getenv("GATE_CREATOR_JWT_SECRET"),
		CreatorJWTIssuer: getEnvOrDefault("GATE_CREATOR_JWT_ISSUER", "invitegate"),

		CORSOrigins: splitList(getEnvOrDefault("GATE_CORS_ORIGINS", "*")),
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("GATE_STORE_DRIVER: unknown driver %q", c.StoreDriver))
	}
	if !cryptox.IsAddress(c.StakingContract) {
		errs = append(errs, errors.New("GATE_STAKING_CONTRACT: must be a 0x-prefixed address"))
	}
	if c.CreatorJWTSecret != "" && len(c.CreatorJWTSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("GATE_CREATOR_JWT_SECRET: must be at least %d bytes", jwtx.MinSecretLength))
	}
	if c.RateLimitPoints <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("GATE_RATELIMIT_POINTS and GATE_RATELIMIT_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
