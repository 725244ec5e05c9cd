package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/spec-kit/contest-provisioner/pkg/util"
)

// Config aggregates runtime configuration for the provisioner.
type Config struct {
	App      AppConfig
	Remote   RemoteConfig
	Batch    BatchConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Name string
	Env  string
}

// RemoteConfig points at the judge's admin API.
type RemoteConfig struct {
	BaseURL               string
	AdminUser             string
	AdminPassword         string
	ContestID             string
	RequestTimeoutSeconds int
}

// BatchConfig controls a single provisioning run.
type BatchConfig struct {
	CSVPath      string
	ResultPath   string
	ResultFormat string
	IPStrict     bool
	PacingMillis int
}

// PostgresConfig holds DB connection values for run history.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the batch lock.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	LockTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// AuthConfig defines hashing parameters for stored credentials.
type AuthConfig struct {
	BcryptCost int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "contest-provisioner"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Remote: RemoteConfig{
			BaseURL:               strings.TrimRight(os.Getenv("DOMJUDGE_BASE_URL"), "/"),
			AdminUser:             os.Getenv("DOMJUDGE_ADMIN_USER"),
			AdminPassword:         os.Getenv("DOMJUDGE_ADMIN_PASSWORD"),
			ContestID:             os.Getenv("DOMJUDGE_CONTEST_ID"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 20),
		},
		Batch: BatchConfig{
			CSVPath:      os.Getenv("PROVISION_CSV_PATH"),
			ResultPath:   getEnv("PROVISION_RESULT_PATH", "domjudge_provision_result.json"),
			ResultFormat: getEnv("PROVISION_RESULT_FORMAT", "json"),
			IPStrict:     getEnvAsBool("PROVISION_IP_STRICT", false),
			PacingMillis: getEnvAsInt("PROVISION_PACING_MS", 50),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:           os.Getenv("REDIS_ADDR"),
			Password:       os.Getenv("REDIS_PASSWORD"),
			DB:             redisDB,
			LockTTLSeconds: getEnvAsInt("REDIS_LOCK_TTL_SECONDS", 900),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Auth: AuthConfig{
			BcryptCost: getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
	}

	return cfg, nil
}

// Validate checks that everything needed to reach the judge is present.
func (r RemoteConfig) Validate() error {
	var missing []string
	if r.BaseURL == "" {
		missing = append(missing, "base URL")
	}
	if r.AdminUser == "" {
		missing = append(missing, "admin user")
	}
	if r.AdminPassword == "" {
		missing = append(missing, "admin password")
	}
	if r.ContestID == "" {
		missing = append(missing, "contest id")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("remote configuration incomplete", map[string]any{"missing": missing})
	}
	return nil
}

// RequestTimeout returns the per-call timeout for remote requests.
func (r RemoteConfig) RequestTimeout() time.Duration {
	if r.RequestTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(r.RequestTimeoutSeconds) * time.Second
}

// Pacing returns the delay applied between records.
func (b BatchConfig) Pacing() time.Duration {
	if b.PacingMillis <= 0 {
		return 0
	}
	return time.Duration(b.PacingMillis) * time.Millisecond
}

// LockTTL returns how long a batch lock is held before it expires on its own.
func (r RedisConfig) LockTTL() time.Duration {
	if r.LockTTLSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(r.LockTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
