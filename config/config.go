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
)

type Config struct {
	Port    string
	GinMode string

	DBDriver    string // sqlite, mysql or postgres
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	CORSOrigins        []string
	RateLimitPerMinute int

	// ReservationWindow is how long a booking holds its table.
	ReservationWindow       time.Duration
	StrictStatusTransitions bool
	// AutoCompleteInterval is how often finished confirmed bookings are
	// completed. Zero disables the sweeper.
	AutoCompleteInterval time.Duration

	RedisURL string

	// Admin* describe the account created on first start. An empty
	// password skips it.
	AdminName     string
	AdminPassword string
	AdminEmail    string
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:        envDefault("PORT", "8080"),
		GinMode:     envDefault("GIN_MODE", "debug"),
		DBDriver:    strings.ToLower(envDefault("DB_DRIVER", "sqlite")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		LogLevel:    envDefault("LOG_LEVEL", "info"),
		LogFormat:   envDefault("LOG_FORMAT", "text"),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),

		AdminName:     envDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    envDefault("ADMIN_EMAIL", "admin@example.com"),
	}

	var err error
	if cfg.JWTTTL, err = envDuration("JWT_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.AutoCompleteInterval, err = envDuration("AUTO_COMPLETE_INTERVAL", 15*time.Minute); err != nil {
		return cfg, err
	}
	minutes, err := envInt("RESERVATION_WINDOW_MINUTES", 120)
	if err != nil {
		return cfg, err
	}
	if minutes <= 0 {
		return cfg, fmt.Errorf("RESERVATION_WINDOW_MINUTES must be positive (got %d)", minutes)
	}
	cfg.ReservationWindow = time.Duration(minutes) * time.Minute

	if cfg.RateLimitPerMinute, err = envInt("RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return cfg, err
	}
	if cfg.StrictStatusTransitions, err = envBool("STRICT_STATUS_TRANSITIONS", false); err != nil {
		return cfg, err
	}

	for _, o := range strings.Split(envDefault("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "reservations.db?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1"
		}
	case "mysql", "postgres":
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("DATABASE_URL is required for %s", cfg.DBDriver)
		}
	default:
		return cfg, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return cfg, fmt.Errorf("JWT_SECRET is required in release mode")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func envInt(k string, d int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", k, err)
	}
	return n, nil
}

func envBool(k string, d bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", k, err)
	}
	return b, nil
}

func envDuration(k string, d time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 15m: %w", k, err)
	}
	return dur, nil
}
