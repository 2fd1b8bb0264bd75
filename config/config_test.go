package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "JWT_SECRET", "GIN_MODE",
		"RESERVATION_WINDOW_MINUTES", "STRICT_STATUS_TRANSITIONS", "AUTO_COMPLETE_INTERVAL", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Contains(t, cfg.DatabaseURL, "_foreign_keys=1")
	assert.Equal(t, 2*time.Hour, cfg.ReservationWindow)
	assert.False(t, cfg.StrictStatusTransitions)
	assert.Equal(t, 15*time.Minute, cfg.AutoCompleteInterval)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://app@localhost/reservations")
	t.Setenv("RESERVATION_WINDOW_MINUTES", "90")
	t.Setenv("STRICT_STATUS_TRANSITIONS", "true")
	t.Setenv("AUTO_COMPLETE_INTERVAL", "0")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 90*time.Minute, cfg.ReservationWindow)
	assert.True(t, cfg.StrictStatusTransitions)
	assert.Zero(t, cfg.AutoCompleteInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"mysql without url", map[string]string{"DB_DRIVER": "mysql", "DATABASE_URL": ""}},
		{"zero window", map[string]string{"RESERVATION_WINDOW_MINUTES": "0"}},
		{"bad window", map[string]string{"RESERVATION_WINDOW_MINUTES": "two hours"}},
		{"bad bool", map[string]string{"STRICT_STATUS_TRANSITIONS": "maybe"}},
		{"release without secret", map[string]string{"GIN_MODE": "release", "JWT_SECRET": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
