package bootstrap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 32, cfg.CanvasGridSize)
	assert.Equal(t, 20, cfg.CanvasPixelSize)
	assert.Equal(t, 128, cfg.CanvasMaxGridSize)
	assert.Equal(t, time.Hour, cfg.PreviewTTL)
	assert.Equal(t, "pc:", cfg.KeyPrefix)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANVAS_GRID_SIZE", "16")
	t.Setenv("CANVAS_PIXEL_SIZE", "12")
	t.Setenv("PREVIEW_TTL_SECONDS", "60")
	t.Setenv("LOG_LEVEL", "loud")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.CanvasGridSize)
	assert.Equal(t, 12, cfg.CanvasPixelSize)
	assert.Equal(t, time.Minute, cfg.PreviewTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing redis":      {"REDIS_ADDR": ""},
		"missing secret":     {"JWT_SECRET": ""},
		"bad int":            {"CANVAS_GRID_SIZE": "big"},
		"grid over max":      {"CANVAS_GRID_SIZE": "200"},
		"bad driver":         {"DB_DRIVER": "oracle"},
		"mysql without user": {"DB_DRIVER": "mysql", "DB_USER": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
