package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/hogwarts-heroes/internal/conf"
)

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(&conf.Settings{
		Debug:     true,
		WebServer: conf.WebServerSettings{Port: "9090"},
	})
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":9090", cfg.Address())
	assert.True(t, cfg.Debug)

	cfg = ConfigFromSettings(&conf.Settings{})
	assert.Equal(t, "8080", cfg.Port)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WriteTimeout = -1
	assert.Error(t, cfg.Validate())
}
