package registry_test

import (
	"testing"
	"time"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := registry.NewConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultConfig(), cfg)
}

func TestNewConfigOverrides(t *testing.T) {
	conf := viper.New()
	conf.Set("registry.allocation.unit_gib.ssd_local", 100)
	conf.Set("registry.secure_erase.max_per_device_name.local", 4)
	conf.Set("registry.replacement.scope", "agent")
	conf.Set("registry.notification.retry_backoff", "2s")

	cfg, err := registry.NewConfig(conf)
	require.NoError(t, err)
	assert.Equal(t, 100*gib, cfg.AllocationUnits[model.MediaKindSSDLocal])
	assert.Equal(t, map[model.PoolKind]int{
		model.PoolKindDefault: 1,
		model.PoolKindLocal:   4,
		model.PoolKindGlobal:  1,
	}, cfg.SecureEraseMaxPerDeviceName)
	assert.Equal(t, registry.ReplacementScopeAgent, cfg.ReplacementScope)
	assert.Equal(t, 2*time.Second, cfg.NotificationRetryBackoff)
	assert.Equal(t, time.Minute, cfg.NotificationMaxRetryBackoff)
}

func TestNewConfigRejectsUnknownReplacementScope(t *testing.T) {
	conf := viper.New()
	conf.Set("registry.replacement.scope", "rack")

	_, err := registry.NewConfig(conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"rack"`)
}
