package registry

import (
	"fmt"
	"time"

	"diskregistry/internal/model"

	"github.com/spf13/viper"
)

type ReplacementScope string

const (
	ReplacementScopeDisk     ReplacementScope = "disk"
	ReplacementScopeAgent    ReplacementScope = "agent"
	ReplacementScopeRegistry ReplacementScope = "registry"
)

const gib = uint64(1) << 30

// PoolConfig 介质类型对应的设备池
type PoolConfig struct {
	PoolName string
	PoolKind model.PoolKind
}

type Config struct {
	// 分配
	AllocationUnits          map[model.MediaKind]uint64 // 字节
	Pools                    map[model.MediaKind]PoolConfig
	SpreadReplicaDevices     bool
	MaxDisksInPlacementGroup int

	// agent 断连超时
	AgentMinTimeout            time.Duration
	AgentMaxTimeout            time.Duration
	AgentTimeoutGrowthFactor   float64
	DisconnectRecoveryInterval time.Duration

	// 安全擦除
	SecureEraseTimeout      time.Duration
	SecureEraseRetryBackoff time.Duration
	SecureEraseMaxInFlight  int
	// 同名设备的并发擦除数，按池类型分别限制，0 表示不限
	SecureEraseMaxPerDeviceName map[model.PoolKind]int

	// 故障设备与替换
	SwitchToReadOnlyTimeout     time.Duration
	AutomaticReplacement        bool
	MaxReplacementsPerHour      int // 0 表示不限
	ReplacementScope            ReplacementScope
	ReplacementWindow           time.Duration
	UnavailableAgentGracePeriod time.Duration
	MaxMigrationsPerDisk        int
	MaxMigrationsInProgress     int
	CmsHostRemovalTimeout       time.Duration

	NotificationTimeout         time.Duration
	NotificationRetryBackoff    time.Duration
	NotificationMaxRetryBackoff time.Duration
	VolumeDirectoryTimeout      time.Duration
	CommandQueueSize            int
}

func DefaultConfig() Config {
	return Config{
		AllocationUnits: map[model.MediaKind]uint64{
			model.MediaKindSSDNonReplicated: 93 * gib,
			model.MediaKindHDDNonReplicated: 93 * gib,
			model.MediaKindSSDMirror2:       93 * gib,
			model.MediaKindSSDMirror3:       93 * gib,
			model.MediaKindSSDLocal:         368 * gib,
		},
		Pools: map[model.MediaKind]PoolConfig{
			model.MediaKindSSDNonReplicated: {PoolName: "", PoolKind: model.PoolKindDefault},
			model.MediaKindHDDNonReplicated: {PoolName: "rot", PoolKind: model.PoolKindGlobal},
			model.MediaKindSSDMirror2:       {PoolName: "", PoolKind: model.PoolKindDefault},
			model.MediaKindSSDMirror3:       {PoolName: "", PoolKind: model.PoolKindDefault},
			model.MediaKindSSDLocal:         {PoolName: "local", PoolKind: model.PoolKindLocal},
		},
		MaxDisksInPlacementGroup:   5,
		AgentMinTimeout:            30 * time.Second,
		AgentMaxTimeout:            5 * time.Minute,
		AgentTimeoutGrowthFactor:   2,
		DisconnectRecoveryInterval: time.Minute,
		SecureEraseTimeout:         time.Minute,
		SecureEraseRetryBackoff:    10 * time.Second,
		SecureEraseMaxInFlight:     64,
		SecureEraseMaxPerDeviceName: map[model.PoolKind]int{
			model.PoolKindDefault: 1,
			model.PoolKindLocal:   1,
			model.PoolKindGlobal:  1,
		},
		SwitchToReadOnlyTimeout:     10 * time.Minute,
		AutomaticReplacement:        true,
		MaxReplacementsPerHour:      10,
		ReplacementScope:            ReplacementScopeDisk,
		ReplacementWindow:           time.Hour,
		UnavailableAgentGracePeriod: 5 * time.Minute,
		MaxMigrationsPerDisk:        1,
		MaxMigrationsInProgress:     16,
		CmsHostRemovalTimeout:       time.Hour,
		NotificationTimeout:         30 * time.Second,
		NotificationRetryBackoff:    time.Second,
		NotificationMaxRetryBackoff: time.Minute,
		VolumeDirectoryTimeout:      30 * time.Second,
		CommandQueueSize:            1024,
	}
}

func (s ReplacementScope) valid() bool {
	switch s {
	case ReplacementScopeDisk, ReplacementScopeAgent, ReplacementScopeRegistry:
		return true
	}
	return false
}

// NewConfig 从 registry.* 读取配置，未设置的项使用默认值
func NewConfig(conf *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	sub := conf.Sub("registry")
	if sub == nil {
		return cfg, nil
	}
	for kind := range cfg.AllocationUnits {
		if key := "allocation.unit_gib." + string(kind); sub.IsSet(key) {
			cfg.AllocationUnits[kind] = sub.GetUint64(key) * gib
		}
	}
	for kind, pool := range cfg.Pools {
		if key := "allocation.pools." + string(kind); sub.IsSet(key) {
			pool.PoolName = sub.GetString(key)
			cfg.Pools[kind] = pool
		}
	}
	setBool(sub, "allocation.spread_replica_devices", &cfg.SpreadReplicaDevices)
	setInt(sub, "placement_group.max_disks", &cfg.MaxDisksInPlacementGroup)

	setDuration(sub, "agent.min_timeout", &cfg.AgentMinTimeout)
	setDuration(sub, "agent.max_timeout", &cfg.AgentMaxTimeout)
	setDuration(sub, "agent.recovery_interval", &cfg.DisconnectRecoveryInterval)
	if sub.IsSet("agent.timeout_growth_factor") {
		cfg.AgentTimeoutGrowthFactor = sub.GetFloat64("agent.timeout_growth_factor")
	}

	setDuration(sub, "secure_erase.timeout", &cfg.SecureEraseTimeout)
	setDuration(sub, "secure_erase.retry_backoff", &cfg.SecureEraseRetryBackoff)
	setInt(sub, "secure_erase.max_in_flight", &cfg.SecureEraseMaxInFlight)
	for kind, limit := range cfg.SecureEraseMaxPerDeviceName {
		setInt(sub, "secure_erase.max_per_device_name."+string(kind), &limit)
		cfg.SecureEraseMaxPerDeviceName[kind] = limit
	}

	setDuration(sub, "io_mode.switch_to_read_only_timeout", &cfg.SwitchToReadOnlyTimeout)
	setBool(sub, "replacement.automatic", &cfg.AutomaticReplacement)
	setInt(sub, "replacement.max_per_hour", &cfg.MaxReplacementsPerHour)
	if sub.IsSet("replacement.scope") {
		cfg.ReplacementScope = ReplacementScope(sub.GetString("replacement.scope"))
		if !cfg.ReplacementScope.valid() {
			return cfg, fmt.Errorf("registry.replacement.scope: unknown scope %q", cfg.ReplacementScope)
		}
	}
	setDuration(sub, "replacement.window", &cfg.ReplacementWindow)
	setDuration(sub, "replacement.unavailable_grace_period", &cfg.UnavailableAgentGracePeriod)
	setInt(sub, "replacement.max_migrations_per_disk", &cfg.MaxMigrationsPerDisk)
	setInt(sub, "replacement.max_migrations_in_progress", &cfg.MaxMigrationsInProgress)
	setDuration(sub, "cms.host_removal_timeout", &cfg.CmsHostRemovalTimeout)

	setDuration(sub, "notification.timeout", &cfg.NotificationTimeout)
	setDuration(sub, "notification.retry_backoff", &cfg.NotificationRetryBackoff)
	setDuration(sub, "notification.max_retry_backoff", &cfg.NotificationMaxRetryBackoff)
	setDuration(sub, "volume_directory.timeout", &cfg.VolumeDirectoryTimeout)
	setInt(sub, "command_queue_size", &cfg.CommandQueueSize)
	return cfg, nil
}

func setDuration(conf *viper.Viper, key string, dst *time.Duration) {
	if conf.IsSet(key) {
		*dst = conf.GetDuration(key)
	}
}

func setInt(conf *viper.Viper, key string, dst *int) {
	if conf.IsSet(key) {
		*dst = conf.GetInt(key)
	}
}

func setBool(conf *viper.Viper, key string, dst *bool) {
	if conf.IsSet(key) {
		*dst = conf.GetBool(key)
	}
}
