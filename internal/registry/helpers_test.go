package registry_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"github.com/stretchr/testify/require"
)

const (
	gib       = uint64(1) << 30
	blockSize = 4096
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() registry.Config {
	cfg := registry.DefaultConfig()
	for kind := range cfg.AllocationUnits {
		cfg.AllocationUnits[kind] = 10 * gib
	}
	cfg.AutomaticReplacement = false
	return cfg
}

func newTestState(t *testing.T, cfg registry.Config) (*registry.State, *registry.MemoryStore) {
	t.Helper()
	store := registry.NewMemoryStore()
	return registry.NewState(cfg, log.NewNop(), store), store
}

// device 10GiB 的设备
func device(id, rack string) registry.DeviceConfig {
	return registry.DeviceConfig{
		DeviceId:    id,
		DeviceName:  "/dev/disk/by-id/" + id,
		BlockSize:   blockSize,
		BlocksCount: 10 * gib / blockSize,
		Rack:        rack,
	}
}

// rackDevices n 个位于同一机架的设备，id 形如 <prefix>-<i>
func rackDevices(prefix, rack string, n int) []registry.DeviceConfig {
	out := make([]registry.DeviceConfig, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, device(fmt.Sprintf("%s-%d", prefix, i), rack))
	}
	return out
}

// registerAgent 注册 agent 并直接完成新设备的擦除
func registerAgent(t *testing.T, s *registry.State, now time.Time, agentId string, nodeId uint32, devices ...registry.DeviceConfig) *model.Agent {
	t.Helper()
	agent, err := s.RegisterAgent(context.Background(), now, registry.AgentConfig{
		AgentId:   agentId,
		NodeId:    nodeId,
		SeqNumber: 1,
		Endpoint:  agentId + ":9766",
		Devices:   devices,
	})
	require.NoError(t, err)
	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.DeviceId)
	}
	require.NoError(t, s.MarkDevicesErased(context.Background(), now, ids))
	return agent
}

func allocate(t *testing.T, s *registry.State, now time.Time, diskId string, kind model.MediaKind, gibs uint64, groupId string) *model.Disk {
	t.Helper()
	disk, err := s.AllocateDisk(context.Background(), now, registry.AllocateRequest{
		DiskId:           diskId,
		BlockSize:        blockSize,
		BlocksCount:      gibs * gib / blockSize,
		MediaKind:        kind,
		PlacementGroupId: groupId,
	})
	require.NoError(t, err)
	return disk
}

func mustDisk(t *testing.T, s *registry.State, diskId string) *model.Disk {
	t.Helper()
	disk, ok := s.Disk(diskId)
	require.True(t, ok, "disk %s", diskId)
	return disk
}

func mustDevice(t *testing.T, s *registry.State, deviceId string) *model.Device {
	t.Helper()
	dev, err := s.FindDevice(deviceId)
	require.NoError(t, err)
	return dev
}

func mustAgent(t *testing.T, s *registry.State, agentId string) *model.Agent {
	t.Helper()
	agent, ok := s.Agent(agentId)
	require.True(t, ok, "agent %s", agentId)
	return agent
}
