package registry_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notInFlight(string) bool { return false }

func erasedIds(reqs []registry.EraseRequest) []string {
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.DeviceId)
	}
	return ids
}

func TestDevicesToEraseLimitsPerDeviceName(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SecureEraseMaxPerDeviceName[model.PoolKindDefault] = 1
	cfg.SecureEraseRetryBackoff = 10 * time.Second
	s, _ := newTestState(t, cfg)

	nvme := func(id, rack string) registry.DeviceConfig {
		d := device(id, rack)
		d.DeviceName = "/dev/nvme0n1"
		return d
	}
	_, err := s.RegisterAgent(ctx, t0, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Endpoint: "h1:9766", Devices: []registry.DeviceConfig{nvme("a1-1", "rack-1")}})
	require.NoError(t, err)
	_, err = s.RegisterAgent(ctx, t0.Add(time.Second), registry.AgentConfig{AgentId: "agent-2", NodeId: 2, Endpoint: "h2:9766", Devices: []registry.DeviceConfig{nvme("a2-1", "rack-2")}})
	require.NoError(t, err)

	reqs := s.DevicesToErase(t0.Add(time.Second), notInFlight, 10)
	require.Len(t, reqs, 1)
	assert.Equal(t, registry.EraseRequest{DeviceId: "a1-1", DeviceName: "/dev/nvme0n1", AgentId: "agent-1", Endpoint: "h1:9766"}, reqs[0])

	// 同名设备擦除中时不再调度
	busy := func(id string) bool { return id == "a1-1" }
	assert.Empty(t, s.DevicesToErase(t0.Add(time.Second), busy, 10))

	require.NoError(t, s.MarkEraseFailed(ctx, t0.Add(time.Second), []string{"a1-1"}))
	assert.Equal(t, []string{"a2-1"}, erasedIds(s.DevicesToErase(t0.Add(2*time.Second), notInFlight, 10)))

	require.NoError(t, s.MarkDevicesErased(ctx, t0.Add(2*time.Second), []string{"a2-1"}))
	assert.False(t, s.IsDirty("a2-1"))
	assert.Empty(t, s.DevicesToErase(t0.Add(5*time.Second), notInFlight, 10))
	assert.Equal(t, []string{"a1-1"}, erasedIds(s.DevicesToErase(t0.Add(11*time.Second), notInFlight, 10)))

	dirty := s.DirtyDevices()
	require.Len(t, dirty, 1)
	assert.Equal(t, uint32(1), dirty[0].Attempt)
}

func TestDevicesToEraseSkipsUnreachableDevices(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, backoffConfig())
	_, err := s.RegisterAgent(ctx, t0, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 2)})
	require.NoError(t, err)
	_, err = s.RegisterAgent(ctx, t0, registry.AgentConfig{AgentId: "agent-2", NodeId: 2, Devices: rackDevices("a2", "rack-2", 1)})
	require.NoError(t, err)

	require.NoError(t, s.ChangeDeviceState(ctx, t0, "a1-2", model.DeviceStateError, "smart"))
	require.NoError(t, s.AgentDisconnected(ctx, t0, "agent-2", 2))

	assert.Equal(t, []string{"a1-1"}, erasedIds(s.DevicesToErase(t0, notInFlight, 10)))
	assert.Empty(t, s.DevicesToErase(t0, notInFlight, 0))
}

func TestDevicesToEraseLimitsPerPoolKind(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SecureEraseMaxPerDeviceName[model.PoolKindDefault] = 1
	cfg.SecureEraseMaxPerDeviceName[model.PoolKindLocal] = 2
	s, _ := newTestState(t, cfg)

	named := func(id, rack string, kind model.PoolKind) registry.DeviceConfig {
		d := device(id, rack)
		d.DeviceName = "/dev/nvme0n1"
		d.PoolKind = kind
		return d
	}
	for i, kind := range []model.PoolKind{model.PoolKindDefault, model.PoolKindDefault, model.PoolKindLocal, model.PoolKindLocal, model.PoolKindLocal} {
		agentId := fmt.Sprintf("agent-%d", i+1)
		_, err := s.RegisterAgent(ctx, t0, registry.AgentConfig{
			AgentId:  agentId,
			NodeId:   uint32(i + 1),
			Endpoint: agentId + ":9766",
			Devices:  []registry.DeviceConfig{named(fmt.Sprintf("d%d", i+1), "rack-1", kind)},
		})
		require.NoError(t, err)
	}

	// default 池同名设备只调度一个，local 池可以调度两个
	assert.Equal(t, []string{"d1", "d3", "d4"}, erasedIds(s.DevicesToErase(t0, notInFlight, 10)))
}

func TestDevicesToEraseSkipsSuspendedDevices(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, testConfig())
	_, err := s.RegisterAgent(ctx, t0, registry.AgentConfig{AgentId: "agent-1", NodeId: 1, Devices: rackDevices("a1", "rack-1", 2)})
	require.NoError(t, err)

	require.NoError(t, s.SuspendDevice(ctx, t0, "a1-1"))
	assert.Equal(t, []string{"a1-2"}, erasedIds(s.DevicesToErase(t0, notInFlight, 10)))
	assert.True(t, s.IsDirty("a1-1"))

	require.NoError(t, s.ResumeDevice(ctx, t0, "a1-1"))
	assert.Equal(t, []string{"a1-1", "a1-2"}, erasedIds(s.DevicesToErase(t0, notInFlight, 10)))
}
