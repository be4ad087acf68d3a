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

// mirroredSetup disk-1 镜像盘位于 agent-1 / agent-2，agent-3 / agent-4 提供备用设备
func mirroredSetup(t *testing.T, cfg registry.Config) *registry.State {
	t.Helper()
	s, _ := newTestState(t, cfg)
	for i, agentId := range []string{"agent-1", "agent-2", "agent-3", "agent-4"} {
		n := i + 1
		registerAgent(t, s, t0, agentId, uint32(n), device(fmt.Sprintf("a%d-1", n), fmt.Sprintf("rack-%d", n)))
	}
	disk := allocate(t, s, t0, "disk-1", model.MediaKindSSDMirror2, 10, "")
	require.Equal(t, []string{"a1-1"}, disk.Devices)
	require.Equal(t, [][]string{{"a2-1"}}, disk.Replicas)
	return s
}

func TestMaskedDeviceFailureKeepsDiskWritable(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.SwitchToReadOnlyTimeout = 10 * time.Minute
	s := mirroredSetup(t, cfg)

	require.NoError(t, s.ChangeDeviceState(ctx, t0, "a2-1", model.DeviceStateError, "smart"))
	disk := mustDisk(t, s, "disk-1")
	assert.Equal(t, model.DiskStateWarning, disk.State)
	assert.True(t, disk.MuteIoErrors)
	assert.Equal(t, model.DiskIoModeOk, disk.IoMode)

	require.NoError(t, s.Tick(ctx, t0.Add(10*time.Minute)))
	assert.Equal(t, model.DiskIoModeErrorReadOnly, mustDisk(t, s, "disk-1").IoMode)

	require.NoError(t, s.ChangeDeviceState(ctx, t0.Add(11*time.Minute), "a2-1", model.DeviceStateOnline, ""))
	disk = mustDisk(t, s, "disk-1")
	assert.Equal(t, model.DiskStateOnline, disk.State)
	assert.Equal(t, model.DiskIoModeOk, disk.IoMode)
	assert.False(t, disk.MuteIoErrors)
	assert.True(t, disk.BrokenTs.IsZero())
}

func TestUnavailableAgentMutesDisk(t *testing.T) {
	ctx := context.Background()
	cfg := backoffConfig()
	cfg.SwitchToReadOnlyTimeout = 5 * time.Minute
	s, _ := newTestState(t, cfg)
	registerAgent(t, s, t0, "agent-1", 1, device("a1-1", "rack-1"))
	allocate(t, s, t0, "disk-1", model.MediaKindSSDNonReplicated, 10, "")
	assert.Empty(t, s.ListDisksToNotify())

	require.NoError(t, s.AgentDisconnected(ctx, t0, "agent-1", 1))
	require.NoError(t, s.Tick(ctx, t0.Add(10*time.Second)))

	disk := mustDisk(t, s, "disk-1")
	assert.Equal(t, model.DiskStateTemporarilyUnavailable, disk.State)
	assert.True(t, disk.MuteIoErrors)
	assert.Equal(t, model.DiskIoModeOk, disk.IoMode)
	assert.Equal(t, []string{"disk-1"}, s.ListDisksToNotify())
	first := s.PendingNotifications()[0].SeqNo

	require.NoError(t, s.Tick(ctx, t0.Add(5*time.Minute+10*time.Second)))
	disk = mustDisk(t, s, "disk-1")
	assert.Equal(t, model.DiskIoModeErrorReadOnly, disk.IoMode)
	assert.Greater(t, s.PendingNotifications()[0].SeqNo, first)

	reconnect(t, s, t0.Add(6*time.Minute), "agent-1", 1, device("a1-1", "rack-1"))
	disk = mustDisk(t, s, "disk-1")
	assert.Equal(t, model.DiskStateOnline, disk.State)
	assert.Equal(t, model.DiskIoModeOk, disk.IoMode)
	assert.False(t, disk.MuteIoErrors)
}

func TestReplaceDevice(t *testing.T) {
	ctx := context.Background()
	s := mirroredSetup(t, testConfig())

	disk, err := s.ReplaceDevice(ctx, t0, "disk-1", "a2-1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a3-1"}}, disk.Replicas)
	assert.Equal(t, "disk-1", mustDevice(t, s, "a3-1").DiskId)
	assert.Empty(t, mustDevice(t, s, "a2-1").DiskId)
	assert.True(t, s.IsDirty("a2-1"))

	_, err = s.ReplaceDevice(ctx, t0, "disk-1", "a2-1")
	assert.ErrorIs(t, err, registry.ErrNotFound)
	_, err = s.ReplaceDevice(ctx, t0, "disk-x", "a1-1")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestReplaceDeviceRateLimit(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MaxReplacementsPerHour = 1
	cfg.ReplacementScope = registry.ReplacementScopeDisk
	cfg.ReplacementWindow = time.Hour
	s := mirroredSetup(t, cfg)

	_, err := s.ReplaceDevice(ctx, t0, "disk-1", "a2-1")
	require.NoError(t, err)
	before := mustDisk(t, s, "disk-1")
	_, err = s.ReplaceDevice(ctx, t0.Add(time.Minute), "disk-1", "a3-1")
	assert.ErrorIs(t, err, registry.ErrRateLimited)

	// 被限流时布局和设备归属都不变
	after := mustDisk(t, s, "disk-1")
	assert.Equal(t, before.Devices, after.Devices)
	assert.Equal(t, before.Replicas, after.Replicas)
	assert.Equal(t, [][]string{{"a3-1"}}, after.Replicas)
	assert.Equal(t, "disk-1", mustDevice(t, s, "a3-1").DiskId)
	assert.Empty(t, mustDevice(t, s, "a4-1").DiskId)
	assert.False(t, s.IsDirty("a3-1"))

	// 窗口过期后允许再次替换
	require.NoError(t, s.Tick(ctx, t0.Add(time.Hour)))
	_, err = s.ReplaceDevice(ctx, t0.Add(time.Hour), "disk-1", "a3-1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a4-1"}}, mustDisk(t, s, "disk-1").Replicas)
}

func TestUnlimitedReplacements(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.MaxReplacementsPerHour = 0
	s := mirroredSetup(t, cfg)

	_, err := s.ReplaceDevice(ctx, t0, "disk-1", "a2-1")
	require.NoError(t, err)
	_, err = s.ReplaceDevice(ctx, t0, "disk-1", "a3-1")
	require.NoError(t, err)
}

func TestAutomaticReplacement(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.AutomaticReplacement = true
	s := mirroredSetup(t, cfg)

	require.NoError(t, s.ChangeDeviceState(ctx, t0, "a2-1", model.DeviceStateError, "smart"))
	require.NoError(t, s.Tick(ctx, t0.Add(time.Second)))

	disk := mustDisk(t, s, "disk-1")
	assert.Equal(t, [][]string{{"a3-1"}}, disk.Replicas)
	assert.Equal(t, model.DiskStateOnline, disk.State)
	assert.False(t, disk.MuteIoErrors)
	assert.True(t, s.IsDirty("a2-1"))
}

func TestAutomaticReplacementSkipsUnmaskedDevices(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.AutomaticReplacement = true
	s, _ := newTestState(t, cfg)
	registerAgent(t, s, t0, "agent-1", 1, rackDevices("a1", "rack-1", 2)...)
	allocate(t, s, t0, "disk-1", model.MediaKindSSDNonReplicated, 10, "")

	require.NoError(t, s.ChangeDeviceState(ctx, t0, "a1-1", model.DeviceStateError, "smart"))
	require.NoError(t, s.Tick(ctx, t0.Add(time.Second)))
	assert.Equal(t, []string{"a1-1"}, mustDisk(t, s, "disk-1").Devices)
}

func TestFinishMigration(t *testing.T) {
	ctx := context.Background()
	s := mirroredSetup(t, testConfig())

	require.NoError(t, s.ChangeDeviceState(ctx, t0, "a2-1", model.DeviceStateWarning, "maintenance"))
	disk := mustDisk(t, s, "disk-1")
	require.Equal(t, []model.DeviceMigration{{SourceDeviceId: "a2-1", TargetDeviceId: "a3-1"}}, disk.Migrations)

	assert.ErrorIs(t, s.FinishMigration(ctx, t0, "disk-1", "a2-1", "a4-1"), registry.ErrNotFound)

	require.NoError(t, s.FinishMigration(ctx, t0, "disk-1", "a2-1", "a3-1"))
	disk = mustDisk(t, s, "disk-1")
	assert.Empty(t, disk.Migrations)
	assert.Equal(t, [][]string{{"a3-1"}}, disk.Replicas)
	assert.Equal(t, model.DiskStateOnline, disk.State)
	assert.True(t, s.IsDirty("a2-1"))
	assert.Empty(t, mustDevice(t, s, "a2-1").DiskId)
}
