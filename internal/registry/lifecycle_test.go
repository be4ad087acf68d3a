package registry_test

import (
	"context"
	"testing"

	"diskregistry/internal/model"
	"diskregistry/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseDisksOnlyRemovesMarkedDisks(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, testConfig())
	registerAgent(t, s, t0, "agent-1", 1, rackDevices("a1", "rack-1", 2)...)
	require.NoError(t, s.CreatePlacementGroup(ctx, t0, "pg-1"))
	allocate(t, s, t0, "disk-1", model.MediaKindSSDNonReplicated, 10, "pg-1")
	allocate(t, s, t0, "disk-2", model.MediaKindSSDNonReplicated, 10, "")

	require.NoError(t, s.MarkDiskForCleanup(ctx, t0, "disk-1"))
	assert.ErrorIs(t, s.MarkDiskForCleanup(ctx, t0, "disk-x"), registry.ErrNotFound)
	assert.Equal(t, []string{"disk-1"}, s.DisksToCleanup())

	removed, err := s.ReleaseDisks(ctx, t0, []string{"disk-1", "disk-2", "disk-x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"disk-1"}, removed)

	_, ok := s.Disk("disk-1")
	assert.False(t, ok)
	_, ok = s.Disk("disk-2")
	assert.True(t, ok)
	assert.True(t, s.IsDirty("a1-1"))
	assert.Empty(t, mustDevice(t, s, "a1-1").DiskId)
	assert.Empty(t, s.ListPlacementGroups()[0].DiskIds)
}

func TestDeallocateDiskRequiresMarkOrForce(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, testConfig())
	registerAgent(t, s, t0, "agent-1", 1, rackDevices("a1", "rack-1", 2)...)
	allocate(t, s, t0, "disk-1", model.MediaKindSSDNonReplicated, 10, "")
	allocate(t, s, t0, "disk-2", model.MediaKindSSDNonReplicated, 10, "")

	assert.ErrorIs(t, s.DeallocateDisk(ctx, t0, "disk-1", false), registry.ErrInvalidArgument)
	require.NoError(t, s.DeallocateDisk(ctx, t0, "disk-1", true))
	_, ok := s.Disk("disk-1")
	assert.False(t, ok)

	require.NoError(t, s.MarkDiskForCleanup(ctx, t0, "disk-2"))
	require.NoError(t, s.DeallocateDisk(ctx, t0, "disk-2", false))
	assert.ErrorIs(t, s.DeallocateDisk(ctx, t0, "disk-2", true), registry.ErrNotFound)

	dirty := true
	assert.Len(t, s.ListDevices(registry.DeviceFilter{Dirty: &dirty}), 2)
}

func TestConfirmNotificationKeepsNewerSeqNo(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestState(t, testConfig())
	registerAgent(t, s, t0, "agent-1", 1, rackDevices("a1", "rack-1", 1)...)
	allocate(t, s, t0, "disk-1", model.MediaKindSSDNonReplicated, 10, "")

	require.NoError(t, s.ChangeDeviceState(ctx, t0, "a1-1", model.DeviceStateError, "smart"))
	first := s.PendingNotifications()[0].SeqNo
	require.NoError(t, s.ChangeDeviceState(ctx, t0, "a1-1", model.DeviceStateOnline, ""))
	second := s.PendingNotifications()[0].SeqNo
	require.Greater(t, second, first)

	require.NoError(t, s.ConfirmNotification(ctx, "disk-1", first))
	assert.Equal(t, []string{"disk-1"}, s.ListDisksToNotify())
	require.NoError(t, s.ConfirmNotification(ctx, "disk-1", second))
	assert.Empty(t, s.ListDisksToNotify())
}
