package service_test

import (
	"context"
	"testing"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
	"diskregistry/internal/service"
	"diskregistry/pkg/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentService(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	agents := service.NewAgentService(newTestService(), r, log.NewNop())

	data, err := agents.RegisterAgent(ctx, registerRequest("agent-1", 1, 5, "rack-1", 2))
	require.NoError(t, err)
	assert.Equal(t, "online", data.State)
	assert.Equal(t, uint64(5), data.SeqNumber)

	_, err = agents.RegisterAgent(ctx, registerRequest("agent-1", 2, 3, "rack-1", 2))
	assert.ErrorIs(t, err, v1.ErrInvalidSeqNumber)

	list, err := agents.ListAgents(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, []string{"agent-1-1", "agent-1-2"}, list.List[0].DeviceIds)
	assert.True(t, list.List[0].Connected)

	_, err = agents.GetAgent(ctx, "agent-9")
	assert.ErrorIs(t, err, v1.ErrAgentNotFound)

	require.NoError(t, agents.ChangeAgentState(ctx, "agent-1", &v1.ChangeAgentStateRequest{State: "warning", Message: "maintenance"}))
	item, err := agents.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "warning", item.State)
	assert.Equal(t, "maintenance", item.StateMessage)

	require.NoError(t, agents.UnregisterAgent(ctx, &v1.UnregisterAgentRequest{AgentId: "agent-1", NodeId: 1}))
	item, err = agents.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.False(t, item.Connected)
	assert.NotNil(t, item.DisconnectDeadline)
}

func TestDiskService(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	svc := newTestService()
	agents := service.NewAgentService(svc, r, log.NewNop())
	disks := service.NewDiskService(svc, r, log.NewNop())

	registerClean(t, r, agents, registerRequest("agent-1", 1, 1, "rack-1", 1))

	disk, err := disks.AllocateDisk(ctx, allocateRequest("disk-1", model.MediaKindSSDNonReplicated))
	require.NoError(t, err)
	require.Len(t, disk.Devices, 1)
	assert.Equal(t, "agent-1-1", disk.Devices[0].DeviceId)
	assert.Equal(t, "agent-1", disk.Devices[0].AgentId)
	assert.Equal(t, "disk-1", disk.Devices[0].DiskId)
	assert.Empty(t, disk.Replicas)

	_, err = disks.AllocateDisk(ctx, allocateRequest("disk-2", model.MediaKindSSDNonReplicated))
	assert.ErrorIs(t, err, v1.ErrInsufficientResources)

	_, err = disks.DescribeDisk(ctx, "disk-9")
	assert.ErrorIs(t, err, v1.ErrDiskNotFound)

	err = disks.DeallocateDisk(ctx, "disk-1", false)
	assert.ErrorIs(t, err, v1.ErrBadRequest)

	require.NoError(t, disks.MarkDiskForCleanup(ctx, "disk-1"))
	described, err := disks.DescribeDisk(ctx, "disk-1")
	require.NoError(t, err)
	assert.True(t, described.MarkedForCleanup)

	require.NoError(t, disks.DeallocateDisk(ctx, "disk-1", false))
	_, err = disks.DescribeDisk(ctx, "disk-1")
	assert.ErrorIs(t, err, v1.ErrDiskNotFound)
}

func TestDeviceService(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	svc := newTestService()
	agents := service.NewAgentService(svc, r, log.NewNop())
	devices := service.NewDeviceService(svc, r, log.NewNop())

	registerClean(t, r, agents, registerRequest("agent-1", 1, 1, "rack-1", 2))

	require.NoError(t, devices.ChangeDeviceState(ctx, "agent-1-2", &v1.ChangeDeviceStateRequest{State: "error", Message: "broken"}))

	dev, err := devices.GetDevice(ctx, "agent-1-2")
	require.NoError(t, err)
	assert.Equal(t, "error", dev.State)
	assert.Equal(t, "broken", dev.StateMessage)
	assert.False(t, dev.Dirty)

	list, err := devices.ListDevices(ctx, &v1.ListDevicesRequest{State: "online"})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, "agent-1-1", list.List[0].DeviceId)

	require.NoError(t, devices.SuspendDevice(ctx, "agent-1-1"))
	dev, err = devices.GetDevice(ctx, "agent-1-1")
	require.NoError(t, err)
	assert.True(t, dev.Suspended)
	suspended := true
	list, err = devices.ListDevices(ctx, &v1.ListDevicesRequest{Suspended: &suspended})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.NoError(t, devices.ResumeDevice(ctx, "agent-1-1"))
	list, err = devices.ListDevices(ctx, &v1.ListDevicesRequest{Suspended: &suspended})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	_, err = devices.GetDevice(ctx, "missing")
	assert.ErrorIs(t, err, v1.ErrDeviceNotFound)
	err = devices.ChangeDeviceState(ctx, "missing", &v1.ChangeDeviceStateRequest{State: "error"})
	assert.ErrorIs(t, err, v1.ErrDeviceNotFound)
	assert.ErrorIs(t, devices.SuspendDevice(ctx, "missing"), v1.ErrDeviceNotFound)
}

func TestCmsService(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	svc := newTestService()
	agents := service.NewAgentService(svc, r, log.NewNop())
	cms := service.NewCmsService(svc, r, log.NewNop())

	registerClean(t, r, agents, registerRequest("agent-1", 1, 1, "rack-1", 1))

	data, err := cms.ExecuteActions(ctx, &v1.CmsActionRequest{Actions: []v1.CmsAction{
		{Type: v1.CmsActionRemoveHost, Host: "agent-1"},
		{Type: v1.CmsActionRemoveHost, Host: "agent-9"},
		{Type: v1.CmsActionRemoveDevice, Host: "agent-1", Device: "/dev/none"},
	}})
	require.NoError(t, err)
	require.Len(t, data.Results, 3)

	assert.Equal(t, 0, data.Results[0].Code)
	assert.Empty(t, data.Results[0].DependentDiskIds)
	assert.Zero(t, data.Results[0].Timeout)

	code, _ := v1.ErrorCode(v1.ErrAgentNotFound)
	assert.Equal(t, code, data.Results[1].Code)
	code, _ = v1.ErrorCode(v1.ErrDeviceNotFound)
	assert.Equal(t, code, data.Results[2].Code)

	item, err := agents.GetAgent(ctx, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, "warning", item.State)
}

func TestPlacementGroupAndRegistryService(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t)
	svc := newTestService()
	groups := service.NewPlacementGroupService(svc, r, log.NewNop())
	reg := service.NewRegistryService(svc, r, log.NewNop())

	require.NoError(t, groups.CreatePlacementGroup(ctx, &v1.CreatePlacementGroupRequest{GroupId: "pg-1"}))
	err := groups.CreatePlacementGroup(ctx, &v1.CreatePlacementGroupRequest{GroupId: "pg-1"})
	assert.ErrorIs(t, err, v1.ErrPlacementGroupExists)

	list, err := groups.ListPlacementGroups(ctx)
	require.NoError(t, err)
	require.Len(t, list.List, 1)
	assert.Equal(t, []string{}, list.List[0].DiskIds)

	writable := false
	require.NoError(t, reg.SetWritableState(ctx, &v1.SetWritableStateRequest{Writable: &writable}))
	err = groups.CreatePlacementGroup(ctx, &v1.CreatePlacementGroupRequest{GroupId: "pg-2"})
	assert.ErrorIs(t, err, v1.ErrRejected)

	writable = true
	require.NoError(t, reg.SetWritableState(ctx, &v1.SetWritableStateRequest{Writable: &writable}))
	require.NoError(t, groups.DestroyPlacementGroup(ctx, "pg-1"))

	removed, err := reg.CleanupDisks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{}, removed.RemovedDiskIds)
}
