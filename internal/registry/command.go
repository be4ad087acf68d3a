package registry

import (
	"diskregistry/internal/model"
)

type request struct {
	cmd  any
	resp chan response
}

type response struct {
	value any
	err   error
}

type registerAgentCmd struct{ cfg AgentConfig }

type agentDisconnectedCmd struct {
	agentId string
	nodeId  uint32
}

type updateAgentStatsCmd struct {
	agentId string
	stats   []DeviceStats
}

type changeAgentStateCmd struct {
	agentId string
	state   model.AgentState
	message string
}

type changeDeviceStateCmd struct {
	deviceId string
	state    model.DeviceState
	message  string
}

type suspendDeviceCmd struct {
	deviceId  string
	suspended bool
}

type allocateDiskCmd struct{ req AllocateRequest }

type markDiskForCleanupCmd struct{ diskId string }

type deallocateDiskCmd struct {
	diskId string
	force  bool
}

type replaceDeviceCmd struct{ diskId, deviceId string }

type finishMigrationCmd struct{ diskId, sourceId, targetId string }

type cmsActionCmd struct{ action CmsAction }

type createPlacementGroupCmd struct{ groupId string }

type destroyPlacementGroupCmd struct{ groupId string }

type setWritableStateCmd struct{ writable bool }

type tickCmd struct{}

type cleanupDisksCmd struct{}

type describeDiskCmd struct{ diskId string }

type describeAgentCmd struct{ agentId string }

type findDeviceCmd struct{ deviceId string }

type listAgentsCmd struct{}

type listDevicesCmd struct{ filter DeviceFilter }

type listPlacementGroupsCmd struct{}

type listDisksToNotifyCmd struct{}

type listDirtyDevicesCmd struct{}

// 以下为异步操作完成后回送事件循环的结果

type eraseDoneCmd struct {
	cookie uint64
	erased []string
	err    error
}

type cleanupConfirmedCmd struct {
	cookie     uint64
	candidates []string
	referenced []string
	err        error
}

type notifyDoneCmd struct {
	diskId string
	seqNo  uint64
	err    error
}
