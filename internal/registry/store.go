package registry

import (
	"context"

	"diskregistry/internal/model"
)

// StateStore 持久化层，registry 的所有变更只通过 Apply 落盘
type StateStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	// Apply 原子地应用一次变更，要么全部成功要么全部失败
	Apply(ctx context.Context, m *Mutation) error
}

type Snapshot struct {
	Meta            *model.RegistryMeta
	Agents          []*model.Agent
	Devices         []*model.Device
	Disks           []*model.Disk
	PlacementGroups []*model.PlacementGroup
	DirtyDevices    []*model.DirtyDevice
	Notifications   []*model.DiskNotification
	ReplacedDevices []*model.ReplacedDevice
}

// Mutation 一次事务产生的全部变更，按主键索引，值为 nil 表示删除
type Mutation struct {
	Meta            *model.RegistryMeta
	Agents          map[string]*model.Agent
	Devices         map[string]*model.Device
	Disks           map[string]*model.Disk
	PlacementGroups map[string]*model.PlacementGroup
	DirtyDevices    map[string]*model.DirtyDevice
	Notifications   map[string]*model.DiskNotification
	ReplacedDevices map[string]*model.ReplacedDevice
}

func (m *Mutation) Empty() bool {
	return m.Meta == nil &&
		len(m.Agents) == 0 &&
		len(m.Devices) == 0 &&
		len(m.Disks) == 0 &&
		len(m.PlacementGroups) == 0 &&
		len(m.DirtyDevices) == 0 &&
		len(m.Notifications) == 0 &&
		len(m.ReplacedDevices) == 0
}
