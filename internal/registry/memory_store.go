package registry

import (
	"context"
	"sync"

	"diskregistry/internal/model"
)

// MemoryStore 内存实现，用于测试与单机调试
type MemoryStore struct {
	mu       sync.Mutex
	meta     *model.RegistryMeta
	agents   map[string]*model.Agent
	devices  map[string]*model.Device
	disks    map[string]*model.Disk
	groups   map[string]*model.PlacementGroup
	dirty    map[string]*model.DirtyDevice
	notifies map[string]*model.DiskNotification
	replaced map[string]*model.ReplacedDevice

	// FailApply 非空时 Apply 直接返回该错误，用于故障注入
	FailApply error
	applied   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agents:   make(map[string]*model.Agent),
		devices:  make(map[string]*model.Device),
		disks:    make(map[string]*model.Disk),
		groups:   make(map[string]*model.PlacementGroup),
		dirty:    make(map[string]*model.DirtyDevice),
		notifies: make(map[string]*model.DiskNotification),
		replaced: make(map[string]*model.ReplacedDevice),
	}
}

func (s *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := &Snapshot{
		Agents:          cloneAll(s.agents, (*model.Agent).Clone),
		Devices:         cloneAll(s.devices, (*model.Device).Clone),
		Disks:           cloneAll(s.disks, (*model.Disk).Clone),
		PlacementGroups: cloneAll(s.groups, (*model.PlacementGroup).Clone),
		DirtyDevices:    cloneAll(s.dirty, (*model.DirtyDevice).Clone),
		Notifications:   cloneAll(s.notifies, (*model.DiskNotification).Clone),
		ReplacedDevices: cloneAll(s.replaced, (*model.ReplacedDevice).Clone),
	}
	if s.meta != nil {
		snap.Meta = s.meta.Clone()
	}
	return snap, nil
}

func (s *MemoryStore) Apply(ctx context.Context, m *Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailApply != nil {
		return s.FailApply
	}
	if m.Meta != nil {
		s.meta = m.Meta.Clone()
	}
	applyAll(s.agents, m.Agents, (*model.Agent).Clone)
	applyAll(s.devices, m.Devices, (*model.Device).Clone)
	applyAll(s.disks, m.Disks, (*model.Disk).Clone)
	applyAll(s.groups, m.PlacementGroups, (*model.PlacementGroup).Clone)
	applyAll(s.dirty, m.DirtyDevices, (*model.DirtyDevice).Clone)
	applyAll(s.notifies, m.Notifications, (*model.DiskNotification).Clone)
	applyAll(s.replaced, m.ReplacedDevices, (*model.ReplacedDevice).Clone)
	s.applied++
	return nil
}

// Applied 成功应用的变更次数
func (s *MemoryStore) Applied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

func cloneAll[T any](rows map[string]*T, clone func(*T) *T) []*T {
	out := make([]*T, 0, len(rows))
	for _, v := range rows {
		out = append(out, clone(v))
	}
	return out
}

func applyAll[T any](rows map[string]*T, changes map[string]*T, clone func(*T) *T) {
	for id, v := range changes {
		if v == nil {
			delete(rows, id)
			continue
		}
		rows[id] = clone(v)
	}
}
