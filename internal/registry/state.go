package registry

import (
	"context"
	"fmt"
	"sort"

	"diskregistry/internal/model"
	"diskregistry/pkg/log"
)

// DroppedSession 需要传输层强制断开的旧 agent 会话
type DroppedSession struct {
	AgentId string
	NodeId  uint32
}

// State registry 的内存状态，只能在事件循环中访问
// 每个修改操作在 update 中执行：先修改内存、再 Apply 落盘，落盘失败则回滚
type State struct {
	cfg    Config
	logger *log.Logger
	store  StateStore

	meta          *table[model.RegistryMeta]
	agents        *table[model.Agent]
	devices       *table[model.Device]
	disks         *table[model.Disk]
	groups        *table[model.PlacementGroup]
	dirty         *table[model.DirtyDevice]
	notifications *table[model.DiskNotification]
	replaced      *table[model.ReplacedDevice]

	txDropped []DroppedSession
	dropped   []DroppedSession
}

func NewState(cfg Config, logger *log.Logger, store StateStore) *State {
	s := &State{
		cfg:           cfg,
		logger:        logger,
		store:         store,
		meta:          newTable((*model.RegistryMeta).Clone),
		agents:        newTable((*model.Agent).Clone),
		devices:       newTable((*model.Device).Clone),
		disks:         newTable((*model.Disk).Clone),
		groups:        newTable((*model.PlacementGroup).Clone),
		dirty:         newTable((*model.DirtyDevice).Clone),
		notifications: newTable((*model.DiskNotification).Clone),
		replaced:      newTable((*model.ReplacedDevice).Clone),
	}
	s.meta.load(model.RegistryMetaId, &model.RegistryMeta{Id: model.RegistryMetaId, Writable: true})
	return s
}

// Load 用快照替换全部内存状态
func (s *State) Load(snap *Snapshot) {
	fresh := NewState(s.cfg, s.logger, s.store)
	*s = *fresh
	if snap == nil {
		return
	}
	if snap.Meta != nil {
		s.meta.load(model.RegistryMetaId, snap.Meta.Clone())
	}
	for _, a := range snap.Agents {
		s.agents.load(a.AgentId, a.Clone())
	}
	for _, d := range snap.Devices {
		s.devices.load(d.DeviceId, d.Clone())
	}
	for _, d := range snap.Disks {
		s.disks.load(d.DiskId, d.Clone())
	}
	for _, g := range snap.PlacementGroups {
		s.groups.load(g.GroupId, g.Clone())
	}
	for _, d := range snap.DirtyDevices {
		s.dirty.load(d.DeviceId, d.Clone())
	}
	for _, n := range snap.Notifications {
		s.notifications.load(n.DiskId, n.Clone())
	}
	for _, r := range snap.ReplacedDevices {
		s.replaced.load(r.DeviceId, r.Clone())
	}
}

func (s *State) update(ctx context.Context, fn func() error) error {
	if err := fn(); err != nil {
		s.rollback()
		return err
	}
	m := s.mutation()
	if !m.Empty() {
		if err := s.store.Apply(ctx, m); err != nil {
			s.rollback()
			return fmt.Errorf("apply mutation: %w", err)
		}
	}
	s.commit()
	return nil
}

func (s *State) mutation() *Mutation {
	m := &Mutation{
		Agents:          s.agents.changes(),
		Devices:         s.devices.changes(),
		Disks:           s.disks.changes(),
		PlacementGroups: s.groups.changes(),
		DirtyDevices:    s.dirty.changes(),
		Notifications:   s.notifications.changes(),
		ReplacedDevices: s.replaced.changes(),
	}
	if ch := s.meta.changes(); ch != nil {
		m.Meta = ch[model.RegistryMetaId]
	}
	return m
}

func (s *State) commit() {
	s.meta.commit()
	s.agents.commit()
	s.devices.commit()
	s.disks.commit()
	s.groups.commit()
	s.dirty.commit()
	s.notifications.commit()
	s.replaced.commit()
	s.dropped = append(s.dropped, s.txDropped...)
	s.txDropped = nil
}

func (s *State) rollback() {
	s.meta.rollback()
	s.agents.rollback()
	s.devices.rollback()
	s.disks.rollback()
	s.groups.rollback()
	s.dirty.rollback()
	s.notifications.rollback()
	s.replaced.rollback()
	s.txDropped = nil
}

// TakeDroppedSessions 取出已提交事务中需要断开的会话
func (s *State) TakeDroppedSessions() []DroppedSession {
	out := s.dropped
	s.dropped = nil
	return out
}

func (s *State) dropSession(agentId string, nodeId uint32) {
	s.txDropped = append(s.txDropped, DroppedSession{AgentId: agentId, NodeId: nodeId})
}

func (s *State) Writable() bool {
	m, _ := s.meta.get(model.RegistryMetaId)
	return m.Writable
}

func (s *State) mutMeta() *model.RegistryMeta {
	return s.meta.mut(model.RegistryMetaId)
}

func (s *State) checkWritable() error {
	if !s.Writable() {
		return fmt.Errorf("%w: registry is read-only", ErrRejected)
	}
	return nil
}

// Disk 返回磁盘副本
func (s *State) Disk(diskId string) (*model.Disk, bool) {
	d, ok := s.disks.get(diskId)
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

func (s *State) Agent(agentId string) (*model.Agent, bool) {
	a, ok := s.agents.get(agentId)
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

func (s *State) IsDirty(deviceId string) bool {
	return s.dirty.has(deviceId)
}

func sortedKeys[T any](rows map[string]*T) []string {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
