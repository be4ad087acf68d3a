package registry

import (
	"context"
	"fmt"
	"sort"
	"time"

	"diskregistry/internal/model"
	"diskregistry/pkg/hash"

	"github.com/duke-git/lancet/v2/slice"
	"go.uber.org/zap"
)

const deviceLostMessage = "device is lost"

type DeviceConfig struct {
	DeviceId    string         `json:"device_id"`
	DeviceName  string         `json:"device_name"`
	PoolName    string         `json:"pool_name"`
	PoolKind    model.PoolKind `json:"pool_kind"`
	BlockSize   uint32         `json:"block_size"`
	BlocksCount uint64         `json:"blocks_count"`
	Rack        string         `json:"rack"`
}

type AgentConfig struct {
	AgentId   string         `json:"agent_id"`
	NodeId    uint32         `json:"node_id"`
	SeqNumber uint64         `json:"seq_number"`
	Endpoint  string         `json:"endpoint"`
	Devices   []DeviceConfig `json:"devices"`
}

type DeviceStats struct {
	DeviceId string
	Errors   uint64
}

type DeviceFilter struct {
	AgentId   string
	PoolName  string
	State     model.DeviceState
	DiskId    string
	Dirty     *bool
	Suspended *bool
}

// RegisterAgent 注册或更新 agent 及其设备
func (s *State) RegisterAgent(ctx context.Context, now time.Time, cfg AgentConfig) (*model.Agent, error) {
	if cfg.AgentId == "" {
		return nil, fmt.Errorf("%w: empty agent id", ErrInvalidArgument)
	}
	for _, dc := range cfg.Devices {
		if dc.DeviceId == "" {
			return nil, fmt.Errorf("%w: empty device id", ErrInvalidArgument)
		}
		if cur, ok := s.devices.get(dc.DeviceId); ok && cur.AgentId != cfg.AgentId {
			return nil, fmt.Errorf("%w: device %s belongs to agent %s", ErrInvalidArgument, dc.DeviceId, cur.AgentId)
		}
	}
	configHash, err := hash.Of(cfg, "seq_number")
	if err != nil {
		return nil, err
	}

	var agent *model.Agent
	err = s.update(ctx, func() error {
		prev, exists := s.agents.get(cfg.AgentId)
		if exists {
			if cfg.SeqNumber < prev.SeqNumber && prev.State != model.AgentStateUnavailable {
				return fmt.Errorf("%w: agent %s seq number %d is lower than %d",
					ErrInvalidSeqNumber, cfg.AgentId, cfg.SeqNumber, prev.SeqNumber)
			}
			agent = s.agents.mut(cfg.AgentId)
			if agent.Connected && (agent.NodeId != cfg.NodeId || cfg.SeqNumber < agent.SeqNumber) {
				s.dropSession(agent.AgentId, agent.NodeId)
			}
		} else {
			agent = &model.Agent{
				AgentId:    cfg.AgentId,
				State:      model.AgentStateOnline,
				StateTs:    now,
				CreateTime: now,
			}
			s.agents.put(cfg.AgentId, agent)
		}

		agent.NodeId = cfg.NodeId
		agent.SeqNumber = cfg.SeqNumber
		agent.Endpoint = cfg.Endpoint
		agent.Connected = true
		agent.ConnectedTs = now
		agent.DisconnectDeadline = time.Time{}
		agent.UpdateTime = now

		var affected []string
		if agent.State == model.AgentStateUnavailable {
			agent.State = model.AgentStateOnline
			agent.StateTs = now
			agent.StateMessage = ""
			affected = append(affected, s.agentDisks(agent)...)
		}
		if !exists || agent.ConfigHash != configHash {
			affected = append(affected, s.syncAgentDevices(now, agent, cfg)...)
			agent.ConfigHash = configHash
		}
		s.reevaluateDisks(now, affected)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("agent registered",
		zap.String("agent_id", agent.AgentId),
		zap.Uint32("node_id", agent.NodeId),
		zap.Uint64("seq_number", agent.SeqNumber),
		zap.Int("devices", len(agent.DeviceIds)))
	return agent.Clone(), nil
}

// syncAgentDevices 按上报的设备列表更新设备，返回受影响的磁盘
func (s *State) syncAgentDevices(now time.Time, agent *model.Agent, cfg AgentConfig) []string {
	var affected []string
	seen := make(map[string]struct{}, len(cfg.Devices))
	for _, dc := range cfg.Devices {
		seen[dc.DeviceId] = struct{}{}
		dev := s.devices.mut(dc.DeviceId)
		if dev == nil {
			dev = &model.Device{
				DeviceId:   dc.DeviceId,
				AgentId:    agent.AgentId,
				State:      model.DeviceStateOnline,
				StateTs:    now,
				CreateTime: now,
			}
			s.devices.put(dc.DeviceId, dev)
			// 新设备在擦除之前不可分配
			s.queueDirty(now, dc.DeviceId, "")
		} else if dev.State == model.DeviceStateError && dev.StateMessage == deviceLostMessage {
			dev.State = model.DeviceStateOnline
			dev.StateTs = now
			dev.StateMessage = ""
			if dev.DiskId != "" {
				affected = append(affected, dev.DiskId)
			}
		}
		dev.DeviceName = dc.DeviceName
		dev.NodeId = agent.NodeId
		dev.PoolName = dc.PoolName
		dev.PoolKind = dc.PoolKind
		if dev.PoolKind == "" {
			dev.PoolKind = model.PoolKindDefault
		}
		dev.BlockSize = dc.BlockSize
		dev.BlocksCount = dc.BlocksCount
		dev.Rack = dc.Rack
		dev.UpdateTime = now
	}

	for _, id := range agent.DeviceIds {
		if _, ok := seen[id]; ok {
			continue
		}
		dev := s.devices.mut(id)
		if dev == nil || dev.State == model.DeviceStateError {
			continue
		}
		dev.State = model.DeviceStateError
		dev.StateTs = now
		dev.StateMessage = deviceLostMessage
		dev.UpdateTime = now
		if dev.DiskId != "" {
			affected = append(affected, dev.DiskId)
		}
		s.logger.Warn("device is lost", zap.String("agent_id", agent.AgentId), zap.String("device_id", id))
	}

	ids := append([]string(nil), agent.DeviceIds...)
	for id := range seen {
		ids = append(ids, id)
	}
	ids = slice.Unique(ids)
	sort.Strings(ids)
	agent.DeviceIds = ids
	return affected
}

// agentDisks agent 设备所属的磁盘
func (s *State) agentDisks(agent *model.Agent) []string {
	var disks []string
	for _, id := range agent.DeviceIds {
		if dev, ok := s.devices.get(id); ok && dev.DiskId != "" {
			disks = append(disks, dev.DiskId)
		}
	}
	return slice.Unique(disks)
}

func (s *State) FindDevice(deviceId string) (*model.Device, error) {
	dev, ok := s.devices.get(deviceId)
	if !ok {
		return nil, fmt.Errorf("%w: device %s", ErrNotFound, deviceId)
	}
	return dev.Clone(), nil
}

// ChangeDeviceState 管理员修改设备状态
func (s *State) ChangeDeviceState(ctx context.Context, now time.Time, deviceId string, state model.DeviceState, message string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	cur, ok := s.devices.get(deviceId)
	if !ok {
		return fmt.Errorf("%w: device %s", ErrNotFound, deviceId)
	}
	if cur.State == state {
		return nil
	}
	return s.update(ctx, func() error {
		s.setDeviceState(now, deviceId, state, message)
		if state == model.DeviceStateWarning {
			s.startMigrations(now, []string{deviceId})
		}
		return nil
	})
}

// SuspendDevice 挂起设备，已分配给磁盘的设备继续服务该磁盘
func (s *State) SuspendDevice(ctx context.Context, now time.Time, deviceId string) error {
	return s.setSuspended(ctx, now, deviceId, true)
}

// ResumeDevice 恢复挂起的设备，仍在脏设备表中的会重新参与擦除
func (s *State) ResumeDevice(ctx context.Context, now time.Time, deviceId string) error {
	return s.setSuspended(ctx, now, deviceId, false)
}

func (s *State) setSuspended(ctx context.Context, now time.Time, deviceId string, suspended bool) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	cur, ok := s.devices.get(deviceId)
	if !ok {
		return fmt.Errorf("%w: device %s", ErrNotFound, deviceId)
	}
	if cur.Suspended == suspended {
		return nil
	}
	err := s.update(ctx, func() error {
		dev := s.devices.mut(deviceId)
		dev.Suspended = suspended
		dev.UpdateTime = now
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("device suspension changed",
		zap.String("device_id", deviceId),
		zap.Bool("suspended", suspended))
	return nil
}

func (s *State) setDeviceState(now time.Time, deviceId string, state model.DeviceState, message string) {
	dev := s.devices.mut(deviceId)
	if dev == nil || dev.State == state {
		return
	}
	s.logger.Info("device state changed",
		zap.String("device_id", deviceId),
		zap.String("from", string(dev.State)),
		zap.String("to", string(state)),
		zap.String("message", message))
	dev.State = state
	dev.StateTs = now
	dev.StateMessage = message
	dev.UpdateTime = now
	if dev.DiskId != "" {
		s.reevaluateDisk(now, dev.DiskId)
	}
}

// UpdateAgentStats 根据 agent 上报的 IO 错误计数标记故障设备
func (s *State) UpdateAgentStats(ctx context.Context, now time.Time, agentId string, stats []DeviceStats) error {
	agent, ok := s.agents.get(agentId)
	if !ok {
		return fmt.Errorf("%w: agent %s", ErrNotFound, agentId)
	}
	var broken []string
	for _, st := range stats {
		if st.Errors == 0 || !slice.Contain(agent.DeviceIds, st.DeviceId) {
			continue
		}
		if dev, ok := s.devices.get(st.DeviceId); ok && dev.State == model.DeviceStateOnline {
			broken = append(broken, st.DeviceId)
		}
	}
	if len(broken) == 0 {
		return nil
	}
	return s.update(ctx, func() error {
		for _, id := range broken {
			s.setDeviceState(now, id, model.DeviceStateError, "io errors")
		}
		return nil
	})
}

func (s *State) ListAgents() []*model.Agent {
	out := make([]*model.Agent, 0, s.agents.len())
	for _, id := range sortedKeys(s.agents.rows) {
		out = append(out, s.agents.rows[id].Clone())
	}
	return out
}

func (s *State) ListDevices(filter DeviceFilter) []*model.Device {
	var out []*model.Device
	for _, id := range sortedKeys(s.devices.rows) {
		dev := s.devices.rows[id]
		if filter.AgentId != "" && dev.AgentId != filter.AgentId {
			continue
		}
		if filter.PoolName != "" && dev.PoolName != filter.PoolName {
			continue
		}
		if filter.State != "" && dev.State != filter.State {
			continue
		}
		if filter.DiskId != "" && dev.DiskId != filter.DiskId {
			continue
		}
		if filter.Dirty != nil && s.dirty.has(id) != *filter.Dirty {
			continue
		}
		if filter.Suspended != nil && dev.Suspended != *filter.Suspended {
			continue
		}
		out = append(out, dev.Clone())
	}
	return out
}

// isFree 设备可用于新分配
func (s *State) isFree(dev *model.Device) bool {
	if dev.DiskId != "" || dev.Suspended || dev.State != model.DeviceStateOnline || s.dirty.has(dev.DeviceId) {
		return false
	}
	agent, ok := s.agents.get(dev.AgentId)
	return ok && agent.State == model.AgentStateOnline && agent.Connected
}
