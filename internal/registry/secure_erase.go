package registry

import (
	"context"
	"sort"
	"time"

	"diskregistry/internal/model"

	"go.uber.org/zap"
)

// EraseRequest 发往 agent 的擦除请求
type EraseRequest struct {
	DeviceId   string
	DeviceName string
	AgentId    string
	Endpoint   string
}

func (s *State) queueDirty(now time.Time, deviceId, diskId string) {
	if s.dirty.has(deviceId) {
		return
	}
	s.dirty.put(deviceId, &model.DirtyDevice{
		DeviceId:      deviceId,
		DiskId:        diskId,
		QueuedAt:      now,
		NextAttemptAt: now,
	})
}

// DevicesToErase 选出本轮可以擦除的设备
// 跳过 agent 不可用、设备故障或挂起、未到重试时间以及 inFlight 中的设备
// 同一池类型下同名设备的并发擦除数按池类型分别受限
func (s *State) DevicesToErase(now time.Time, inFlight func(deviceId string) bool, limit int) []EraseRequest {
	if limit <= 0 {
		return nil
	}
	type nameKey struct {
		kind model.PoolKind
		name string
	}
	perName := make(map[nameKey]int)
	var entries []*model.DirtyDevice
	for _, e := range s.dirty.rows {
		if inFlight(e.DeviceId) {
			if dev, ok := s.devices.get(e.DeviceId); ok {
				perName[nameKey{dev.PoolKind, dev.DeviceName}]++
			}
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].QueuedAt.Equal(entries[j].QueuedAt) {
			return entries[i].QueuedAt.Before(entries[j].QueuedAt)
		}
		return entries[i].DeviceId < entries[j].DeviceId
	})

	var out []EraseRequest
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if e.NextAttemptAt.After(now) {
			continue
		}
		dev, ok := s.devices.get(e.DeviceId)
		if !ok || dev.State == model.DeviceStateError || dev.Suspended {
			continue
		}
		agent, ok := s.agents.get(dev.AgentId)
		if !ok || agent.State == model.AgentStateUnavailable || !agent.Connected {
			continue
		}
		key := nameKey{dev.PoolKind, dev.DeviceName}
		if perKind := s.cfg.SecureEraseMaxPerDeviceName[dev.PoolKind]; perKind > 0 && perName[key] >= perKind {
			continue
		}
		perName[key]++
		out = append(out, EraseRequest{
			DeviceId:   dev.DeviceId,
			DeviceName: dev.DeviceName,
			AgentId:    dev.AgentId,
			Endpoint:   agent.Endpoint,
		})
	}
	return out
}

// MarkDevicesErased 擦除成功，设备回到空闲池
func (s *State) MarkDevicesErased(ctx context.Context, now time.Time, deviceIds []string) error {
	if len(deviceIds) == 0 {
		return nil
	}
	err := s.update(ctx, func() error {
		for _, id := range deviceIds {
			s.dirty.del(id)
			if dev := s.devices.mut(id); dev != nil {
				dev.UpdateTime = now
			}
		}
		return nil
	})
	if err == nil {
		s.logger.Info("devices erased", zap.Strings("device_ids", deviceIds))
	}
	return err
}

// MarkEraseFailed 擦除失败，按固定间隔重试
func (s *State) MarkEraseFailed(ctx context.Context, now time.Time, deviceIds []string) error {
	if len(deviceIds) == 0 {
		return nil
	}
	return s.update(ctx, func() error {
		for _, id := range deviceIds {
			e := s.dirty.mut(id)
			if e == nil {
				continue
			}
			e.Attempt++
			e.NextAttemptAt = now.Add(s.cfg.SecureEraseRetryBackoff)
		}
		return nil
	})
}

func (s *State) DirtyDevices() []*model.DirtyDevice {
	out := make([]*model.DirtyDevice, 0, s.dirty.len())
	for _, id := range sortedKeys(s.dirty.rows) {
		out = append(out, s.dirty.rows[id].Clone())
	}
	return out
}
