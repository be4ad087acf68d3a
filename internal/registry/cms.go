package registry

import (
	"context"
	"fmt"
	"time"

	"diskregistry/internal/model"
)

type CmsActionType string

const (
	CmsRemoveHost   CmsActionType = "remove_host"
	CmsAddHost      CmsActionType = "add_host"
	CmsRemoveDevice CmsActionType = "remove_device"
	CmsAddDevice    CmsActionType = "add_device"
)

type CmsAction struct {
	Type   CmsActionType
	Host   string
	Device string // 设备路径，仅设备级操作使用
}

// CmsActionResult DependentDiskIds 为空表示可以立即操作，否则需在 Timeout 后重试
type CmsActionResult struct {
	DependentDiskIds []string
	Timeout          time.Duration
}

// CmsAction 处理运维系统的摘除/恢复请求
func (s *State) CmsAction(ctx context.Context, now time.Time, action CmsAction) (*CmsActionResult, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	agent, ok := s.agents.get(action.Host)
	if !ok {
		return nil, fmt.Errorf("%w: host %s", ErrNotFound, action.Host)
	}

	switch action.Type {
	case CmsRemoveHost, CmsAddHost:
		result := &CmsActionResult{}
		err := s.update(ctx, func() error {
			if action.Type == CmsAddHost {
				if agent.State == model.AgentStateWarning {
					s.setAgentState(now, agent.AgentId, model.AgentStateOnline, "")
				}
				return nil
			}
			if agent.State == model.AgentStateOnline {
				s.setAgentState(now, agent.AgentId, model.AgentStateWarning, "cms: remove host")
			} else {
				s.startMigrations(now, agent.DeviceIds)
			}
			result.DependentDiskIds = s.dependentDisks(agent.DeviceIds)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(result.DependentDiskIds) > 0 {
			result.Timeout = s.cmsTimeout(now, agent.StateTs)
		}
		return result, nil

	case CmsRemoveDevice, CmsAddDevice:
		var dev *model.Device
		for _, id := range agent.DeviceIds {
			if d, ok := s.devices.get(id); ok && d.DeviceName == action.Device {
				dev = d
				break
			}
		}
		if dev == nil {
			return nil, fmt.Errorf("%w: device %s on host %s", ErrNotFound, action.Device, action.Host)
		}
		result := &CmsActionResult{}
		err := s.update(ctx, func() error {
			if action.Type == CmsAddDevice {
				if dev.State == model.DeviceStateWarning {
					s.setDeviceState(now, dev.DeviceId, model.DeviceStateOnline, "")
				}
				return nil
			}
			if dev.State == model.DeviceStateOnline {
				s.setDeviceState(now, dev.DeviceId, model.DeviceStateWarning, "cms: remove device")
			}
			s.startMigrations(now, []string{dev.DeviceId})
			result.DependentDiskIds = s.dependentDisks([]string{dev.DeviceId})
			return nil
		})
		if err != nil {
			return nil, err
		}
		if len(result.DependentDiskIds) > 0 {
			result.Timeout = s.cmsTimeout(now, dev.StateTs)
		}
		return result, nil
	}
	return nil, fmt.Errorf("%w: unknown cms action %q", ErrInvalidArgument, action.Type)
}

func (s *State) cmsTimeout(now, since time.Time) time.Duration {
	left := s.cfg.CmsHostRemovalTimeout - now.Sub(since)
	if left < 0 {
		return 0
	}
	return left
}
