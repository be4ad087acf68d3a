package registry

import (
	"context"
	"fmt"
	"time"

	"diskregistry/internal/model"

	"go.uber.org/zap"
)

// AgentDisconnected 记录 agent 断连并按退避策略设置超时
// nodeId 为 0 时不校验会话归属
func (s *State) AgentDisconnected(ctx context.Context, now time.Time, agentId string, nodeId uint32) error {
	agent, ok := s.agents.get(agentId)
	if !ok {
		return fmt.Errorf("%w: agent %s", ErrNotFound, agentId)
	}
	if nodeId != 0 && agent.NodeId != nodeId {
		// 已被新会话取代
		return nil
	}
	if !agent.Connected {
		return nil
	}
	err := s.update(ctx, func() error {
		a := s.agents.mut(agentId)
		timeout := s.nextDisconnectTimeout(now, a)
		a.Connected = false
		a.DisconnectTs = now
		a.DisconnectTimeout = timeout
		a.DisconnectDeadline = now.Add(timeout)
		a.UpdateTime = now
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("agent disconnected",
		zap.String("agent_id", agentId),
		zap.Uint32("node_id", agent.NodeId),
		zap.Duration("timeout", agent.DisconnectTimeout))
	return nil
}

// nextDisconnectTimeout 连续断连时按倍数增长，连接足够久后恢复为最小值
func (s *State) nextDisconnectTimeout(now time.Time, a *model.Agent) time.Duration {
	if a.DisconnectTimeout == 0 || now.Sub(a.ConnectedTs) >= s.cfg.DisconnectRecoveryInterval {
		return s.cfg.AgentMinTimeout
	}
	next := time.Duration(float64(a.DisconnectTimeout) * s.cfg.AgentTimeoutGrowthFactor)
	if next > s.cfg.AgentMaxTimeout {
		next = s.cfg.AgentMaxTimeout
	}
	if next < s.cfg.AgentMinTimeout {
		next = s.cfg.AgentMinTimeout
	}
	return next
}

// ResetSessions 重启后所有会话都已失效，对仍标记为已连接的 agent 开始断连计时
func (s *State) ResetSessions(ctx context.Context, now time.Time) error {
	for _, id := range sortedKeys(s.agents.rows) {
		if err := s.AgentDisconnected(ctx, now, id, 0); err != nil {
			return err
		}
	}
	return nil
}

// checkAgentTimeouts 处理已超时的断连，只读模式下推迟
func (s *State) checkAgentTimeouts(now time.Time) {
	if !s.Writable() {
		return
	}
	for _, id := range sortedKeys(s.agents.rows) {
		a := s.agents.rows[id]
		if !a.DisconnectPending() || a.State == model.AgentStateUnavailable || now.Before(a.DisconnectDeadline) {
			continue
		}
		s.setAgentUnavailable(now, id, "disconnect timeout")
	}
}

func (s *State) setAgentUnavailable(now time.Time, agentId, message string) {
	a := s.agents.mut(agentId)
	if a == nil {
		return
	}
	s.logger.Warn("agent is unavailable", zap.String("agent_id", agentId), zap.String("reason", message))
	a.State = model.AgentStateUnavailable
	a.StateTs = now
	a.StateMessage = message
	a.DisconnectDeadline = time.Time{}
	a.UpdateTime = now
	s.reevaluateDisks(now, s.agentDisks(a))
}

// ChangeAgentState 管理员修改 agent 状态
func (s *State) ChangeAgentState(ctx context.Context, now time.Time, agentId string, state model.AgentState, message string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	cur, ok := s.agents.get(agentId)
	if !ok {
		return fmt.Errorf("%w: agent %s", ErrNotFound, agentId)
	}
	if cur.State == state {
		return nil
	}
	return s.update(ctx, func() error {
		s.setAgentState(now, agentId, state, message)
		return nil
	})
}

func (s *State) setAgentState(now time.Time, agentId string, state model.AgentState, message string) {
	switch state {
	case model.AgentStateUnavailable:
		s.setAgentUnavailable(now, agentId, message)
	default:
		a := s.agents.mut(agentId)
		a.State = state
		a.StateTs = now
		a.StateMessage = message
		a.UpdateTime = now
		if state == model.AgentStateWarning {
			s.startMigrations(now, a.DeviceIds)
		}
		s.reevaluateDisks(now, s.agentDisks(a))
	}
}

// SetWritableState 切换只读模式，恢复可写时立即处理被推迟的超时
func (s *State) SetWritableState(ctx context.Context, now time.Time, writable bool) error {
	return s.update(ctx, func() error {
		if s.Writable() != writable {
			s.mutMeta().Writable = writable
		}
		s.checkAgentTimeouts(now)
		return nil
	})
}
