package service

import (
	"context"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/model"
	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

type AgentService interface {
	RegisterAgent(ctx context.Context, req *v1.RegisterAgentRequest) (*v1.RegisterAgentResponseData, error)
	UnregisterAgent(ctx context.Context, req *v1.UnregisterAgentRequest) error
	// AgentConnectionLost 会话断开，由 websocket 处理器调用
	AgentConnectionLost(ctx context.Context, agentId string, nodeId uint32) error
	UpdateAgentStats(ctx context.Context, req *v1.UpdateAgentStatsRequest) error
	ChangeAgentState(ctx context.Context, agentId string, req *v1.ChangeAgentStateRequest) error
	GetAgent(ctx context.Context, agentId string) (*v1.AgentItem, error)
	ListAgents(ctx context.Context) (*v1.ListAgentsResponseData, error)
}

func NewAgentService(
	service *Service,
	diskRegistry DiskRegistry,
	logger *log.Logger,
) AgentService {
	return &agentService{
		Service:  service,
		registry: diskRegistry,
		logger:   logger,
	}
}

type agentService struct {
	*Service
	registry DiskRegistry
	logger   *log.Logger
}

func (s *agentService) RegisterAgent(ctx context.Context, req *v1.RegisterAgentRequest) (*v1.RegisterAgentResponseData, error) {
	cfg := registry.AgentConfig{
		AgentId:   req.AgentId,
		NodeId:    req.NodeId,
		SeqNumber: req.SeqNumber,
		Endpoint:  req.Endpoint,
		Devices:   make([]registry.DeviceConfig, 0, len(req.Devices)),
	}
	for _, d := range req.Devices {
		kind := model.PoolKind(d.PoolKind)
		if kind == "" {
			kind = model.PoolKindDefault
		}
		cfg.Devices = append(cfg.Devices, registry.DeviceConfig{
			DeviceId:    d.DeviceId,
			DeviceName:  d.DeviceName,
			PoolName:    d.PoolName,
			PoolKind:    kind,
			BlockSize:   d.BlockSize,
			BlocksCount: d.BlocksCount,
			Rack:        d.Rack,
		})
	}

	agent, err := s.registry.RegisterAgent(ctx, cfg)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "register_agent", err, v1.ErrAgentNotFound)
	}
	s.logger.WithContext(ctx).Info("agent registered",
		zap.String("agent_id", agent.AgentId),
		zap.Uint32("node_id", agent.NodeId),
		zap.Uint64("seq_number", agent.SeqNumber),
		zap.Int("devices", len(agent.DeviceIds)))
	return &v1.RegisterAgentResponseData{
		AgentId:   agent.AgentId,
		SeqNumber: agent.SeqNumber,
		State:     string(agent.State),
	}, nil
}

func (s *agentService) UnregisterAgent(ctx context.Context, req *v1.UnregisterAgentRequest) error {
	return s.AgentConnectionLost(ctx, req.AgentId, req.NodeId)
}

func (s *agentService) AgentConnectionLost(ctx context.Context, agentId string, nodeId uint32) error {
	err := s.registry.AgentDisconnected(ctx, agentId, nodeId)
	return toApiError(ctx, s.logger, "agent_disconnected", err, v1.ErrAgentNotFound)
}

func (s *agentService) UpdateAgentStats(ctx context.Context, req *v1.UpdateAgentStatsRequest) error {
	stats := make([]registry.DeviceStats, 0, len(req.DeviceStats))
	for _, st := range req.DeviceStats {
		stats = append(stats, registry.DeviceStats{DeviceId: st.DeviceId, Errors: st.Errors})
	}
	err := s.registry.UpdateAgentStats(ctx, req.AgentId, stats)
	return toApiError(ctx, s.logger, "update_agent_stats", err, v1.ErrAgentNotFound)
}

func (s *agentService) ChangeAgentState(ctx context.Context, agentId string, req *v1.ChangeAgentStateRequest) error {
	err := s.registry.ChangeAgentState(ctx, agentId, model.AgentState(req.State), req.Message)
	return toApiError(ctx, s.logger, "change_agent_state", err, v1.ErrAgentNotFound)
}

func (s *agentService) GetAgent(ctx context.Context, agentId string) (*v1.AgentItem, error) {
	agent, err := s.registry.DescribeAgent(ctx, agentId)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "describe_agent", err, v1.ErrAgentNotFound)
	}
	item := toAgentItem(agent)
	return &item, nil
}

func (s *agentService) ListAgents(ctx context.Context) (*v1.ListAgentsResponseData, error) {
	agents, err := s.registry.ListAgents(ctx)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "list_agents", err, nil)
	}
	list := make([]v1.AgentItem, 0, len(agents))
	for _, a := range agents {
		list = append(list, toAgentItem(a))
	}
	return &v1.ListAgentsResponseData{Total: int64(len(list)), List: list}, nil
}
