package server

import (
	"context"

	"diskregistry/internal/agentclient"
	"diskregistry/internal/registry"
	"diskregistry/internal/session"
	"diskregistry/pkg/log"
)

// RegistryServer 负责 registry 事件循环与 agent 会话的启停
type RegistryServer struct {
	registry *registry.Registry
	hub      *session.Hub
	agents   *agentclient.Client
	log      *log.Logger
}

func NewRegistryServer(
	log *log.Logger,
	diskRegistry *registry.Registry,
	hub *session.Hub,
	agents *agentclient.Client,
) *RegistryServer {
	return &RegistryServer{
		registry: diskRegistry,
		hub:      hub,
		agents:   agents,
		log:      log,
	}
}

func (s *RegistryServer) Start(ctx context.Context) error {
	s.log.Info("starting registry server")
	return s.registry.Start(ctx)
}

func (s *RegistryServer) Stop(ctx context.Context) error {
	s.log.Info("stopping registry server")
	s.hub.Close()
	err := s.registry.Stop(ctx)
	if cerr := s.agents.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
