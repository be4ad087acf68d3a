package service

import (
	"context"

	v1 "diskregistry/api/v1"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

// RegistryService registry 级别的管理操作
type RegistryService interface {
	SetWritableState(ctx context.Context, req *v1.SetWritableStateRequest) error
	CleanupDisks(ctx context.Context) (*v1.CleanupDisksResponseData, error)
}

func NewRegistryService(
	service *Service,
	diskRegistry DiskRegistry,
	logger *log.Logger,
) RegistryService {
	return &registryService{
		Service:  service,
		registry: diskRegistry,
		logger:   logger,
	}
}

type registryService struct {
	*Service
	registry DiskRegistry
	logger   *log.Logger
}

func (s *registryService) SetWritableState(ctx context.Context, req *v1.SetWritableStateRequest) error {
	writable := *req.Writable
	if err := s.registry.SetWritableState(ctx, writable); err != nil {
		return toApiError(ctx, s.logger, "set_writable_state", err, nil)
	}
	s.logger.WithContext(ctx).Info("registry writable state changed", zap.Bool("writable", writable))
	return nil
}

func (s *registryService) CleanupDisks(ctx context.Context) (*v1.CleanupDisksResponseData, error) {
	removed, err := s.registry.CleanupDisks(ctx)
	if err != nil {
		return nil, toApiError(ctx, s.logger, "cleanup_disks", err, nil)
	}
	if removed == nil {
		removed = []string{}
	}
	return &v1.CleanupDisksResponseData{RemovedDiskIds: removed}, nil
}
