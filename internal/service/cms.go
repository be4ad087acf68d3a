package service

import (
	"context"

	v1 "diskregistry/api/v1"
	"diskregistry/internal/registry"
	"diskregistry/pkg/log"

	"go.uber.org/zap"
)

type CmsService interface {
	// ExecuteActions 逐个执行，单个动作失败不影响其他动作
	ExecuteActions(ctx context.Context, req *v1.CmsActionRequest) (*v1.CmsActionResponseData, error)
}

func NewCmsService(
	service *Service,
	diskRegistry DiskRegistry,
	logger *log.Logger,
) CmsService {
	return &cmsService{
		Service:  service,
		registry: diskRegistry,
		logger:   logger,
	}
}

type cmsService struct {
	*Service
	registry DiskRegistry
	logger   *log.Logger
}

func (s *cmsService) ExecuteActions(ctx context.Context, req *v1.CmsActionRequest) (*v1.CmsActionResponseData, error) {
	results := make([]v1.CmsActionResult, 0, len(req.Actions))
	for _, action := range req.Actions {
		item := v1.CmsActionResult{
			Type:             action.Type,
			Host:             action.Host,
			Device:           action.Device,
			DependentDiskIds: []string{},
		}
		res, err := s.registry.CmsAction(ctx, registry.CmsAction{
			Type:   registry.CmsActionType(action.Type),
			Host:   action.Host,
			Device: action.Device,
		})
		if err != nil {
			notFound := v1.ErrAgentNotFound
			if action.Device != "" {
				notFound = v1.ErrDeviceNotFound
			}
			apiErr := toApiError(ctx, s.logger, "cms_action", err, notFound)
			item.Code, _ = v1.ErrorCode(apiErr)
			item.Message = apiErr.Error()
			results = append(results, item)
			continue
		}
		item.Code, _ = v1.ErrorCode(v1.ErrSuccess)
		item.Message = v1.ErrSuccess.Error()
		if res.DependentDiskIds != nil {
			item.DependentDiskIds = res.DependentDiskIds
		}
		item.Timeout = res.Timeout.Seconds()
		s.logger.WithContext(ctx).Info("cms action",
			zap.String("type", action.Type),
			zap.String("host", action.Host),
			zap.String("device", action.Device),
			zap.Strings("dependent_disks", item.DependentDiskIds),
			zap.Duration("timeout", res.Timeout))
		results = append(results, item)
	}
	return &v1.CmsActionResponseData{Results: results}, nil
}
